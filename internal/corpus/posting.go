// Package corpus reads and writes the per-(platform,region) job posting
// datasets that training and inference share.
package corpus

import "fmt"

// Posting is one scraped job offer. SummaryFr and CleanedSummary may be empty
// on older datasets; Summary is the text every downstream stage consumes.
type Posting struct {
	Url             string
	Company         string
	Title           string
	Location        string
	Region          string
	Level           string
	PublicationDate string
	Summary         string
	SummaryFr       string
	CleanedSummary  string
}

// SummaryKey returns the object store key of the corpus for a scrape source
// and region.
func SummaryKey(platform, region string) string {
	return fmt.Sprintf("summarize/%s/%s.csv", platform, region)
}
