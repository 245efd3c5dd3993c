package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrMissingSummary = errors.New("corpus: dataset has no Summary column")

// Column names as the scrapers write them.
const (
	colUrl             = "Url"
	colCompany         = "Company"
	colTitle           = "Title"
	colLocation        = "Location"
	colRegion          = "Region"
	colLevel           = "Level"
	colPublicationDate = "Publication Date"
	colSummary         = "Summary"
	colSummaryFr       = "Summary_fr"
	colCleanedSummary  = "cleaned_summary"
)

// ReadCSV parses a corpus file. Columns are matched by header name so the
// scrapers may reorder or add columns freely; only Summary is mandatory.
func ReadCSV(r io.Reader) ([]Posting, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, ErrMissingSummary
		}
		return nil, fmt.Errorf("read corpus header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	if _, ok := index[colSummary]; !ok {
		return nil, ErrMissingSummary
	}

	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var postings []Posting
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read corpus row: %w", err)
		}
		postings = append(postings, Posting{
			Url:             field(record, colUrl),
			Company:         field(record, colCompany),
			Title:           field(record, colTitle),
			Location:        field(record, colLocation),
			Region:          field(record, colRegion),
			Level:           field(record, colLevel),
			PublicationDate: field(record, colPublicationDate),
			Summary:         field(record, colSummary),
			SummaryFr:       field(record, colSummaryFr),
			CleanedSummary:  field(record, colCleanedSummary),
		})
	}
	return postings, nil
}

// WriteCSV writes postings with the full header, in scraper column order.
func WriteCSV(w io.Writer, postings []Posting) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{
		colUrl, colCompany, colTitle, colLocation, colRegion, colLevel,
		colPublicationDate, colSummary, colSummaryFr, colCleanedSummary,
	}); err != nil {
		return fmt.Errorf("write corpus header: %w", err)
	}
	for _, p := range postings {
		if err := writer.Write([]string{
			p.Url, p.Company, p.Title, p.Location, p.Region, p.Level,
			p.PublicationDate, p.Summary, p.SummaryFr, p.CleanedSummary,
		}); err != nil {
			return fmt.Errorf("write corpus row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
