package enrich

import "strings"

const (
	englishHeader = "English Version"
	frenchHeader  = "Version Française"
)

// BilingualText holds the two language renditions of one generated section.
type BilingualText struct {
	English string `json:"en"`
	French  string `json:"fr"`
}

// ParseBilingual splits a completion on its "### " section markers. Content
// before the first marker, and sections with unknown headers, are dropped.
// When no marker is present the whole text is kept as English so a model that
// ignores the format still produces something usable.
func ParseBilingual(text string) BilingualText {
	if !strings.Contains(text, "### ") {
		return BilingualText{English: strings.TrimSpace(text)}
	}

	var out BilingualText
	for _, section := range strings.Split(text, "### ") {
		section = strings.TrimSpace(section)
		if section == "" {
			continue
		}
		header, body, found := strings.Cut(section, "\n")
		if !found {
			continue
		}
		body = strings.TrimSpace(body)
		switch strings.TrimSpace(header) {
		case englishHeader:
			out.English = body
		case frenchHeader:
			out.French = body
		}
	}
	return out
}
