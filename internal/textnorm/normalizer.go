// Package textnorm turns raw posting and profile text into the canonical form
// used for embedding: lowercase, free of URLs, digits and punctuation, with
// French stopwords removed and remaining tokens lemmatized.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	urlRegex     = regexp.MustCompile(`http\S+|www\S+|https\S+`)
	mentionRegex = regexp.MustCompile(`@\w+|#`)
	digitRegex   = regexp.MustCompile(`\d+`)
	spaceRegex   = regexp.MustCompile(`\s+`)
)

const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

type Normalizer struct {
	stopwords map[string]struct{}
}

func New() *Normalizer {
	stopwords := make(map[string]struct{}, len(frenchStopwords))
	for _, w := range frenchStopwords {
		stopwords[w] = struct{}{}
	}
	return &Normalizer{stopwords: stopwords}
}

// Clean is deterministic and pure; it never errors. Empty input yields empty
// output, and tokens unknown to the lemmatizer pass through unchanged.
func (n *Normalizer) Clean(text string) string {
	text = urlRegex.ReplaceAllString(text, "")
	text = mentionRegex.ReplaceAllString(text, "")
	text = digitRegex.ReplaceAllString(text, "")
	text = strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, text)
	text = strings.ToLower(text)
	text = strings.TrimSpace(spaceRegex.ReplaceAllString(text, " "))

	if text == "" {
		return ""
	}

	words := strings.Split(text, " ")
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if _, stop := n.stopwords[w]; stop {
			continue
		}
		kept = append(kept, Lemmatize(w))
	}
	return strings.Join(kept, " ")
}

// Lemmatize reduces a token to a base form with a small set of French suffix
// rules. It is a heuristic, not a dictionary lemmatizer: tokens no rule applies
// to are returned as-is.
func Lemmatize(word string) string {
	if base, ok := lemmaExceptions[word]; ok {
		return base
	}
	if len(word) <= 3 {
		return word
	}

	switch {
	case strings.HasSuffix(word, "aux") && len(word) > 4:
		// plural of -al nouns: internationaux -> international
		return strings.TrimSuffix(word, "aux") + "al"
	case strings.HasSuffix(word, "eaux") || strings.HasSuffix(word, "eux"):
		return strings.TrimSuffix(word, "x")
	case strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss") && !strings.HasSuffix(word, "us"):
		return strings.TrimSuffix(word, "s")
	}
	return word
}

var lemmaExceptions = map[string]string{
	"yeux":      "oeil",
	"travaux":   "travail",
	"messieurs": "monsieur",
	"mesdames":  "madame",
}
