package inference

import "strings"

// Education levels ordered from lowest to highest. A posting is eligible when
// its required level does not exceed the candidate's.
var levelRank = map[string]int{
	"Bac+2":  0,
	"Bac+3":  1,
	"Bac+4":  2,
	"Master": 3,
}

// noLevelRequired marks postings open to any education level.
const noLevelRequired = "No Level Required"

// normalizeLevel title-cases each word so "bac+3" and "MASTER" match the
// canonical spellings.
func normalizeLevel(level string) string {
	words := strings.Fields(strings.TrimSpace(level))
	for i, w := range words {
		lower := strings.ToLower(w)
		words[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(words, " ")
}

// ValidEducationLevel reports whether a candidate-supplied level is one the
// hierarchy knows.
func ValidEducationLevel(level string) bool {
	_, ok := levelRank[normalizeLevel(level)]
	return ok
}

// EligibleByRegion keeps a posting whose region tag is exactly the requested
// one. Untagged postings are dropped when a region is requested.
func EligibleByRegion(requested, postingRegion string) bool {
	return postingRegion == requested
}

// EligibleByLevel keeps a posting when it requires no level, or requires one
// at or below the candidate's. Postings with unrecognized requirements are
// dropped rather than guessed at.
func EligibleByLevel(candidateLevel, postingLevel string) bool {
	posting := normalizeLevel(postingLevel)
	if posting == noLevelRequired {
		return true
	}

	required, ok := levelRank[posting]
	if !ok {
		return false
	}
	candidate, ok := levelRank[normalizeLevel(candidateLevel)]
	if !ok {
		return false
	}
	return required <= candidate
}
