package textnorm_test

import (
	"testing"

	"jobmatch-backend/internal/textnorm"

	"github.com/stretchr/testify/assert"
)

func TestCleanRemovesNoise(t *testing.T) {
	n := textnorm.New()

	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "urls stripped",
			input:    "Postulez sur https://example.com/jobs ou www.example.org maintenant",
			expected: "postulez maintenant",
		},
		{
			name:     "digits and punctuation stripped",
			input:    "Developpeur (H/F) - 35h, salaire 42000!",
			expected: "developpeur hf h salaire",
		},
		{
			name:     "stopwords removed",
			input:    "le poste de la semaine pour les candidats",
			expected: "poste semaine candidat",
		},
		{
			name:     "whitespace collapsed",
			input:    "  ingenieur   logiciel\n\tconfirme  ",
			expected: "ingenieur logiciel confirme",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, n.Clean(tc.input))
		})
	}
}

func TestCleanEmptyInput(t *testing.T) {
	n := textnorm.New()
	assert.Equal(t, "", n.Clean(""))
	assert.Equal(t, "", n.Clean("   \n\t "))
	assert.Equal(t, "", n.Clean("le la les de du"))
}

func TestCleanDeterministic(t *testing.T) {
	n := textnorm.New()
	input := "Gestion de projets internationaux, outils: Python & SQL"
	first := n.Clean(input)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, n.Clean(input))
	}
}

func TestLemmatize(t *testing.T) {
	assert.Equal(t, "projet", textnorm.Lemmatize("projets"))
	assert.Equal(t, "international", textnorm.Lemmatize("internationaux"))
	assert.Equal(t, "travail", textnorm.Lemmatize("travaux"))

	// unknown short or irregular tokens pass through unchanged
	assert.Equal(t, "sql", textnorm.Lemmatize("sql"))
	assert.Equal(t, "processus", textnorm.Lemmatize("processus"))
	assert.Equal(t, "stress", textnorm.Lemmatize("stress"))
}
