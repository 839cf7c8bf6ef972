package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordSimilarity_KnownValues(t *testing.T) {
	// Reference values from PostgreSQL pg_trgm.
	assert.InDelta(t, 0.8, WordSimilarity("word", "two words"), 1e-6)
	assert.InDelta(t, 1.0, WordSimilarity("phone", "phone"), 1e-6)
	assert.InDelta(t, 1.0, WordSimilarity("phone", "red phone case"), 1e-6)
	assert.Zero(t, WordSimilarity("xyz123", "samsung galaxy"))
}

func TestWordSimilarity_Typos(t *testing.T) {
	tests := []struct {
		needle   string
		haystack string
		match    bool
	}{
		{"telfon", "telephone", true},
		{"telfon", "telephone portable samsung", true},
		{"ordinatuer", "ordinateur portable", true},
		{"xyz123", "telephone", false},
		{"riz", "chaussures de sport", false},
	}

	for _, tt := range tests {
		t.Run(tt.needle+"/"+tt.haystack, func(t *testing.T) {
			assert.Equal(t, tt.match, Matches(tt.needle, tt.haystack),
				"word_similarity=%f", WordSimilarity(tt.needle, tt.haystack))
		})
	}
}

func TestWordSimilarity_EmptyInputs(t *testing.T) {
	assert.Zero(t, WordSimilarity("", "anything"))
	assert.Zero(t, WordSimilarity("word", ""))
	assert.Zero(t, WordSimilarity("  ", "--"))
}

func TestWordSimilarity_IsBounded(t *testing.T) {
	pairs := [][2]string{
		{"a", "a a a"},
		{"aaa", "aaaaaa"},
		{"yaounde", "yaounde bastos yaounde"},
	}
	for _, p := range pairs {
		sim := WordSimilarity(p[0], p[1])
		assert.GreaterOrEqual(t, sim, 0.0)
		assert.LessOrEqual(t, sim, 1.0)
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("douala", "douala"), 1e-6)
	assert.Zero(t, Similarity("abc", "xyz"))
	// word: {"  w"," wo","wor","ord","rd "}; words: {"  w"," wo","wor","ord","rds","ds "}
	assert.InDelta(t, 4.0/7.0, Similarity("word", "words"), 1e-6)
}
