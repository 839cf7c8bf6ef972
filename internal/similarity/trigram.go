// Package similarity implements trigram word similarity with the same semantics
// as PostgreSQL's pg_trgm word_similarity, so the SQLite backend ranks search
// results exactly like the Postgres one.
package similarity

import (
	"strings"
	"unicode"
)

// Threshold is the minimum word similarity for a fuzzy keyword match.
const Threshold = 0.2

// trigram is three consecutive runes of a padded word.
type trigram [3]rune

// WordSimilarity returns the greatest similarity between the trigram set of
// needle and any contiguous extent of the ordered trigram sequence of haystack.
// Similarity of two sets is |shared| / |union|. The result is in [0, 1].
func WordSimilarity(needle, haystack string) float64 {
	want := trigramSet(needle)
	if len(want) == 0 {
		return 0
	}
	seq := trigramSequence(haystack)

	best := 0.0
	for start := range seq {
		// An extent that opens or closes on an unshared trigram only grows the union.
		if _, ok := want[seq[start]]; !ok {
			continue
		}

		seen := make(map[trigram]struct{}, len(seq)-start)
		shared := 0
		for end := start; end < len(seq); end++ {
			t := seq[end]
			_, match := want[t]
			if _, dup := seen[t]; !dup {
				seen[t] = struct{}{}
				if match {
					shared++
				}
			}
			if !match {
				continue
			}
			sim := float64(shared) / float64(len(want)+len(seen)-shared)
			if sim > best {
				best = sim
				if best == 1 {
					return 1
				}
			}
		}
	}
	return best
}

// Similarity returns the plain trigram similarity of two strings, |shared| / |union|.
func Similarity(a, b string) float64 {
	ta, tb := trigramSet(a), trigramSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	shared := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(ta)+len(tb)-shared)
}

// Matches reports whether needle fuzzily matches haystack above Threshold.
func Matches(needle, haystack string) bool {
	return WordSimilarity(needle, haystack) > Threshold
}

func trigramSet(s string) map[trigram]struct{} {
	seq := trigramSequence(s)
	set := make(map[trigram]struct{}, len(seq))
	for _, t := range seq {
		set[t] = struct{}{}
	}
	return set
}

// trigramSequence splits s into words of letters and digits, pads each word with
// two leading blanks and one trailing blank, and returns the trigrams in order.
func trigramSequence(s string) []trigram {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var seq []trigram
	for _, w := range words {
		padded := make([]rune, 0, len(w)+3)
		padded = append(padded, ' ', ' ')
		padded = append(padded, []rune(w)...)
		padded = append(padded, ' ')
		for i := 0; i+3 <= len(padded); i++ {
			seq = append(seq, trigram{padded[i], padded[i+1], padded[i+2]})
		}
	}
	return seq
}
