package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"only spaces", "   \t ", ""},
		{"lowercases", "YAOUNDÉ", "yaounde"},
		{"strips accents", "Téléphone", "telephone"},
		{"cedilla", "Garçon", "garcon"},
		{"collapses whitespace", "  Rue   de la\tPaix  ", "rue de la paix"},
		{"unifies apostrophes", "l’huile d‘olive", "l'huile d'olive"},
		{"modifier apostrophe", "Mʼbalmayo", "m'balmayo"},
		{"keeps digits", "iPhone 13 Pro", "iphone 13 pro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.input))
		})
	}
}

func TestText_Idempotent(t *testing.T) {
	inputs := []string{
		"Téléphone Portable",
		"  ÉLÉPHANT  d’Afrique ",
		"İstanbul",
		"Ngaoundéré",
		"çà et là",
		"ÅNGSTRÖM",
		"",
	}

	for _, in := range inputs {
		once := Text(in)
		assert.Equal(t, once, Text(once), "normalize(normalize(%q))", in)
	}
}

func TestDigitsAndPhone(t *testing.T) {
	assert.Equal(t, "237699001122", Digits("+237 699-00-11-22"))
	assert.Equal(t, "", Digits("no digits"))
	assert.Equal(t, "237699001122", Phone("00237 699 00 11 22"))
	assert.Equal(t, "237699001122", Phone("+237699001122"))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%`, EscapeLike("50%"))
	assert.Equal(t, `a\_b`, EscapeLike("a_b"))
	assert.Equal(t, `c:\\x`, EscapeLike(`c:\x`))
	assert.Equal(t, "plain", EscapeLike("plain"))
}
