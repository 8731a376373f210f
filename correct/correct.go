// Package correct rewrites known speech-recognition mistakes into the phrases
// the speaker meant.
package correct

import (
	"regexp"

	"github.com/jsphweid/saychord/normalize"
)

// Correction replaces a misheard phrase with the phrase that was meant.
type Correction struct {
	From string
	To   string
}

// DefaultTable lists known misrecognitions in French and English. Order
// matters: entries apply in sequence, each to the output of the previous.
var DefaultTable = []Correction{
	// French
	{"domaine", "do mineur"},
	{"dominé", "do mineur"},
	{"demi-neur", "do mineur"},
	{"la mine", "la mineur"},
	{"la mine heure", "la mineur"},
	{"sol mine", "sol mineur"},
	{"sol mine heure", "sol mineur"},
	{"c'est 7", "C7"},
	{"c'est majeur", "C majeur"},
	{"c'est mineur", "C mineur"},
	{"g7", "G7"},
	{"d7", "D7"},
	{"a7", "A7"},
	{"e7", "E7"},
	{"b7", "B7"},
	{"f7", "F7"},

	// English
	{"see major", "C major"},
	{"see minor", "C minor"},
	{"see seven", "C7"},
	{"g major", "G major"},
	{"g minor", "G minor"},
	{"g seven", "G7"},
	{"d major", "D major"},
	{"d minor", "D minor"},
	{"d seven", "D7"},
}

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// rules compact spoken alterations after the table has run.
var rules = []rule{
	{regexp.MustCompile(`(\S+)\s+majeur\s+(\d+)`), "${1}maj${2}"},
	{regexp.MustCompile(`(\S+)\s+mineur\s+(\d+)`), "${1}min${2}"},
	{regexp.MustCompile(`(\S+)\s+7\s+bemol\s+5\b`), "${1} 7b5"},
	{regexp.MustCompile(`(\S+)\s+7\s+diese\s+9\b`), "${1} 7#9"},
	{regexp.MustCompile(`(\S+)\s+7\s+bemol\s+9\b`), "${1} 7b9"},
	{regexp.MustCompile(`(\S+)\s+7\s+plus\s+5\b`), "${1} 7+5"},
	{regexp.MustCompile(`(\S+)\s+7\s+sus\s+4\b`), "${1} 7sus4"},
}

// Corrector applies a correction table to normalized text.
type Corrector struct {
	entries []rule
}

// New builds a Corrector. Keys and values are normalized so they line up with
// normalized input; matching is whole-word and case-insensitive.
func New(table []Correction) *Corrector {
	c := &Corrector{}
	for _, corr := range table {
		from := normalize.Text(corr.From)
		if from == "" {
			continue
		}
		c.entries = append(c.entries, rule{
			pattern:     regexp.MustCompile(`(?i)` + boundary(from)),
			replacement: normalize.Text(corr.To),
		})
	}
	return c
}

// NewDefault builds a Corrector over DefaultTable.
func NewDefault() *Corrector {
	return New(DefaultTable)
}

// Correct applies every table entry in order, then the alteration rules.
func (c *Corrector) Correct(text string) string {
	for _, e := range c.entries {
		text = e.pattern.ReplaceAllLiteralString(text, e.replacement)
	}
	for _, r := range rules {
		text = r.pattern.ReplaceAllString(text, r.replacement)
	}
	return text
}

// boundary wraps a literal phrase in word boundaries. \b only holds next to
// word characters, so a phrase edge made of punctuation is left unanchored.
func boundary(phrase string) string {
	expr := regexp.QuoteMeta(phrase)
	if isWordByte(phrase[0]) {
		expr = `\b` + expr
	}
	if isWordByte(phrase[len(phrase)-1]) {
		expr += `\b`
	}
	return expr
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}
