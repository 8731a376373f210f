// Package normalize turns noisy transcripts into a canonical text form and
// derives the compact keys chords are looked up by.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// numberWords maps spelled-out small numbers to digits. French "un" is left
// alone because it is far more often an article than a number.
var numberWords = map[string]string{
	// English
	"one": "1", "two": "2", "three": "3", "four": "4", "five": "5",
	"six": "6", "seven": "7", "eight": "8", "nine": "9", "ten": "10",
	"eleven": "11", "twelve": "12", "thirteen": "13",
	// French
	"deux": "2", "trois": "3", "quatre": "4", "cinq": "5",
	"sept": "7", "huit": "8", "neuf": "9", "dix": "10",
	"onze": "11", "douze": "12", "treize": "13",
}

// fillerWords are articles dropped when they sit right before a note name.
var fillerWords = map[string]bool{
	"a": true, "an": true, "the": true,
	"un": true, "une": true, "le": true, "les": true, "l'": true,
}

// copulas are dropped on either side of a note name.
var copulas = map[string]bool{
	"is": true, "est": true, "it's": true, "its": true,
}

// noteToken matches a token that names a chord root, possibly with an
// accidental and a compact chord suffix ("c", "sol", "f#m7", "bb").
var noteToken = regexp.MustCompile(`^(do|re|mi|fa|sol|la|si|[a-g])(#|b)?(maj|min|m|dim|aug|sus|add|[0-9#b+])*$`)

// Text lower-cases s, strips diacritics, maps punctuation to spaces,
// collapses whitespace, replaces number words with digits and drops filler
// words next to note names. Text(Text(s)) == Text(s).
func Text(s string) string {
	s = strings.ToLower(s)
	s = stripMarks(s)
	s = strings.Map(mapRune, s)

	tokens := strings.Fields(s)
	for i, tok := range tokens {
		if digit, ok := numberWords[tok]; ok {
			tokens[i] = digit
		}
	}
	tokens = dropFillers(tokens)
	return strings.Join(tokens, " ")
}

// IsNoteToken reports whether tok names a chord root.
func IsNoteToken(tok string) bool {
	return noteToken.MatchString(tok)
}

func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	res, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return res
}

func mapRune(r rune) rune {
	switch r {
	case '#', '\'', '+', '-', '/':
		return r
	case '’', '`':
		return '\''
	case '♯':
		return '#'
	case '♭':
		return 'b'
	}
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return r
	}
	return ' '
}

// dropFillers removes fillers until nothing changes, so that a filler exposed
// by an earlier removal is handled in the same call.
func dropFillers(tokens []string) []string {
	for {
		kept := tokens[:0:0]
		for i, tok := range tokens {
			nextIsNote := i+1 < len(tokens) && IsNoteToken(tokens[i+1])
			prevIsNote := i > 0 && IsNoteToken(tokens[i-1])
			if fillerWords[tok] && nextIsNote {
				continue
			}
			if copulas[tok] && (nextIsNote || prevIsNote) {
				continue
			}
			kept = append(kept, tok)
		}
		if len(kept) == len(tokens) {
			return kept
		}
		tokens = kept
	}
}
