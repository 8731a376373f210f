package normalize

import (
	"regexp"
	"strings"
)

type substitution struct {
	from string
	to   string
}

// vocabulary canonicalizes quality and extension words of both languages.
// Applied in order on the compacted text: longer words come before words
// they contain ("diminue" before "min").
var vocabulary = []substitution{
	{"diminished", "dim"},
	{"diminuee", "dim"},
	{"diminue", "dim"},
	{"augmented", "aug"},
	{"augmentee", "aug"},
	{"augmente", "aug"},
	{"suspended", "sus"},
	{"suspendu", "sus"},
	{"thirteenth", "13"},
	{"treizieme", "13"},
	{"eleventh", "11"},
	{"onzieme", "11"},
	{"neuvieme", "9"},
	{"ninth", "9"},
	{"septieme", "7"},
	{"seventh", "7"},
	{"sixieme", "6"},
	{"sixte", "6"},
	{"sixth", "6"},
	{"quinte", "5"},
	{"fifth", "5"},
	{"majeur", "maj"},
	{"major", "maj"},
	{"mineur", "m"},
	{"minor", "m"},
	{"bemol", "b"},
	{"flat", "b"},
	{"diese", "#"},
	{"sharp", "#"},
	{"min", "m"},
	{"+", "aug"},
}

var solfege = []substitution{
	{"sol", "g"},
	{"do", "c"},
	{"re", "d"},
	{"mi", "e"},
	{"fa", "f"},
	{"la", "a"},
	{"si", "b"},
}

// letterRoot matches a key that already starts with a letter-name root
// followed by something a chord symbol can continue with.
var letterRoot = regexp.MustCompile(`^[a-g]($|#|b|maj|m|dim|aug|sus|add|[0-9]|/)`)

var bareMajor = regexp.MustCompile(`^([a-g][#b]?)maj$`)

// Key returns the compact lookup key for a chord name, alias or spoken
// phrase. Phrases naming the same chord in either language share a key:
// Key("Do majeur septième") == Key("C major seven") == Key("Cmaj7").
func Key(s string) string {
	k := strings.ReplaceAll(Text(s), " ", "")
	for _, sub := range vocabulary {
		k = strings.ReplaceAll(k, sub.from, sub.to)
	}

	if !letterRoot.MatchString(k) {
		for _, sub := range solfege {
			if strings.HasPrefix(k, sub.from) {
				k = sub.to + strings.TrimPrefix(k, sub.from)
				break
			}
		}
	}

	// "C major" is the C triad.
	return bareMajor.ReplaceAllString(k, "$1")
}
