// Package extract pulls chord descriptors out of corrected text with an
// ordered cascade of patterns.
package extract

import (
	"regexp"
	"strings"

	"github.com/jsphweid/saychord/model"
	"github.com/jsphweid/saychord/normalize"
)

const (
	rootExpr      = `(?P<root>do|re|mi|fa|sol|la|si|[a-g])`
	accidentalExp = `(?:\s*(?P<acc>bemol|diese|flat|sharp|#|b))?`
	qualityExpr   = `\s*(?P<quality>majeur|major|maj|mineur|minor|min|m)`
	extensionExpr = `\s*(?P<ext>` +
		seventhExpr + `\s*` + flatExpr + `\s*[59]|` + seventhExpr + `\s*` + sharpExpr + `\s*[59]|` +
		seventhExpr + `\s*(?:\+|augmentee|augmente|augmented|aug)\s*5|` + seventhExpr + `\s*` + susExpr + `\s*[24]|` +
		susExpr + `\s*[24]|add\s*9|` + dimExpr + `\s*(?:7|septieme|seventh)|6\s*9|` +
		`diminuee|diminue|diminished|dim|augmentee|augmente|augmented|aug|\+|` +
		`septieme|seventh|neuvieme|ninth|onzieme|eleventh|treizieme|thirteenth|sixte|sixth|` +
		`13|11|9|7|6|5)`

	startExpr = `\b`
	endExpr   = `(?:\s|$)`
)

// Spelled-out words allowed inside compound extensions ("7 flat 5",
// "suspendu 4", "diminished 7").
const (
	seventhExpr = `(?:7|septieme|seventh)`
	flatExpr    = `(?:bemol|flat|b)`
	sharpExpr   = `(?:diese|sharp|#)`
	susExpr     = `(?:suspended|suspendu|sus)`
	dimExpr     = `(?:diminished|diminuee|diminue|dim)`
)

// Pattern is one step of the cascade.
type Pattern struct {
	Name string
	re   *regexp.Regexp
}

func newPattern(name string, parts ...string) Pattern {
	expr := startExpr + strings.Join(parts, "") + endExpr
	return Pattern{Name: name, re: regexp.MustCompile(expr)}
}

// DefaultPatterns run from most to least specific.
var DefaultPatterns = []Pattern{
	newPattern("root+quality+extension", rootExpr, accidentalExp, qualityExpr, extensionExpr),
	newPattern("root+extension", rootExpr, accidentalExp, extensionExpr),
	newPattern("root+quality", rootExpr, accidentalExp, qualityExpr),
	newPattern("root", rootExpr, accidentalExp),
}

// Extractor runs a pattern cascade.
type Extractor struct {
	patterns []Pattern
}

func New() *Extractor {
	return &Extractor{patterns: DefaultPatterns}
}

// Extract returns the descriptors found by the first pattern with at least
// one match, in left-to-right order, along with that pattern's name. Later
// patterns are not consulted once one has matched.
func (e *Extractor) Extract(text string) (string, []model.Descriptor) {
	for _, p := range e.patterns {
		matches := p.re.FindAllStringSubmatchIndex(text, -1)
		if len(matches) == 0 {
			continue
		}
		res := make([]model.Descriptor, 0, len(matches))
		for _, m := range matches {
			res = append(res, p.descriptor(text, m))
		}
		return p.Name, res
	}
	return "", nil
}

func (p Pattern) descriptor(text string, loc []int) model.Descriptor {
	group := func(name string) string {
		i := p.re.SubexpIndex(name)
		if i < 0 || loc[2*i] < 0 {
			return ""
		}
		return text[loc[2*i]:loc[2*i+1]]
	}

	root := group("root")
	if acc := group("acc"); acc != "" {
		root += " " + acc
	}
	return model.Descriptor{
		Root:      root,
		Quality:   group("quality"),
		Extension: group("ext"),
		Text:      strings.TrimSpace(text[loc[0]:loc[1]]),
	}
}

// Key reassembles a descriptor into a catalog lookup key.
func Key(d model.Descriptor) string {
	// Joined without separators so a root like "a" is never read as an article.
	compact := strings.ReplaceAll(d.Root+d.Quality+d.Extension, " ", "")
	return normalize.Key(compact)
}
