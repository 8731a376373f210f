package model

// Notes are MIDI note numbers.
type Notes = []uint8

// ChordDefinition is one catalog entry. Definitions are shared by pointer and
// never mutated after the catalog is loaded.
type ChordDefinition struct {
	CanonicalName string   `json:"name"`
	LocalizedName string   `json:"localizedName"`
	Aliases       []string `json:"aliases"`
	Pitches       []string `json:"notes"`

	// Tonality is the key group the definition was loaded from.
	Tonality string `json:"-"`
}

// Names returns the canonical name, the localized name and the aliases, in the
// order they are matched during substring scans.
func (d *ChordDefinition) Names() []string {
	names := make([]string, 0, len(d.Aliases)+2)
	names = append(names, d.CanonicalName)
	if d.LocalizedName != "" {
		names = append(names, d.LocalizedName)
	}
	return append(names, d.Aliases...)
}

// ResolvedChord references a catalog definition together with the text it was
// resolved from.
type ResolvedChord struct {
	Definition *ChordDefinition
	RawText    string
}

func (c *ResolvedChord) Name() string {
	return c.Definition.CanonicalName
}

func (c *ResolvedChord) Pitches() []string {
	return c.Definition.Pitches
}

// RecognitionAttempt is a finalized utterance from the speech collaborator.
type RecognitionAttempt struct {
	RawText    string  `json:"transcript"`
	Confidence float64 `json:"confidence"`
}

// Descriptor is the {root, quality, extension} triple pulled out of text.
// Root includes its accidental when one was spoken.
type Descriptor struct {
	Root      string
	Quality   string
	Extension string

	// Text is the matched span.
	Text string
}
