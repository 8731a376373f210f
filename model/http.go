package model

type ResolveRequestBody struct {
	Text string `json:"text"`
}

type ChordResult struct {
	Name          string   `json:"name"`
	LocalizedName string   `json:"localizedName"`
	Tonality      string   `json:"tonality"`
	Notes         []string `json:"notes"`
	MidiNotes     []int    `json:"midiNotes"`
	Key           string   `json:"key"`
}

type ResolveResult struct {
	Text       string       `json:"text"`
	Normalized string       `json:"normalized"`
	Corrected  string       `json:"corrected"`
	Stage      string       `json:"stage,omitempty"`
	Miss       string       `json:"miss,omitempty"`
	Chord      *ChordResult `json:"chord,omitempty"`
}

type AddChordRequestBody struct {
	// Name is a canonical chord name for manual entry; Text goes through
	// resolution. Name wins when both are set.
	Name string `json:"name"`
	Text string `json:"text"`
}

type TransportRequestBody struct {
	Tempo         *int  `json:"tempo"`
	TimeSignature *int  `json:"timeSignature"`
	LoopLength    *int  `json:"loopLength"`
	Looping       *bool `json:"looping"`
}

type SequenceResponse struct {
	Chords    []ChordResult `json:"chords"`
	Transport Transport     `json:"transport"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}

type LoadSequenceResponse struct {
	Missing  []string         `json:"missing"`
	Sequence SequenceResponse `json:"sequence"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Catalog string `json:"catalog"`
}
