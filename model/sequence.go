package model

import "time"

// SavedSequence is a persisted sequence. Chords are stored by canonical name
// and re-resolved against the catalog when loaded.
type SavedSequence struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Chords        []string  `json:"sequence"`
	Tempo         int       `json:"tempo"`
	TimeSignature int       `json:"timeSignature"`
	LoopLength    int       `json:"loopLength"`
	SavedAt       time.Time `json:"date"`
}

// Transport mirrors the scheduler's transport settings and playback state.
type Transport struct {
	Tempo         int  `json:"tempo"`
	TimeSignature int  `json:"timeSignature"`
	LoopLength    int  `json:"loopLength"`
	Looping       bool `json:"looping"`
	Playing       bool `json:"playing"`

	// Cursor is the index of the chord last played, -1 when stopped. While
	// playing, -1 means the next tick plays index 0, as after removing the
	// sounding first chord.
	Cursor int `json:"cursor"`
}
