package chord

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jsphweid/saychord/constants"
	"github.com/jsphweid/saychord/model"
)

var semitones = map[byte]int{
	'C': 0,
	'D': 2,
	'E': 4,
	'F': 5,
	'G': 7,
	'A': 9,
	'B': 11,
}

// CreateChordKey returns a key for a set of MIDI notes that does not depend
// on their order, e.g. "60-64-67".
func CreateChordKey(notes model.Notes) string {
	sorted := make(model.Notes, len(notes))
	copy(sorted, notes)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})
	parts := make([]string, len(sorted))
	for i, note := range sorted {
		parts[i] = fmt.Sprintf("%v", note)
	}
	return strings.Join(parts, "-")
}

// ParsePitch converts a pitch like "C", "Eb", "F#5" or "Bb-1" to a MIDI note
// number. Pitches without an octave use constants.DefaultOctave.
func ParsePitch(pitch string) (uint8, error) {
	if pitch == "" {
		return 0, fmt.Errorf("empty pitch")
	}
	letter := pitch[0]
	if letter >= 'a' && letter <= 'g' {
		letter -= 'a' - 'A'
	}
	semitone, ok := semitones[letter]
	if !ok {
		return 0, fmt.Errorf("invalid pitch %q: unknown letter", pitch)
	}

	rest := pitch[1:]
	for len(rest) > 0 && (rest[0] == '#' || rest[0] == 'b') {
		if rest[0] == '#' {
			semitone++
		} else {
			semitone--
		}
		rest = rest[1:]
	}

	octave := constants.DefaultOctave
	if rest != "" {
		o, err := strconv.Atoi(rest)
		if err != nil {
			return 0, fmt.Errorf("invalid pitch %q: bad octave", pitch)
		}
		octave = o
	}

	note := (octave+1)*12 + semitone
	if note < 0 || note > 127 {
		return 0, fmt.Errorf("invalid pitch %q: out of midi range", pitch)
	}
	return uint8(note), nil
}

// HasOctave reports whether a pitch carries an explicit octave.
func HasOctave(pitch string) bool {
	return strings.IndexAny(pitch, "0123456789") >= 0
}

// Notes converts pitches to MIDI note numbers, keeping their order.
func Notes(pitches []string) (model.Notes, error) {
	notes := make(model.Notes, 0, len(pitches))
	for _, p := range pitches {
		n, err := ParsePitch(p)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, nil
}

// NoteName renders a MIDI note number as a pitch with octave, using sharps.
func NoteName(note uint8) string {
	names := [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	return fmt.Sprintf("%v%v", names[note%12], int(note)/12-1)
}
