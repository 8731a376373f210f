package chord

import (
	"fmt"
	"testing"

	"github.com/jsphweid/saychord/model"
	"github.com/stretchr/testify/assert"
)

func TestParsePitch(t *testing.T) {
	cases := map[string]uint8{
		"C":    60,
		"C4":   60,
		"c":    60,
		"E":    64,
		"Eb":   63,
		"F#":   66,
		"Bb3":  58,
		"B#":   72,
		"Cb":   59,
		"A0":   21,
		"C-1":  0,
		"G9":   127,
		"Ebb5": 74,
	}

	for pitch, want := range cases {
		t.Run(fmt.Sprintf("parse %v", pitch), func(t *testing.T) {
			got, err := ParsePitch(pitch)
			assert := assert.New(t)
			assert.NoError(err)
			assert.Equal(want, got)
		})
	}
}

func TestParsePitchRejectsGarbage(t *testing.T) {
	for _, pitch := range []string{"", "H", "Cx", "C#x", "G#9", "Cb-1"} {
		_, err := ParsePitch(pitch)
		assert.Error(t, err, pitch)
	}
}

func TestNotesKeepOrder(t *testing.T) {
	notes, err := Notes([]string{"G", "B", "D", "F"})
	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(model.Notes{67, 71, 62, 65}, notes)
}

func TestCreateChordKeyIgnoresOrder(t *testing.T) {
	notes := model.Notes{67, 60, 64}
	assert := assert.New(t)
	assert.Equal("60-64-67", CreateChordKey(notes))
	assert.Equal(model.Notes{67, 60, 64}, notes)
}

func TestNoteName(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("C4", NoteName(60))
	assert.Equal("A#3", NoteName(58))
	assert.Equal("C-1", NoteName(0))
}
