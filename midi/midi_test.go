package midi

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/jsphweid/saychord/model"
	"github.com/stretchr/testify/assert"
)

func resolved(name string, pitches ...string) *model.ResolvedChord {
	return &model.ResolvedChord{Definition: &model.ChordDefinition{CanonicalName: name, Pitches: pitches}}
}

var (
	cMajor = resolved("C", "C", "E", "G")
	aMinor = resolved("Am", "A3", "C", "E")
	g7     = resolved("G7", "G3", "B3", "D", "F")
)

func TestRoundTrip(t *testing.T) {
	buf := new(bytes.Buffer)
	transport := model.Transport{Tempo: 96, TimeSignature: 3, LoopLength: 4}
	assert := assert.New(t)

	assert.NoError(WriteSequence(buf, []*model.ResolvedChord{cMajor, aMinor, g7}, transport))
	res, err := ReadSequence(buf)
	assert.NoError(err)
	assert.InDelta(96, res.Tempo, 0.01)
	assert.Equal(3, res.TimeSignature)
	assert.Equal([]model.Notes{
		{60, 64, 67},
		{57, 60, 64},
		{55, 59, 62, 65},
	}, res.Chords)
}

func TestLoopingExportFillsLoopLength(t *testing.T) {
	buf := new(bytes.Buffer)
	transport := model.Transport{Tempo: 120, TimeSignature: 4, LoopLength: 8, Looping: true}

	assert.NoError(t, WriteSequence(buf, []*model.ResolvedChord{cMajor, aMinor, g7}, transport))
	res, err := ReadSequence(buf)
	assert.NoError(t, err)
	assert.Len(t, res.Chords, 8)
	assert.Equal(t, res.Chords[0], res.Chords[3])
	assert.Equal(t, res.Chords[1], res.Chords[7])
}

func TestRepeatedChordsStaySeparate(t *testing.T) {
	buf := new(bytes.Buffer)
	transport := model.Transport{Tempo: 120, TimeSignature: 4, LoopLength: 4}

	assert.NoError(t, WriteSequence(buf, []*model.ResolvedChord{cMajor, cMajor}, transport))
	res, err := ReadSequence(buf)
	assert.NoError(t, err)
	assert.Equal(t, []model.Notes{{60, 64, 67}, {60, 64, 67}}, res.Chords)
}

func TestMeasures(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(3, Measures(3, model.Transport{LoopLength: 8}))
	assert.Equal(8, Measures(3, model.Transport{LoopLength: 8, Looping: true}))
	assert.Equal(10, Measures(10, model.Transport{LoopLength: 8, Looping: true}))
	assert.Equal(0, Measures(0, model.Transport{LoopLength: 8, Looping: true}))
}

func TestWriteErrors(t *testing.T) {
	transport := model.Transport{Tempo: 120, TimeSignature: 4, LoopLength: 4}
	assert.Error(t, WriteSequence(new(bytes.Buffer), nil, transport))
	assert.Error(t, WriteSequence(new(bytes.Buffer), []*model.ResolvedChord{resolved("X", "H")}, transport))
}

func TestReadGarbage(t *testing.T) {
	_, err := ReadSequence(bytes.NewReader([]byte("definitely not midi")))
	assert.Error(t, err)
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mid")
	transport := model.Transport{Tempo: 120, TimeSignature: 4, LoopLength: 4}

	assert.NoError(t, WriteFile(path, []*model.ResolvedChord{g7}, transport))
	res, err := ReadFile(path)
	assert.NoError(t, err)
	assert.Equal(t, []model.Notes{{55, 59, 62, 65}}, res.Chords)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.mid"))
	assert.Error(t, err)
}
