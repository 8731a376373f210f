package midi

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jsphweid/saychord/chord"
	"github.com/jsphweid/saychord/model"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	ticksPerQuarter = 480
	channel         = 0
	velocity        = 100
	trackName       = "saychord"
)

// Imported is what ReadSequence recovers from a file: the transport settings
// and one note group per chord onset.
type Imported struct {
	Tempo         float64
	TimeSignature int
	Chords        []model.Notes
}

// Measures returns how many measures an export covers. A looping export is
// padded to the loop length by repeating the sequence.
func Measures(count int, t model.Transport) int {
	if t.Looping && count > 0 && count < t.LoopLength {
		return t.LoopLength
	}
	return count
}

// WriteSequence writes chords as a single track SMF, one measure per chord.
func WriteSequence(w io.Writer, chords []*model.ResolvedChord, t model.Transport) error {
	if len(chords) == 0 {
		return errors.New("nothing to export")
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)
	measure := uint32(ticksPerQuarter * t.TimeSignature)

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(trackName))
	tr.Add(0, smf.MetaTempo(float64(t.Tempo)))
	tr.Add(0, smf.MetaMeter(uint8(t.TimeSignature), 4))

	for i := 0; i < Measures(len(chords), t); i++ {
		c := chords[i%len(chords)]
		notes, err := chord.Notes(c.Pitches())
		if err != nil {
			return errors.Wrapf(err, "chord %v", c.Name())
		}
		for _, n := range notes {
			tr.Add(0, midi.NoteOn(channel, n, velocity))
		}
		for j, n := range notes {
			var delta uint32
			if j == 0 {
				delta = measure
			}
			tr.Add(delta, midi.NoteOff(channel, n))
		}
	}
	tr.Close(0)

	if err := s.Add(tr); err != nil {
		return errors.Wrap(err, "could not add track")
	}
	_, err := s.WriteTo(w)
	return errors.Wrap(err, "could not write midi")
}

func WriteFile(path string, chords []*model.ResolvedChord, t model.Transport) error {
	buf := new(bytes.Buffer)
	if err := WriteSequence(buf, chords, t); err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(path, buf.Bytes(), 0666), "write failed for file %v", path)
}

type noteEvent struct {
	ticks int64
	off   bool
	note  uint8
}

// ReadSequence reads tempo, meter and chord onsets from an SMF. Notes that
// start on the same tick form one chord.
func ReadSequence(r io.Reader) (res *Imported, e error) {
	// smf can panic on malformed input
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if p := recover(); p != nil {
			res = nil
			e = fmt.Errorf("error parsing midi file... %v", p)
		}
	}()

	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing midi file")
	}

	res = &Imported{Tempo: 120, TimeSignature: 4}
	var events []noteEvent
	for _, track := range s.Tracks {
		var absTicks int64
		for _, event := range track {
			absTicks += int64(event.Delta)
			var ch, key, vel, num, denom uint8
			var bpm float64
			switch {
			case event.Message.GetMetaTempo(&bpm):
				res.Tempo = bpm
			case event.Message.GetMetaMeter(&num, &denom):
				res.TimeSignature = int(num)
			case event.Message.GetNoteOn(&ch, &key, &vel):
				events = append(events, noteEvent{ticks: absTicks, note: key})
			case event.Message.GetNoteOff(&ch, &key, &vel):
				events = append(events, noteEvent{ticks: absTicks, off: true, note: key})
			}
		}
	}

	// earlier ticks first, then note offs
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].ticks != events[j].ticks {
			return events[i].ticks < events[j].ticks
		}
		return events[i].off && !events[j].off
	})

	onsets := map[int64]int{}
	for _, evt := range events {
		if evt.off {
			continue
		}
		i, ok := onsets[evt.ticks]
		if !ok {
			i = len(res.Chords)
			onsets[evt.ticks] = i
			res.Chords = append(res.Chords, nil)
		}
		res.Chords[i] = append(res.Chords[i], evt.note)
	}
	return res, nil
}

func ReadFile(path string) (*Imported, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading midi file %v", path)
	}
	defer f.Close()
	return ReadSequence(f)
}
