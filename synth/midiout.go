package synth

import (
	"sync"
	"time"

	"github.com/jsphweid/saychord/chord"
	"github.com/jsphweid/saychord/logger"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

const (
	channel  = 0
	velocity = 80
)

// Sender is the part of a MIDI out port the synth writes to.
type Sender interface {
	Send(data []byte) error
}

// MIDIOut plays chords on a MIDI out port. A new chord releases whatever is
// still sounding.
type MIDIOut struct {
	mu       sync.Mutex
	out      Sender
	sounding []uint8
	gen      uint64
	release  *time.Timer
}

func NewMIDIOut(out Sender) *MIDIOut {
	return &MIDIOut{out: out}
}

// OpenPort opens the named out port, or the first one when name is empty.
// A driver has to be registered by importing it.
func OpenPort(name string) (drivers.Out, error) {
	var out drivers.Out
	var err error
	if name == "" {
		outs := midi.GetOutPorts()
		if len(outs) == 0 {
			return nil, errors.New("no midi out ports available")
		}
		out = outs[0]
	} else {
		out, err = midi.FindOutPort(name)
		if err != nil {
			return nil, errors.Wrapf(err, "could not find midi out port %q", name)
		}
	}
	if err := out.Open(); err != nil {
		return nil, errors.Wrapf(err, "could not open midi out port %v", out)
	}
	logger.Info("Opened midi out port", logger.Fields{"port": out.String()})
	return out, nil
}

func (m *MIDIOut) PlayChord(pitches []string, duration time.Duration) error {
	notes, err := chord.Notes(pitches)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.releaseLocked(); err != nil {
		return err
	}
	for _, n := range notes {
		if err := m.out.Send(midi.NoteOn(channel, n, velocity)); err != nil {
			return errors.Wrap(err, "could not send note on")
		}
		m.sounding = append(m.sounding, n)
	}

	m.gen++
	gen := m.gen
	m.release = time.AfterFunc(duration, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.gen != gen {
			return
		}
		if err := m.releaseLocked(); err != nil {
			logger.Warn("Could not release chord", logger.Fields{"error": err.Error()})
		}
	})
	return nil
}

func (m *MIDIOut) StopAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	return m.releaseLocked()
}

func (m *MIDIOut) releaseLocked() error {
	if m.release != nil {
		m.release.Stop()
		m.release = nil
	}
	notes := m.sounding
	m.sounding = nil
	for _, n := range notes {
		if err := m.out.Send(midi.NoteOff(channel, n)); err != nil {
			return errors.Wrap(err, "could not send note off")
		}
	}
	return nil
}
