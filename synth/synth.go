// Package synth sounds chords. Anything that can start a set of pitches for a
// duration and silence everything can act as the synthesizer.
package synth

import (
	"strings"
	"sync"
	"time"

	"github.com/jsphweid/saychord/logger"
)

type Synth interface {
	PlayChord(pitches []string, duration time.Duration) error
	StopAll() error
}

// Log is a Synth that only writes debug lines. It is used when no MIDI port
// is configured.
type Log struct{}

func (Log) PlayChord(pitches []string, duration time.Duration) error {
	logger.Debug("Play chord", logger.Fields{
		"pitches":  strings.Join(pitches, " "),
		"duration": duration.String(),
	})
	return nil
}

func (Log) StopAll() error {
	logger.Debug("Stop all voices", nil)
	return nil
}

// Call is one recorded Synth call. Stop is set for StopAll.
type Call struct {
	Pitches  []string
	Duration time.Duration
	Stop     bool
}

// Recorder keeps every call it receives.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

func (r *Recorder) PlayChord(pitches []string, duration time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Pitches: append([]string(nil), pitches...), Duration: duration})
	return nil
}

func (r *Recorder) StopAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Stop: true})
	return nil
}

func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Played returns the pitches of every PlayChord call in order.
func (r *Recorder) Played() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res [][]string
	for _, c := range r.calls {
		if !c.Stop {
			res = append(res, c.Pitches)
		}
	}
	return res
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
