// Package sequence owns the chord sequence and plays it back one measure per
// chord.
//
// Tick n of a run is due at origin + n*period. Timers are armed for the time
// left until that deadline, so callback latency never accumulates. Every
// entry point, timer callbacks included, runs under one mutex; a callback
// from an earlier run sees a different generation and does nothing.
package sequence

import (
	"sync"
	"time"

	"github.com/jsphweid/saychord/constants"
	"github.com/jsphweid/saychord/logger"
	"github.com/jsphweid/saychord/model"
	"github.com/jsphweid/saychord/synth"
	"github.com/jsphweid/saychord/util"
)

// NoCursor is the cursor value while stopped.
const NoCursor = -1

// Period is how long one measure lasts.
func Period(tempo int, beatsPerMeasure int) time.Duration {
	return time.Duration(float64(time.Minute) / float64(tempo) * float64(beatsPerMeasure))
}

// Snapshot is a copy of the scheduler state.
type Snapshot struct {
	Chords    []*model.ResolvedChord
	Transport model.Transport
}

type Scheduler struct {
	mu    sync.Mutex
	clock Clock
	synth synth.Synth

	chords     []*model.ResolvedChord
	tempo      int
	beats      int
	loopLength int
	looping    bool
	playing    bool
	cursor     int

	origin time.Time
	ticks  int
	gen    uint64
	timer  Timer

	onChanged func([]*model.ResolvedChord)
	onPlay    func()
	onStop    func()
	pending   []func()
}

func New(s synth.Synth, clock Clock) *Scheduler {
	return &Scheduler{
		clock:      clock,
		synth:      s,
		tempo:      constants.DefaultTempo,
		beats:      constants.DefaultTimeSignature,
		loopLength: constants.DefaultLoopLength,
		cursor:     NoCursor,
	}
}

// OnSequenceChanged sets the handler called after every sequence mutation.
// Only the last handler registered is kept; nil removes it.
func (s *Scheduler) OnSequenceChanged(h func(chords []*model.ResolvedChord)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChanged = h
}

func (s *Scheduler) OnPlay(h func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPlay = h
}

func (s *Scheduler) OnStop(h func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStop = h
}

func (s *Scheduler) AddChord(c *model.ResolvedChord) error {
	if c == nil {
		return ErrNilChord
	}
	s.mu.Lock()
	defer s.unlock()
	s.chords = append(s.chords, c)
	s.emitChanged()
	return nil
}

// RemoveChord deletes the chord at index. While playing, a removal at or
// before the cursor moves the cursor back one so the next tick plays the
// chord that follows the one last heard.
func (s *Scheduler) RemoveChord(index int) error {
	s.mu.Lock()
	defer s.unlock()
	if index < 0 || index >= len(s.chords) {
		err := indexError(index, len(s.chords))
		logger.Warn("Could not remove chord", logger.Fields{"error": err.Error()})
		return err
	}

	s.chords = append(s.chords[:index:index], s.chords[index+1:]...)
	if s.playing {
		if index <= s.cursor {
			s.cursor--
		}
		if len(s.chords) == 0 {
			s.stopLocked()
		}
	}
	s.emitChanged()
	return nil
}

// Clear stops playback and empties the sequence.
func (s *Scheduler) Clear() {
	s.mu.Lock()
	defer s.unlock()
	s.stopLocked()
	s.chords = nil
	s.emitChanged()
}

// Replace stops playback and swaps in chords and transport settings. Invalid
// settings leave everything untouched; a tempo out of range is clamped and
// reported.
func (s *Scheduler) Replace(chords []*model.ResolvedChord, t model.Transport) error {
	for _, c := range chords {
		if c == nil {
			return ErrNilChord
		}
	}
	if err := s.CheckTimeSignature(t.TimeSignature); err != nil {
		return err
	}
	if err := s.CheckLoopLength(t.LoopLength); err != nil {
		return err
	}
	tempo, tempoErr := clampTempo(t.Tempo)

	s.mu.Lock()
	defer s.unlock()
	s.stopLocked()
	s.chords = append([]*model.ResolvedChord(nil), chords...)
	s.tempo = tempo
	s.beats = t.TimeSignature
	s.loopLength = t.LoopLength
	s.looping = t.Looping
	s.emitChanged()
	return tempoErr
}

// Play starts from the first chord. A running playback is stopped first.
func (s *Scheduler) Play() error {
	s.mu.Lock()
	defer s.unlock()
	if len(s.chords) == 0 {
		logger.Debug("Play requested on empty sequence", nil)
		return ErrEmptySequence
	}
	s.stopLocked()

	s.playing = true
	s.cursor = 0
	s.gen++
	s.anchor()
	s.sound()
	s.arm()
	if h := s.onPlay; h != nil {
		s.pending = append(s.pending, h)
	}
	logger.Debug("Playback started", logger.Fields{"chords": len(s.chords), "tempo": s.tempo})
	return nil
}

// Stop halts playback and silences the synthesizer. Stopping while stopped
// does nothing.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.unlock()
	s.stopLocked()
}

// PlayIndex previews one chord without touching playback.
func (s *Scheduler) PlayIndex(index int) error {
	s.mu.Lock()
	defer s.unlock()
	if index < 0 || index >= len(s.chords) {
		err := indexError(index, len(s.chords))
		logger.Warn("Could not preview chord", logger.Fields{"error": err.Error()})
		return err
	}
	s.play(s.chords[index], constants.PreviewSeconds*time.Second)
	return nil
}

// SetTempo clamps bpm to the supported range. A clamped value is applied and
// reported as a ParameterError. While playing, timing restarts from the
// current chord at the new period.
func (s *Scheduler) SetTempo(bpm int) error {
	tempo, err := clampTempo(bpm)

	s.mu.Lock()
	defer s.unlock()
	s.tempo = tempo
	s.rearm()
	return err
}

func (s *Scheduler) SetTimeSignature(beats int) error {
	if err := s.CheckTimeSignature(beats); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.unlock()
	s.beats = beats
	s.rearm()
	return nil
}

func (s *Scheduler) SetLoopLength(measures int) error {
	if err := s.CheckLoopLength(measures); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.unlock()
	s.loopLength = measures
	return nil
}

// SetLooping is read when playback reaches the end of the sequence.
func (s *Scheduler) SetLooping(looping bool) {
	s.mu.Lock()
	defer s.unlock()
	s.looping = looping
}

func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Chords:    append([]*model.ResolvedChord(nil), s.chords...),
		Transport: s.transportLocked(),
	}
}

func (s *Scheduler) Transport() model.Transport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transportLocked()
}

func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chords)
}

func (s *Scheduler) transportLocked() model.Transport {
	return model.Transport{
		Tempo:         s.tempo,
		TimeSignature: s.beats,
		LoopLength:    s.loopLength,
		Looping:       s.looping,
		Playing:       s.playing,
		Cursor:        s.cursor,
	}
}

func (s *Scheduler) onTick(gen uint64) {
	s.mu.Lock()
	defer s.unlock()
	if !s.playing || gen != s.gen {
		return
	}

	s.ticks++
	s.cursor++
	if s.cursor >= len(s.chords) {
		if !s.looping {
			s.stopLocked()
			return
		}
		s.cursor = 0
	}

	// Far behind, e.g. after the process was suspended: start a new run
	// instead of firing every missed tick at once.
	period := s.period()
	if now := s.clock.Now(); now.Sub(s.deadline(s.ticks)) > 2*period {
		logger.Warn("Playback fell behind, re-anchoring", logger.Fields{"behind": now.Sub(s.deadline(s.ticks)).String()})
		s.anchor()
	}

	s.sound()
	s.arm()
}

func (s *Scheduler) stopLocked() {
	if !s.playing {
		return
	}
	s.playing = false
	s.cursor = NoCursor
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if err := s.synth.StopAll(); err != nil {
		logger.Error("Could not silence synthesizer", err, nil)
	}
	if h := s.onStop; h != nil {
		s.pending = append(s.pending, h)
	}
	logger.Debug("Playback stopped", nil)
}

// rearm restarts timing from now when playing, keeping the cursor.
func (s *Scheduler) rearm() {
	if !s.playing {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	s.anchor()
	s.arm()
}

func (s *Scheduler) anchor() {
	s.origin = s.clock.Now()
	s.ticks = 0
}

func (s *Scheduler) deadline(tick int) time.Time {
	return s.origin.Add(time.Duration(tick) * s.period())
}

func (s *Scheduler) arm() {
	gen := s.gen
	wait := s.deadline(s.ticks + 1).Sub(s.clock.Now())
	if wait < 0 {
		wait = 0
	}
	s.timer = s.clock.AfterFunc(wait, func() {
		s.onTick(gen)
	})
}

func (s *Scheduler) period() time.Duration {
	return Period(s.tempo, s.beats)
}

// sound plays the chord under the cursor for one measure.
func (s *Scheduler) sound() {
	if s.cursor < 0 || s.cursor >= len(s.chords) {
		return
	}
	s.play(s.chords[s.cursor], s.period())
}

func (s *Scheduler) play(c *model.ResolvedChord, d time.Duration) {
	if err := s.synth.PlayChord(c.Pitches(), d); err != nil {
		logger.Error("Could not play chord", err, logger.Fields{"chord": c.Name()})
	}
}

func (s *Scheduler) emitChanged() {
	if h := s.onChanged; h != nil {
		chords := append([]*model.ResolvedChord(nil), s.chords...)
		s.pending = append(s.pending, func() { h(chords) })
	}
}

// unlock releases the mutex and then runs the notifications queued while it
// was held, so handlers can call back into the scheduler.
func (s *Scheduler) unlock() {
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, f := range pending {
		f()
	}
}

func clampTempo(bpm int) (int, error) {
	tempo := util.Clamp(bpm, constants.MinTempo, constants.MaxTempo)
	if tempo != bpm {
		err := &ParameterError{Field: "tempo", Value: bpm, Applied: tempo, Clamped: true}
		logger.Debug("Tempo clamped", logger.Fields{"requested": bpm, "applied": tempo})
		return tempo, err
	}
	return tempo, nil
}

// CheckTimeSignature reports whether beats would be accepted by
// SetTimeSignature, without changing anything.
func (s *Scheduler) CheckTimeSignature(beats int) error {
	if util.Contains(constants.TimeSignatures, beats) {
		return nil
	}
	return &ParameterError{Field: "timeSignature", Value: beats, Applied: s.Transport().TimeSignature}
}

// CheckLoopLength is CheckTimeSignature for SetLoopLength.
func (s *Scheduler) CheckLoopLength(measures int) error {
	if util.Contains(constants.LoopLengths, measures) {
		return nil
	}
	return &ParameterError{Field: "loopLength", Value: measures, Applied: s.Transport().LoopLength}
}
