// Package session wires a catalog, a resolver, a scheduler and a store into
// one voice-driven sequencing session.
package session

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"github.com/jsphweid/saychord/catalog"
	"github.com/jsphweid/saychord/chord"
	"github.com/jsphweid/saychord/db"
	"github.com/jsphweid/saychord/logger"
	"github.com/jsphweid/saychord/midi"
	"github.com/jsphweid/saychord/model"
	"github.com/jsphweid/saychord/resolve"
	"github.com/jsphweid/saychord/sequence"
	"github.com/jsphweid/saychord/synth"
	"github.com/pkg/errors"
)

const defaultAutosaveDelay = 2 * time.Second

var ErrNoStore = errors.New("no sequence store configured")

type Options struct {
	Source catalog.Source
	Synth  synth.Synth
	Clock  sequence.Clock

	// Store is optional. Without one, saving and autosave are disabled.
	Store         db.Store
	AutosaveName  string
	AutosaveDelay time.Duration
}

type Session struct {
	Scheduler *sequence.Scheduler

	source catalog.Source
	store  db.Store
	ready  chan struct{}
	once   sync.Once

	mu       sync.RWMutex
	catalog  *catalog.Catalog
	resolver *resolve.Resolver
	loadErr  error

	// serializes resolve-and-append so chords land in receipt order
	attempts sync.Mutex

	autosaveName string
	autosave     func(func())
}

func New(opts Options) *Session {
	if opts.Synth == nil {
		opts.Synth = synth.Log{}
	}
	if opts.Clock == nil {
		opts.Clock = sequence.RealClock()
	}
	if opts.AutosaveDelay == 0 {
		opts.AutosaveDelay = defaultAutosaveDelay
	}

	cat := catalog.New()
	s := &Session{
		Scheduler:    sequence.New(opts.Synth, opts.Clock),
		source:       opts.Source,
		store:        opts.Store,
		ready:        make(chan struct{}),
		catalog:      cat,
		resolver:     resolve.New(cat),
		autosaveName: opts.AutosaveName,
		autosave:     debounce.New(opts.AutosaveDelay),
	}
	if s.store != nil && s.autosaveName != "" {
		s.Scheduler.OnSequenceChanged(func(chords []*model.ResolvedChord) {
			s.autosave(s.runAutosave)
		})
	}
	return s
}

// Start loads the catalog in the background. Ready is closed when the load
// finishes, whether or not it succeeded.
func (s *Session) Start(ctx context.Context) {
	s.once.Do(func() {
		go func() {
			defer close(s.ready)
			err := s.current().Load(ctx, s.source)
			s.mu.Lock()
			s.loadErr = err
			s.mu.Unlock()
		}()
	})
}

func (s *Session) Ready() <-chan struct{} {
	return s.ready
}

// Wait blocks until the first catalog load finishes and returns its error.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.ready:
		return s.LoadErr()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Session) LoadErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Reload loads a fresh catalog and swaps it in on success. The current
// catalog keeps serving when the reload fails.
func (s *Session) Reload(ctx context.Context) error {
	cat := catalog.New()
	if err := cat.Load(ctx, s.source); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = cat
	s.resolver = resolve.New(cat)
	s.loadErr = nil
	return nil
}

func (s *Session) Catalog() *catalog.Catalog {
	return s.current()
}

func (s *Session) current() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

func (s *Session) Resolve(text string) resolve.Result {
	s.mu.RLock()
	r := s.resolver
	s.mu.RUnlock()
	return r.Resolve(text)
}

// HandleAttempt resolves a finalized utterance and appends the chord to the
// sequence. A miss leaves the sequence alone.
func (s *Session) HandleAttempt(a model.RecognitionAttempt) resolve.Result {
	s.attempts.Lock()
	defer s.attempts.Unlock()

	res := s.Resolve(a.RawText)
	if res.OK() {
		if err := s.Scheduler.AddChord(res.Chord); err != nil {
			logger.Error("Could not append resolved chord", err, nil)
		}
	}
	return res
}

// AddByName appends a chord picked by name, skipping speech correction. The
// canonical name is tried first, then any spelling of a name or alias.
func (s *Session) AddByName(name string) (*model.ResolvedChord, error) {
	cat := s.current()
	def, err := cat.ByName(name)
	if errors.Is(err, catalog.ErrNotFound) {
		def, err = cat.Find(name)
	}
	if err != nil {
		return nil, err
	}
	c := &model.ResolvedChord{Definition: def, RawText: name}
	s.attempts.Lock()
	defer s.attempts.Unlock()
	return c, s.Scheduler.AddChord(c)
}

// Save stores the current sequence and transport under name.
func (s *Session) Save(ctx context.Context, name string) (model.SavedSequence, error) {
	if s.store == nil {
		return model.SavedSequence{}, ErrNoStore
	}
	snap := s.Scheduler.Snapshot()
	saved := model.SavedSequence{
		ID:            uuid.New().String(),
		Name:          name,
		Chords:        make([]string, len(snap.Chords)),
		Tempo:         snap.Transport.Tempo,
		TimeSignature: snap.Transport.TimeSignature,
		LoopLength:    snap.Transport.LoopLength,
		SavedAt:       time.Now().UTC(),
	}
	for i, c := range snap.Chords {
		saved.Chords[i] = c.Name()
	}
	if err := s.store.Save(ctx, saved); err != nil {
		return model.SavedSequence{}, err
	}
	logger.Info("Saved sequence", logger.Fields{"name": name, "chords": len(saved.Chords)})
	return saved, nil
}

// Load replaces the sequence with the one saved under name. Chords are looked
// up again by name; names the catalog no longer knows are dropped and
// returned.
func (s *Session) Load(ctx context.Context, name string) ([]string, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	saved, err := s.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	cat := s.current()
	var chords []*model.ResolvedChord
	var missing []string
	for _, n := range saved.Chords {
		def, err := cat.ByName(n)
		if err != nil {
			if errors.Is(err, catalog.ErrUnavailable) {
				return nil, err
			}
			missing = append(missing, n)
			continue
		}
		chords = append(chords, &model.ResolvedChord{Definition: def, RawText: n})
	}

	transport := model.Transport{
		Tempo:         saved.Tempo,
		TimeSignature: saved.TimeSignature,
		LoopLength:    saved.LoopLength,
		Looping:       s.Scheduler.Transport().Looping,
	}
	if err := replaceClamped(s.Scheduler, chords, transport); err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		logger.Warn("Saved chords not in catalog", logger.Fields{"name": name, "missing": len(missing)})
	}
	return missing, nil
}

func (s *Session) List(ctx context.Context) ([]model.SavedSequence, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.List(ctx)
}

// ImportMIDI replaces the sequence with the chords of an SMF, matching each
// note group against the catalog. It returns the number of groups that
// matched nothing.
func (s *Session) ImportMIDI(imp *midi.Imported) (int, error) {
	cat := s.current()
	var chords []*model.ResolvedChord
	unknown := 0
	for _, notes := range imp.Chords {
		def, err := cat.FindByNotes(notes)
		if errors.Is(err, catalog.ErrUnavailable) {
			return 0, err
		}
		if err != nil {
			unknown++
			continue
		}
		chords = append(chords, &model.ResolvedChord{Definition: def, RawText: chord.CreateChordKey(notes)})
	}

	current := s.Scheduler.Transport()
	transport := model.Transport{
		Tempo:         int(math.Round(imp.Tempo)),
		TimeSignature: imp.TimeSignature,
		LoopLength:    current.LoopLength,
		Looping:       current.Looping,
	}
	return unknown, replaceClamped(s.Scheduler, chords, transport)
}

// replaceClamped treats a clamped tempo as success.
func replaceClamped(sched *sequence.Scheduler, chords []*model.ResolvedChord, t model.Transport) error {
	err := sched.Replace(chords, t)
	var perr *sequence.ParameterError
	if errors.As(err, &perr) && perr.Clamped {
		logger.Warn("Tempo out of range", logger.Fields{"tempo": perr.Value, "applied": perr.Applied})
		return nil
	}
	return err
}

func (s *Session) runAutosave() {
	if _, err := s.Save(context.Background(), s.autosaveName); err != nil {
		logger.Error("Autosave failed", err, logger.Fields{"name": s.autosaveName})
	}
}
