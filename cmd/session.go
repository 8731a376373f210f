package cmd

import (
	"context"
	"time"

	"github.com/jsphweid/saychord/catalog"
	"github.com/jsphweid/saychord/chord"
	"github.com/jsphweid/saychord/db"
	"github.com/jsphweid/saychord/logger"
	"github.com/jsphweid/saychord/model"
	"github.com/jsphweid/saychord/resolve"
	"github.com/jsphweid/saychord/sequence"
	"github.com/jsphweid/saychord/session"
	"github.com/jsphweid/saychord/synth"
	"github.com/pkg/errors"
)

const catalogTimeout = 30 * time.Second

var catalogPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "chord catalog file (overrides CATALOG_PATH, CATALOG_URL and S3)")
}

func catalogSource() (catalog.Source, error) {
	if catalogPath != "" {
		return catalog.FileSource{Path: catalogPath}, nil
	}
	return catalog.SourceFromEnv()
}

// openSession builds a session and waits for its catalog. withStore also
// connects the sequence store.
func openSession(ctx context.Context, s synth.Synth, withStore bool) (*session.Session, error) {
	src, err := catalogSource()
	if err != nil {
		return nil, err
	}
	opts := session.Options{Source: src, Synth: s}
	if withStore {
		store, err := db.FromEnv()
		if err != nil {
			return nil, err
		}
		opts.Store = store
	}

	sess := session.New(opts)
	sess.Start(ctx)
	ctx, cancel := context.WithTimeout(ctx, catalogTimeout)
	defer cancel()
	if err := sess.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "chord catalog did not load")
	}
	return sess, nil
}

// resolveAll resolves every phrase and returns the chords that matched.
// Phrases that miss are logged and skipped.
func resolveAll(sess *session.Session, phrases []string) []*model.ResolvedChord {
	var chords []*model.ResolvedChord
	for _, p := range phrases {
		res := sess.Resolve(p)
		if !res.OK() {
			logger.Warn("Skipping phrase", logger.Fields{"phrase": p, "miss": string(res.Miss)})
			continue
		}
		chords = append(chords, res.Chord)
	}
	return chords
}

// applyTransport validates every field present before applying any, so a
// rejected request leaves the transport as it was.
func applyTransport(sess *session.Session, t model.TransportRequestBody) error {
	sched := sess.Scheduler
	if t.TimeSignature != nil {
		if err := sched.CheckTimeSignature(*t.TimeSignature); err != nil {
			return err
		}
	}
	if t.LoopLength != nil {
		if err := sched.CheckLoopLength(*t.LoopLength); err != nil {
			return err
		}
	}

	if t.TimeSignature != nil {
		if err := sched.SetTimeSignature(*t.TimeSignature); err != nil {
			return err
		}
	}
	if t.LoopLength != nil {
		if err := sched.SetLoopLength(*t.LoopLength); err != nil {
			return err
		}
	}
	if t.Looping != nil {
		sched.SetLooping(*t.Looping)
	}
	if t.Tempo != nil {
		return sched.SetTempo(*t.Tempo)
	}
	return nil
}

// clamped reports a tempo that was out of range and has been applied clamped.
func clamped(err error) bool {
	var perr *sequence.ParameterError
	if errors.As(err, &perr) && perr.Clamped {
		logger.Warn("Tempo out of range", logger.Fields{"tempo": perr.Value, "applied": perr.Applied})
		return true
	}
	return false
}

func chordResult(def *model.ChordDefinition) model.ChordResult {
	res := model.ChordResult{
		Name:          def.CanonicalName,
		LocalizedName: def.LocalizedName,
		Tonality:      def.Tonality,
		Notes:         def.Pitches,
	}
	if notes, err := chord.Notes(def.Pitches); err == nil {
		for _, n := range notes {
			res.MidiNotes = append(res.MidiNotes, int(n))
		}
		res.Key = chord.CreateChordKey(notes)
	}
	return res
}

func resolveResult(res resolve.Result, text string) model.ResolveResult {
	out := model.ResolveResult{
		Text:       text,
		Normalized: res.Normalized,
		Corrected:  res.Corrected,
		Miss:       string(res.Miss),
	}
	if res.OK() {
		out.Stage = string(res.Stage)
		c := chordResult(res.Chord.Definition)
		out.Chord = &c
	}
	return out
}

func sequenceResponse(sess *session.Session) model.SequenceResponse {
	snap := sess.Scheduler.Snapshot()
	res := model.SequenceResponse{Chords: make([]model.ChordResult, 0, len(snap.Chords)), Transport: snap.Transport}
	for _, c := range snap.Chords {
		res.Chords = append(res.Chords, chordResult(c.Definition))
	}
	return res
}
