package session

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jsphweid/saychord/catalog"
	"github.com/jsphweid/saychord/db"
	"github.com/jsphweid/saychord/midi"
	"github.com/jsphweid/saychord/model"
	"github.com/jsphweid/saychord/resolve"
	"github.com/jsphweid/saychord/sequence"
	"github.com/jsphweid/saychord/synth"
	"github.com/stretchr/testify/assert"
)

const catalogPath = "../catalog/testdata/chords.json"

func started(t *testing.T, opts Options) *Session {
	if opts.Source == nil {
		opts.Source = catalog.FileSource{Path: catalogPath}
	}
	if opts.Synth == nil {
		opts.Synth = &synth.Recorder{}
	}
	if opts.Clock == nil {
		opts.Clock = sequence.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	}
	s := New(opts)
	s.Start(context.Background())
	assert.NoError(t, s.Wait(context.Background()))
	return s
}

func names(s *Session) []string {
	var res []string
	for _, c := range s.Scheduler.Snapshot().Chords {
		res = append(res, c.Name())
	}
	return res
}

func TestStartLoadsCatalog(t *testing.T) {
	s := started(t, Options{})
	assert := assert.New(t)

	select {
	case <-s.Ready():
	default:
		t.Fatal("ready should be closed after Wait")
	}
	assert.NoError(s.LoadErr())
	assert.True(s.Catalog().Available())
	assert.Equal([]string{"C", "G"}, s.Catalog().Tonalities())
}

func TestStartIsIdempotent(t *testing.T) {
	s := started(t, Options{})
	s.Start(context.Background())
	assert.NoError(t, s.Wait(context.Background()))
}

func TestFailedLoad(t *testing.T) {
	s := New(Options{Source: catalog.FileSource{Path: filepath.Join(t.TempDir(), "missing.json")}})
	assert := assert.New(t)

	res := s.Resolve("la mineur")
	assert.Equal(resolve.MissCatalogUnavailable, res.Miss)

	s.Start(context.Background())
	assert.Error(s.Wait(context.Background()))
	assert.Error(s.LoadErr())

	res = s.HandleAttempt(model.RecognitionAttempt{RawText: "la mineur", Confidence: 0.9})
	assert.Equal(resolve.MissCatalogUnavailable, res.Miss)
	assert.Equal(0, s.Scheduler.Len())
}

func TestWaitHonorsContext(t *testing.T) {
	s := New(Options{Source: catalog.BytesSource("{}")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Wait(ctx), context.Canceled)
}

func TestHandleAttemptAppendsInOrder(t *testing.T) {
	s := started(t, Options{})
	assert := assert.New(t)

	assert.True(s.HandleAttempt(model.RecognitionAttempt{RawText: "la mineur"}).OK())
	assert.False(s.HandleAttempt(model.RecognitionAttempt{RawText: "xyz nonsense"}).OK())
	assert.True(s.HandleAttempt(model.RecognitionAttempt{RawText: "sol 7"}).OK())

	assert.Equal([]string{"Am", "G7"}, names(s))
	assert.Equal("la mineur", s.Scheduler.Snapshot().Chords[0].RawText)
}

func TestAddByName(t *testing.T) {
	s := started(t, Options{})
	assert := assert.New(t)

	c, err := s.AddByName("Em")
	assert.NoError(err)
	assert.Equal("Em", c.Name())

	c, err = s.AddByName("mi mineur")
	assert.NoError(err)
	assert.Equal("Em", c.Name())

	_, err = s.AddByName("H13")
	assert.ErrorIs(err, catalog.ErrNotFound)
	assert.Equal([]string{"Em", "Em"}, names(s))
}

func TestSaveRequiresStore(t *testing.T) {
	s := started(t, Options{})
	_, err := s.Save(context.Background(), "verse")
	assert.ErrorIs(t, err, ErrNoStore)
	_, err = s.Load(context.Background(), "verse")
	assert.ErrorIs(t, err, ErrNoStore)
	_, err = s.List(context.Background())
	assert.ErrorIs(t, err, ErrNoStore)
}

func TestSaveAndLoad(t *testing.T) {
	store := db.NewFileStore(filepath.Join(t.TempDir(), "sequences.json"))
	s := started(t, Options{Store: store})
	ctx := context.Background()
	assert := assert.New(t)

	for _, n := range []string{"C", "Am", "D7"} {
		_, err := s.AddByName(n)
		assert.NoError(err)
	}
	assert.NoError(s.Scheduler.SetTempo(90))
	assert.NoError(s.Scheduler.SetTimeSignature(3))

	saved, err := s.Save(ctx, "verse")
	assert.NoError(err)
	assert.NotEmpty(saved.ID)
	assert.Equal([]string{"C", "Am", "D7"}, saved.Chords)

	other := started(t, Options{Store: store})
	missing, err := other.Load(ctx, "verse")
	assert.NoError(err)
	assert.Empty(missing)
	assert.Equal([]string{"C", "Am", "D7"}, names(other))
	assert.Equal(90, other.Scheduler.Transport().Tempo)
	assert.Equal(3, other.Scheduler.Transport().TimeSignature)

	list, err := other.List(ctx)
	assert.NoError(err)
	assert.Len(list, 1)

	_, err = other.Load(ctx, "chorus")
	assert.ErrorIs(err, db.ErrNotFound)
}

func TestLoadReportsUnknownChords(t *testing.T) {
	store := db.NewFileStore(filepath.Join(t.TempDir(), "sequences.json"))
	ctx := context.Background()
	assert.NoError(t, store.Save(ctx, model.SavedSequence{
		Name:          "old",
		Chords:        []string{"G7", "Fmaj9", "Em"},
		Tempo:         500,
		TimeSignature: 4,
		LoopLength:    4,
	}))
	s := started(t, Options{Store: store})
	assert := assert.New(t)

	missing, err := s.Load(ctx, "old")
	assert.NoError(err)
	assert.Equal([]string{"Fmaj9"}, missing)
	assert.Equal([]string{"G7", "Em"}, names(s))
	assert.Equal(240, s.Scheduler.Transport().Tempo)
}

func TestAutosave(t *testing.T) {
	store := db.NewFileStore(filepath.Join(t.TempDir(), "sequences.json"))
	s := started(t, Options{Store: store, AutosaveName: "autosave", AutosaveDelay: 10 * time.Millisecond})

	_, err := s.AddByName("C")
	assert.NoError(t, err)
	_, err = s.AddByName("G")
	assert.NoError(t, err)

	assert.Eventually(t, func() bool {
		saved, err := store.Load(context.Background(), "autosave")
		return err == nil && len(saved.Chords) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestImportMIDI(t *testing.T) {
	src := started(t, Options{})
	for _, n := range []string{"Am", "G7", "C"} {
		_, err := src.AddByName(n)
		assert.NoError(t, err)
	}
	assert.NoError(t, src.Scheduler.SetTempo(100))

	var buf bytes.Buffer
	snap := src.Scheduler.Snapshot()
	assert.NoError(t, midi.WriteSequence(&buf, snap.Chords, snap.Transport))
	imp, err := midi.ReadSequence(&buf)
	assert.NoError(t, err)
	imp.Chords = append(imp.Chords, model.Notes{1, 2, 3})

	s := started(t, Options{})
	assert := assert.New(t)
	unknown, err := s.ImportMIDI(imp)
	assert.NoError(err)
	assert.Equal(1, unknown)
	assert.Equal([]string{"Am", "G7", "C"}, names(s))
	assert.Equal(100, s.Scheduler.Transport().Tempo)
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chords.json")
	assert.NoError(t, os.WriteFile(path, []byte(`{"C": [{"name": "C", "notes": ["C", "E", "G"]}]}`), 0666))
	s := started(t, Options{Source: catalog.FileSource{Path: path}})
	assert := assert.New(t)

	_, err := s.Catalog().ByName("Dm")
	assert.ErrorIs(err, catalog.ErrNotFound)

	assert.NoError(os.WriteFile(path, []byte(`{"D": [{"name": "Dm", "aliases": ["re mineur"], "notes": ["D", "F", "A"]}]}`), 0666))
	assert.NoError(s.Reload(context.Background()))
	_, err = s.Catalog().ByName("Dm")
	assert.NoError(err)
	assert.Equal("Dm", s.Resolve("re mineur").Chord.Name())

	assert.NoError(os.WriteFile(path, []byte("{"), 0666))
	assert.Error(s.Reload(context.Background()))
	assert.True(s.Catalog().Available())
	_, err = s.Catalog().ByName("Dm")
	assert.NoError(err)
}
