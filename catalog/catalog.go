// Package catalog holds the read-only set of known chord definitions.
//
// A Catalog starts out unavailable. It becomes available after exactly one
// successful Load and never changes after that; building a fresh Catalog is
// the only way to pick up new data.
package catalog

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/jsphweid/saychord/chord"
	"github.com/jsphweid/saychord/logger"
	"github.com/jsphweid/saychord/model"
	"github.com/jsphweid/saychord/normalize"
	"github.com/pkg/errors"
)

var (
	ErrUnavailable   = errors.New("chord catalog unavailable")
	ErrAlreadyLoaded = errors.New("chord catalog already loaded")
	ErrNotFound      = errors.New("chord not found")
)

// Collision records a lookup key claimed by more than one definition. The
// first definition in catalog order keeps the key.
type Collision struct {
	Key     string
	Kept    string
	Ignored string
}

type scanName struct {
	text string
	def  *model.ChordDefinition
}

type Catalog struct {
	mu         sync.RWMutex
	attempted  bool
	available  bool
	loadErr    error
	tonalities []string
	byTonality map[string][]*model.ChordDefinition
	all        []*model.ChordDefinition
	byKey      map[string]*model.ChordDefinition
	byName     map[string]*model.ChordDefinition
	byNotes    map[string]*model.ChordDefinition
	scan       []scanName
	collisions []Collision
}

func New() *Catalog {
	return &Catalog{}
}

// Load reads the catalog from src. Only the first call does any work; later
// calls return ErrAlreadyLoaded whether or not the first one succeeded.
func (c *Catalog) Load(ctx context.Context, src Source) error {
	c.mu.Lock()
	if c.attempted {
		c.mu.Unlock()
		return ErrAlreadyLoaded
	}
	c.attempted = true
	c.mu.Unlock()

	err := c.load(ctx, src)
	if err != nil {
		c.mu.Lock()
		c.loadErr = err
		c.mu.Unlock()
		logger.Error("Failed to load chord catalog", err, logger.Fields{"source": src.String()})
		return err
	}
	return nil
}

func (c *Catalog) load(ctx context.Context, src Source) error {
	r, err := src.Open(ctx)
	if err != nil {
		return errors.Wrapf(err, "could not open catalog %v", src)
	}
	defer r.Close()

	groups, err := decode(r)
	if err != nil {
		return errors.Wrapf(err, "could not parse catalog %v", src)
	}
	built, err := build(groups)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tonalities = built.tonalities
	c.byTonality = built.byTonality
	c.all = built.all
	c.byKey = built.byKey
	c.byName = built.byName
	c.byNotes = built.byNotes
	c.scan = built.scan
	c.collisions = built.collisions
	c.available = true

	logger.Info("Loaded chord catalog", logger.Fields{
		"source":     src.String(),
		"chords":     len(c.all),
		"tonalities": len(c.tonalities),
		"collisions": len(c.collisions),
	})
	return nil
}

type group struct {
	tonality string
	defs     []*model.ChordDefinition
}

// decode reads a JSON object of tonality -> definitions while keeping the
// order of the object's keys.
func decode(r io.Reader) ([]group, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("catalog must be a JSON object keyed by tonality")
	}

	var groups []group
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		tonality := tok.(string)
		var defs []*model.ChordDefinition
		if err := dec.Decode(&defs); err != nil {
			return nil, errors.Wrapf(err, "tonality %q", tonality)
		}
		groups = append(groups, group{tonality: tonality, defs: defs})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return groups, nil
}

func build(groups []group) (*Catalog, error) {
	c := &Catalog{
		byTonality: map[string][]*model.ChordDefinition{},
		byKey:      map[string]*model.ChordDefinition{},
		byName:     map[string]*model.ChordDefinition{},
		byNotes:    map[string]*model.ChordDefinition{},
	}

	for _, g := range groups {
		if _, seen := c.byTonality[g.tonality]; !seen {
			c.tonalities = append(c.tonalities, g.tonality)
		}
		for _, def := range g.defs {
			if def == nil || strings.TrimSpace(def.CanonicalName) == "" {
				return nil, errors.Errorf("tonality %q has a chord without a name", g.tonality)
			}
			if _, dup := c.byName[def.CanonicalName]; dup {
				return nil, errors.Errorf("duplicate chord name %q", def.CanonicalName)
			}
			c.byName[def.CanonicalName] = def

			notes, err := validatePitches(def)
			if err != nil {
				return nil, err
			}
			def.Tonality = g.tonality

			c.byTonality[g.tonality] = append(c.byTonality[g.tonality], def)
			c.all = append(c.all, def)
			c.index(def, notes)
		}
	}
	return c, nil
}

func validatePitches(def *model.ChordDefinition) (model.Notes, error) {
	if len(def.Pitches) == 0 {
		return nil, errors.Errorf("chord %q has no notes", def.CanonicalName)
	}
	seen := map[string]bool{}
	for _, p := range def.Pitches {
		if seen[p] {
			return nil, errors.Errorf("chord %q repeats pitch %q", def.CanonicalName, p)
		}
		seen[p] = true
	}
	notes, err := chord.Notes(def.Pitches)
	if err != nil {
		return nil, errors.Wrapf(err, "chord %q", def.CanonicalName)
	}
	return notes, nil
}

func (c *Catalog) index(def *model.ChordDefinition, notes model.Notes) {
	for _, name := range def.Names() {
		if text := normalize.Text(name); text != "" {
			c.scan = append(c.scan, scanName{text: text, def: def})
		}

		key := normalize.Key(name)
		if key == "" {
			continue
		}
		kept, taken := c.byKey[key]
		if !taken {
			c.byKey[key] = def
			continue
		}
		if kept == def {
			continue
		}
		c.collisions = append(c.collisions, Collision{Key: key, Kept: kept.CanonicalName, Ignored: def.CanonicalName})
		logger.Warn("Chord name collides with an earlier chord", logger.Fields{
			"key":     key,
			"kept":    kept.CanonicalName,
			"ignored": def.CanonicalName,
		})
	}

	noteKey := chord.CreateChordKey(notes)
	if _, taken := c.byNotes[noteKey]; !taken {
		c.byNotes[noteKey] = def
	}
}

// Available reports whether a load has completed successfully.
func (c *Catalog) Available() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.available
}

// Err returns nil once the catalog is available, the load error if loading
// failed, or ErrUnavailable if no load has finished yet.
func (c *Catalog) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.available {
		return nil
	}
	if c.loadErr != nil {
		return c.loadErr
	}
	return ErrUnavailable
}

// Lookup finds the definition for a key already in normalize.Key form.
func (c *Catalog) Lookup(key string) (*model.ChordDefinition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.available {
		return nil, ErrUnavailable
	}
	if def, ok := c.byKey[key]; ok {
		return def, nil
	}
	return nil, ErrNotFound
}

// Find looks a chord up by any spelling of one of its names.
func (c *Catalog) Find(name string) (*model.ChordDefinition, error) {
	return c.Lookup(normalize.Key(name))
}

// ByName returns the definition with exactly this canonical name.
func (c *Catalog) ByName(name string) (*model.ChordDefinition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.available {
		return nil, ErrUnavailable
	}
	if def, ok := c.byName[name]; ok {
		return def, nil
	}
	return nil, ErrNotFound
}

// FindByNotes returns the first definition whose notes form the same set.
func (c *Catalog) FindByNotes(notes model.Notes) (*model.ChordDefinition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.available {
		return nil, ErrUnavailable
	}
	if def, ok := c.byNotes[chord.CreateChordKey(notes)]; ok {
		return def, nil
	}
	return nil, ErrNotFound
}

// Scan returns the first definition, in catalog order, having a name that
// appears inside text. Names are compared in normalize.Text form.
func (c *Catalog) Scan(text string) (*model.ChordDefinition, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.available {
		return nil, ErrUnavailable
	}
	for _, n := range c.scan {
		if strings.Contains(text, n.text) {
			return n.def, nil
		}
	}
	return nil, ErrNotFound
}

// Tonalities lists the tonality groups in file order.
func (c *Catalog) Tonalities() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.tonalities...)
}

func (c *Catalog) InTonality(tonality string) []*model.ChordDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*model.ChordDefinition(nil), c.byTonality[tonality]...)
}

// All lists every definition in catalog order.
func (c *Catalog) All() []*model.ChordDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*model.ChordDefinition(nil), c.all...)
}

func (c *Catalog) Collisions() []Collision {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Collision(nil), c.collisions...)
}
