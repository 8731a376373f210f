// Package resolve turns a transcript into a catalog chord.
package resolve

import (
	"github.com/jsphweid/saychord/catalog"
	"github.com/jsphweid/saychord/correct"
	"github.com/jsphweid/saychord/extract"
	"github.com/jsphweid/saychord/logger"
	"github.com/jsphweid/saychord/model"
	"github.com/jsphweid/saychord/normalize"
	"github.com/pkg/errors"
)

// Miss says why nothing was resolved. Misses are ordinary outcomes.
type Miss string

const (
	MissNone               Miss = ""
	MissCatalogUnavailable Miss = "catalog-unavailable"
	MissNoMatch            Miss = "no-match"
)

// Stage names the step that produced a chord.
type Stage string

const (
	StageDescriptor Stage = "descriptor"
	StageExact      Stage = "exact"
	StageSubstring  Stage = "substring"
)

type Result struct {
	Chord *model.ResolvedChord
	Miss  Miss
	Stage Stage

	// Pattern is the extractor pattern that matched, if any.
	Pattern    string
	Normalized string
	Corrected  string
}

func (r Result) OK() bool {
	return r.Chord != nil
}

// Catalog is the part of catalog.Catalog the resolver reads.
type Catalog interface {
	Available() bool
	Lookup(key string) (*model.ChordDefinition, error)
	Scan(text string) (*model.ChordDefinition, error)
}

type Resolver struct {
	catalog   Catalog
	corrector *correct.Corrector
	extractor *extract.Extractor
}

// New returns a Resolver with the default correction table and patterns.
func New(c Catalog) *Resolver {
	return NewWith(c, correct.NewDefault(), extract.New())
}

func NewWith(c Catalog, corrector *correct.Corrector, extractor *extract.Extractor) *Resolver {
	return &Resolver{catalog: c, corrector: corrector, extractor: extractor}
}

// Resolve runs the pipeline on raw text. The result only depends on the
// catalog contents and the text.
func (r *Resolver) Resolve(raw string) Result {
	res := Result{Normalized: normalize.Text(raw)}
	if !r.catalog.Available() {
		res.Miss = MissCatalogUnavailable
		logger.Debug("Catalog unavailable, skipping resolution", logger.Fields{"text": raw})
		return res
	}
	res.Corrected = r.corrector.Correct(res.Normalized)

	pattern, descriptors := r.extractor.Extract(res.Corrected)
	res.Pattern = pattern
	for _, d := range descriptors {
		def, err := r.catalog.Lookup(extract.Key(d))
		if r.unavailable(err) {
			return r.miss(res, MissCatalogUnavailable, raw)
		}
		if def != nil {
			return r.hit(res, def, StageDescriptor, raw)
		}
	}

	def, err := r.catalog.Lookup(normalize.Key(res.Corrected))
	if r.unavailable(err) {
		return r.miss(res, MissCatalogUnavailable, raw)
	}
	if def != nil {
		return r.hit(res, def, StageExact, raw)
	}

	def, err = r.catalog.Scan(res.Corrected)
	if r.unavailable(err) {
		return r.miss(res, MissCatalogUnavailable, raw)
	}
	if def != nil {
		return r.hit(res, def, StageSubstring, raw)
	}
	return r.miss(res, MissNoMatch, raw)
}

// HandleAttempt resolves a finalized utterance. Confidence is not used to
// reject anything.
func (r *Resolver) HandleAttempt(a model.RecognitionAttempt) Result {
	return r.Resolve(a.RawText)
}

func (r *Resolver) unavailable(err error) bool {
	return errors.Is(err, catalog.ErrUnavailable)
}

func (r *Resolver) hit(res Result, def *model.ChordDefinition, stage Stage, raw string) Result {
	res.Chord = &model.ResolvedChord{Definition: def, RawText: raw}
	res.Stage = stage
	logger.Debug("Resolved chord", logger.Fields{
		"text":  raw,
		"chord": def.CanonicalName,
		"stage": string(stage),
	})
	return res
}

func (r *Resolver) miss(res Result, miss Miss, raw string) Result {
	res.Miss = miss
	logger.Debug("No chord resolved", logger.Fields{
		"text":      raw,
		"corrected": res.Corrected,
		"miss":      string(miss),
	})
	return res
}
