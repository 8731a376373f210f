package catalog

import (
	"context"
	"testing"

	"github.com/jsphweid/saychord/model"
	"github.com/stretchr/testify/assert"
)

func loadFixture(t *testing.T) *Catalog {
	c := New()
	err := c.Load(context.Background(), FileSource{Path: "testdata/chords.json"})
	assert.NoError(t, err)
	return c
}

func TestUnavailableUntilLoaded(t *testing.T) {
	c := New()
	assert := assert.New(t)
	assert.False(c.Available())
	assert.ErrorIs(c.Err(), ErrUnavailable)

	_, err := c.Find("C")
	assert.ErrorIs(err, ErrUnavailable)
	_, err = c.Scan("c")
	assert.ErrorIs(err, ErrUnavailable)
	_, err = c.FindByNotes(model.Notes{60, 64, 67})
	assert.ErrorIs(err, ErrUnavailable)
}

func TestLoadFromFile(t *testing.T) {
	c := loadFixture(t)
	assert := assert.New(t)
	assert.True(c.Available())
	assert.NoError(c.Err())
	assert.Equal([]string{"C", "G"}, c.Tonalities())
	assert.Len(c.All(), 7)
	assert.Len(c.InTonality("G"), 3)
	assert.Empty(c.InTonality("F#"))

	def, err := c.Find("Em")
	assert.NoError(err)
	assert.Equal("G", def.Tonality)
}

func TestLoadOnlyOnce(t *testing.T) {
	c := loadFixture(t)
	err := c.Load(context.Background(), FileSource{Path: "testdata/chords.json"})
	assert.ErrorIs(t, err, ErrAlreadyLoaded)
}

func TestFailedLoadIsPermanent(t *testing.T) {
	c := New()
	assert := assert.New(t)
	err := c.Load(context.Background(), BytesSource(`{"C": [`))
	assert.Error(err)
	assert.False(c.Available())
	assert.Equal(err, c.Err())

	err = c.Load(context.Background(), FileSource{Path: "testdata/chords.json"})
	assert.ErrorIs(err, ErrAlreadyLoaded)
	assert.False(c.Available())
}

func TestMissingFile(t *testing.T) {
	c := New()
	err := c.Load(context.Background(), FileSource{Path: "testdata/nope.json"})
	assert.Error(t, err)
	assert.False(t, c.Available())
}

func TestTonalitiesKeepFileOrder(t *testing.T) {
	c := New()
	err := c.Load(context.Background(), BytesSource(`{
		"Z": [{"name": "Zed", "notes": ["C"]}],
		"A": [{"name": "Ay", "notes": ["D"]}],
		"M": [{"name": "Em", "notes": ["E"]}]
	}`))
	assert.NoError(t, err)
	assert.Equal(t, []string{"Z", "A", "M"}, c.Tonalities())
}

func TestRejectsInvalidDefinitions(t *testing.T) {
	cases := map[string]string{
		"duplicate name": `{"C": [{"name": "C", "notes": ["C"]}], "G": [{"name": "C", "notes": ["G"]}]}`,
		"no notes":       `{"C": [{"name": "C", "notes": []}]}`,
		"repeated pitch": `{"C": [{"name": "C", "notes": ["C", "E", "C"]}]}`,
		"bad pitch":      `{"C": [{"name": "C", "notes": ["H"]}]}`,
		"no name":        `{"C": [{"name": "", "notes": ["C"]}]}`,
		"not an object":  `[{"name": "C", "notes": ["C"]}]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			c := New()
			assert.Error(t, c.Load(context.Background(), BytesSource(doc)))
			assert.False(t, c.Available())
		})
	}
}

func TestFindAcrossLanguages(t *testing.T) {
	c := loadFixture(t)
	for _, name := range []string{"Cmaj7", "cmaj7", "Do Majeur Septième", "do majeur septieme", "C major seven"} {
		t.Run(name, func(t *testing.T) {
			def, err := c.Find(name)
			assert.NoError(t, err)
			assert.Equal(t, "Cmaj7", def.CanonicalName)
		})
	}

	def, err := c.Find("la mineur")
	assert.NoError(t, err)
	assert.Equal(t, "Am", def.CanonicalName)

	_, err = c.Find("xyz nonsense")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCollisionsKeepFirstDefinition(t *testing.T) {
	c := loadFixture(t)
	assert := assert.New(t)
	assert.Equal([]Collision{{Key: "g7", Kept: "G7", Ignored: "D7"}}, c.Collisions())

	def, err := c.Find("sol 7")
	assert.NoError(err)
	assert.Equal("G7", def.CanonicalName)

	def, err = c.Find("re 7")
	assert.NoError(err)
	assert.Equal("D7", def.CanonicalName)
}

func TestScanUsesCatalogOrder(t *testing.T) {
	c := loadFixture(t)
	cases := map[string]string{
		"joue sol 7 maintenant":  "G7",
		"play me a g please":     "G",
		"something in la mineur": "Am",
	}
	for text, want := range cases {
		t.Run(text, func(t *testing.T) {
			def, err := c.Scan(text)
			assert.NoError(t, err)
			assert.Equal(t, want, def.CanonicalName)
		})
	}

	_, err := c.Scan("xyz nonsense")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindByNotes(t *testing.T) {
	c := loadFixture(t)
	assert := assert.New(t)

	def, err := c.FindByNotes(model.Notes{67, 60, 64})
	assert.NoError(err)
	assert.Equal("C", def.CanonicalName)

	def, err = c.FindByNotes(model.Notes{64, 67, 71})
	assert.NoError(err)
	assert.Equal("Em", def.CanonicalName)

	_, err = c.FindByNotes(model.Notes{61, 65})
	assert.ErrorIs(err, ErrNotFound)
}

func TestByNameIsExact(t *testing.T) {
	c := loadFixture(t)
	assert := assert.New(t)

	def, err := c.ByName("D7")
	assert.NoError(err)
	assert.Equal("G", def.Tonality)

	_, err = c.ByName("d7")
	assert.ErrorIs(err, ErrNotFound)
	_, err = New().ByName("D7")
	assert.ErrorIs(err, ErrUnavailable)
}
