package correct

import (
	"testing"

	"github.com/jsphweid/saychord/normalize"
	"github.com/stretchr/testify/assert"
)

func TestCorrect(t *testing.T) {
	c := NewDefault()
	cases := []struct {
		in   string
		want string
	}{
		{"domaine", "do mineur"},
		{"domine", "do mineur"},
		{"la mine", "la mineur"},
		{"la mine heure", "la mineur heure"},
		{"sol mine", "sol mineur"},
		{"c'est 7", "c7"},
		{"c'est majeur", "c majeur"},
		{"see major", "c major"},
		{"see 7", "c7"},
		{"do majeur 7", "domaj7"},
		{"la mineur 7", "lamin7"},
		{"sol 7 bemol 5", "sol 7b5"},
		{"fa 7 diese 9", "fa 7#9"},
		{"mi 7 bemol 9", "mi 7b9"},
		{"re 7 plus 5", "re 7+5"},
		{"do 7 sus 4", "do 7sus4"},
		{"do majeur septieme", "do majeur septieme"},
		{"xyz nonsense", "xyz nonsense"},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Correct(tc.in))
		})
	}
}

func TestCorrectMatchesWholeWordsOnly(t *testing.T) {
	c := New([]Correction{{"mine", "mineur"}})
	assert := assert.New(t)
	assert.Equal("la mineur", c.Correct("la mine"))
	assert.Equal("la mines", c.Correct("la mines"))
	assert.Equal("determine", c.Correct("determine"))
}

func TestCorrectionsCascade(t *testing.T) {
	c := New([]Correction{
		{"see", "c"},
		{"c seven", "c7"},
	})
	assert.Equal(t, "c7", c.Correct(normalize.Text("see seven")))
}

func TestCorrectIsCaseInsensitive(t *testing.T) {
	c := New([]Correction{{"See Major", "C major"}})
	assert.Equal(t, "c major", c.Correct("SEE MAJOR"))
}

func TestDefaultTableKeysSurviveNormalization(t *testing.T) {
	for _, corr := range DefaultTable {
		assert.NotEmpty(t, normalize.Text(corr.From), corr.From)
	}
}
