package lifeproject

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/abdoul12363/mdph/internal/formdef"
	"github.com/abdoul12363/mdph/internal/layout"
)

type halfEm struct{}

func (halfEm) Width(text string, size float64) float64 {
	return float64(utf8.RuneCountInString(text)) * size / 2
}

func TestBlocksFromAnswers(t *testing.T) {
	answers := formdef.Answers{
		"impact_quotidien": formdef.String("Je me fatigue vite."),
		"projet_vie":       formdef.String("Reprendre une formation."),
	}

	want := []layout.Block{
		{Title: "Comment ces difficultés impactent votre vie quotidienne ?", Body: "Je me fatigue vite."},
		{Title: "Impact sur le travail"},
		{Title: "Explication complémentaire"},
		{Title: "Vos aspirations", Body: "Reprendre une formation."},
	}
	assert.Equal(t, want, BlocksFromAnswers(answers))
}

func TestNameFromAnswers(t *testing.T) {
	tests := []struct {
		name       string
		answers    formdef.Answers
		wantFamily string
		wantGiven  string
	}{
		{
			name:       "bare ids",
			answers:    formdef.Answers{"nom": formdef.String("Dupont"), "prenom": formdef.String("Marie")},
			wantFamily: "Dupont",
			wantGiven:  "Marie",
		},
		{
			name: "blank bare id falls back to suffixed id",
			answers: formdef.Answers{
				"nom":     formdef.String("   "),
				"nom:":    formdef.String("Martin"),
				"prenom:": formdef.String(" Paul "),
			},
			wantFamily: "Martin",
			wantGiven:  " Paul ",
		},
		{
			name:    "nothing",
			answers: formdef.Answers{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			family, given := NameFromAnswers(tt.answers)
			assert.Equal(t, tt.wantFamily, family)
			assert.Equal(t, tt.wantGiven, given)
		})
	}
}

func TestHeadingText(t *testing.T) {
	assert.Equal(t, "Dupont Marie,", HeadingText(" Dupont", "Marie "))
	assert.Equal(t, "Dupont,", HeadingText("Dupont", "  "))
	assert.Equal(t, "Marie,", HeadingText("", "Marie"))
	assert.Equal(t, "", HeadingText(" ", ""))
}

func TestFitHeadingSize(t *testing.T) {
	text := "abcdefghijklmnopqrst" // 20 runes, width = 10 * size

	assert.Equal(t, 28.0, FitHeadingSize(halfEm{}, text, 500))
	assert.Equal(t, 20.0, FitHeadingSize(halfEm{}, text, 200))
	assert.Equal(t, 12.0, FitHeadingSize(halfEm{}, text, 50))
}
