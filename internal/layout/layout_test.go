package layout

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monospace measures every rune as one unit, except 'W' which is wide.
type monospace struct{}

func (monospace) Width(text string, _ float64) float64 {
	w := 0.0
	for _, r := range text {
		if r == 'W' {
			w += 20
			continue
		}
		w++
	}
	return w
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  float64
		want []string
	}{
		{"fits", "hello", 10, []string{"hello"}},
		{"greedy", "the quick brown fox jumps", 10, []string{"the quick", "brown fox", "jumps"}},
		{"exact width", "abcde fghi", 10, []string{"abcde fghi"}},
		{"crlf and empty paragraph", "a\r\n\r\nb", 10, []string{"a", "", "b"}},
		{"whitespace paragraph", "a\n   \nb", 10, []string{"a", "", "b"}},
		{"trailing spaces", "abc   ", 10, []string{"abc"}},
		{"collapses inner spaces", "a    b", 10, []string{"a b"}},
		{"empty text", "", 10, []string{""}},
		{"hard break", "abcdefghijklmnopqrstuvwxy z", 10, []string{"abcdefghij", "klmnopqrst", "uvwxy z"}},
		{"hard break after words", "ab abcdefghijklmno", 10, []string{"ab", "abcdefghij", "klmno"}},
		{"wide char alone", "W", 10, []string{"W"}},
		{"wide chars", "WW", 10, []string{"W", "W"}},
		{"multibyte runes", "ééééééééééé", 10, []string{"éééééééééé", "é"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(monospace{}, tt.text, 11, tt.max)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Wrap() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWrap_WidthBoundAndNoLoss(t *testing.T) {
	texts := []string{
		"Je souhaite pouvoir continuer à travailler à temps partiel avec un aménagement de poste.",
		"anticonstitutionnellement est un mot très long qui ne tient pas sur une ligne étroite",
		"court\n\nparagraphe suivant avec quelques mots\r\nencore un",
		strings.Repeat("mot ", 40),
		"WxW abc Wabc",
	}
	m := monospace{}

	for _, max := range []float64{5, 10, 23} {
		for i, text := range texts {
			t.Run(fmt.Sprintf("max%v/text%d", max, i), func(t *testing.T) {
				lines := Wrap(m, text, 11, max)
				for _, l := range lines {
					if m.Width(l, 11) > max {
						assert.Equal(t, 1, utf8.RuneCountInString(l), "line %q exceeds %v", l, max)
					}
				}

				squash := func(s string) string { return strings.Join(strings.Fields(s), "") }
				assert.Equal(t, squash(text), squash(strings.Join(lines, " ")))
			})
		}
	}
}

func TestLineHeight(t *testing.T) {
	assert.Equal(t, 14.0, LineHeight(11))
	assert.Equal(t, 15.0, LineHeight(12))
	assert.Equal(t, 35.0, LineHeight(28))
}

func TestBuildLines(t *testing.T) {
	blocks := []Block{
		{Title: "  Impact sur le travail ", Body: "abc def ghi"},
		{Body: "sans titre"},
		{Title: "Vide", Body: "   "},
	}

	got := BuildLines(monospace{}, monospace{}, 8, 12, 11, blocks)
	want := []StyledLine{
		{Text: "Impact", Bold: true, Size: 12},
		{Text: "sur le", Bold: true, Size: 12},
		{Text: "travail", Bold: true, Size: 12},
		{Size: 11},
		{Text: "abc def", Size: 11},
		{Text: "ghi", Size: 11},
		{Size: 11},
		{Text: "sans", Size: 11},
		{Text: "titre", Size: 11},
		{Text: "Vide", Bold: true, Size: 12},
		{Size: 11},
		{Size: 11},
		{Size: 11},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildLines() mismatch (-want +got):\n%s", diff)
	}
}

func bodyLines(n int) []StyledLine {
	lines := make([]StyledLine, n)
	for i := range lines {
		lines[i] = StyledLine{Text: fmt.Sprintf("L%02d", i+1), Size: 11}
	}
	return lines
}

func TestFit_Capacity(t *testing.T) {
	// 10 lines of 14pt plus 4pt padding top and bottom.
	box := Box{X: 50, Y: 100, Width: 300, Height: 148}
	pad := Uniform(4)
	require.Equal(t, 10, Capacity(box, pad, 11))

	tests := []struct {
		name       string
		lines      int
		wantPlaced int
		wantRest   int
	}{
		{"under capacity", 3, 3, 0},
		{"exact capacity", 10, 10, 0},
		{"two over", 12, 10, 2},
		{"empty", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := bodyLines(tt.lines)
			placed, rest := Fit(box, pad, lines)
			assert.Len(t, placed, tt.wantPlaced)
			assert.Len(t, rest, tt.wantRest)
			if tt.wantRest > 0 {
				assert.Equal(t, lines[tt.wantPlaced:], rest)
			}
		})
	}
}

func TestFit_Positions(t *testing.T) {
	box := Box{X: 50, Y: 100, Width: 300, Height: 148}
	lines := []StyledLine{
		{Text: "Titre", Bold: true, Size: 12},
		{Size: 11},
		{Text: "corps", Size: 11},
	}

	placed, rest := Fit(box, Uniform(4), lines)
	require.Len(t, placed, 3)
	assert.Empty(t, rest)

	top := 100.0 + 148 - 4
	assert.Equal(t, 54.0, placed[0].X)
	assert.Equal(t, top-12, placed[0].Y)
	assert.Equal(t, top-15-11, placed[1].Y)
	assert.Equal(t, top-15-14-11, placed[2].Y)
	assert.Equal(t, "corps", placed[2].Text)
}

func TestFit_TooSmall(t *testing.T) {
	placed, rest := Fit(Box{Height: 10}, Uniform(4), bodyLines(2))
	assert.Empty(t, placed)
	assert.Len(t, rest, 2)
	assert.Equal(t, 0, Capacity(Box{Height: 10}, Uniform(4), 11))
}
