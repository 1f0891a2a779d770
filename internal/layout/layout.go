// Package layout wraps and places lines of text inside rectangular regions.
//
// All coordinates are PDF user space units with the origin at the bottom
// left of the page.
package layout

import (
	"math"
	"strings"
	"unicode"
)

// Measurer returns the advance width of text at a font size.
type Measurer interface {
	Width(text string, size float64) float64
}

// Box is a rectangle given by its lower-left corner and size.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Top returns the y coordinate of the upper edge.
func (b Box) Top() float64 { return b.Y + b.Height }

// Padding insets a Box on each side.
type Padding struct {
	Left, Right, Top, Bottom float64
}

// Uniform returns the same padding on all four sides.
func Uniform(p float64) Padding {
	return Padding{Left: p, Right: p, Top: p, Bottom: p}
}

// Block is a titled section of narrative text. An empty title means the
// block has body text only.
type Block struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// StyledLine is one wrapped line and the style it is drawn with.
type StyledLine struct {
	Text string
	Bold bool
	Size float64
}

// LineHeight is the vertical advance of a line of the given font size.
func LineHeight(size float64) float64 {
	return math.Round(size * 1.25)
}

// Wrap breaks text into lines no wider than maxWidth.
//
// Paragraphs are split on newlines and right-trimmed; an empty paragraph
// yields one empty line. Words are packed greedily. A word wider than
// maxWidth on its own is broken between characters, and its last piece
// starts the next line. A single character wider than maxWidth is still
// emitted on its own line.
func Wrap(m Measurer, text string, size, maxWidth float64) []string {
	var lines []string
	cleaned := strings.ReplaceAll(text, "\r\n", "\n")

	for _, paragraph := range strings.Split(cleaned, "\n") {
		trimmed := strings.TrimRightFunc(paragraph, unicode.IsSpace)
		if trimmed == "" {
			lines = append(lines, "")
			continue
		}

		current := ""
		for _, word := range strings.Fields(trimmed) {
			candidate := word
			if current != "" {
				candidate = current + " " + word
			}
			if m.Width(candidate, size) <= maxWidth {
				current = candidate
				continue
			}

			if current != "" {
				lines = append(lines, current)
				current = ""
			}

			if m.Width(word, size) <= maxWidth {
				current = word
				continue
			}

			chunk := ""
			for _, r := range word {
				next := chunk + string(r)
				if m.Width(next, size) > maxWidth && chunk != "" {
					lines = append(lines, chunk)
					chunk = string(r)
				} else {
					chunk = next
				}
			}
			current = chunk
		}

		if current != "" {
			lines = append(lines, current)
		}
	}

	return lines
}

// BuildLines turns blocks into styled lines.
//
// A block with a title yields the title wrapped in bold at titleSize, a
// blank spacer, the body wrapped in regular at bodySize and a closing
// spacer. A block without title yields its body only. An empty body still
// occupies one blank line.
func BuildLines(regular, bold Measurer, maxWidth, titleSize, bodySize float64, blocks []Block) []StyledLine {
	var out []StyledLine
	for _, b := range blocks {
		title := strings.TrimSpace(b.Title)
		body := strings.TrimSpace(b.Body)
		if body == "" {
			body = " "
		}

		if title != "" {
			for _, l := range Wrap(bold, title, titleSize, maxWidth) {
				out = append(out, StyledLine{Text: l, Bold: true, Size: titleSize})
			}
			out = append(out, StyledLine{Size: bodySize})
		}

		for _, l := range Wrap(regular, body, bodySize, maxWidth) {
			out = append(out, StyledLine{Text: l, Size: bodySize})
		}

		if title != "" {
			out = append(out, StyledLine{Size: bodySize})
		}
	}
	return out
}

// PlacedLine is a StyledLine positioned at its baseline origin.
type PlacedLine struct {
	StyledLine
	X float64
	Y float64
}

// Fit places lines top-down inside box and returns the lines that did not
// fit, in order.
//
// A line is placed only if its full line height stays above the bottom
// padding. Its baseline sits one font size below the running top. Empty
// lines consume height like any other line.
func Fit(box Box, pad Padding, lines []StyledLine) (placed []PlacedLine, rest []StyledLine) {
	x := box.X + pad.Left
	y := box.Top() - pad.Top
	yMin := box.Y + pad.Bottom

	for i, l := range lines {
		lh := LineHeight(l.Size)
		if y-lh < yMin {
			return placed, lines[i:]
		}
		placed = append(placed, PlacedLine{StyledLine: l, X: x, Y: y - l.Size})
		y -= lh
	}
	return placed, nil
}

// Capacity returns how many lines of one size fit in box.
func Capacity(box Box, pad Padding, size float64) int {
	lh := LineHeight(size)
	if lh <= 0 {
		return 0
	}
	avail := box.Height - pad.Top - pad.Bottom
	if avail < lh {
		return 0
	}
	return int(math.Floor(avail / lh))
}
