// Package fonts provides the fonts used to measure and draw text onto PDF
// pages: the standard Helvetica faces and embedded TrueType brand fonts.
// Text is encoded with WinAnsiEncoding (Windows-1252) in both cases.
package fonts

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/charmap"
)

const (
	firstChar = 32
	lastChar  = 255
)

// ObjectWriter adds new objects to a PDF document.
type ObjectWriter interface {
	AddObject(obj types.Object) (*types.IndirectRef, error)
	AddStream(dict types.Dict, content []byte) (*types.IndirectRef, error)
}

// Font is a simple font addressed through WinAnsiEncoding.
type Font struct {
	name     string
	standard bool
	// widths in glyph space (1/1000 em) by WinAnsi code.
	widths [256]float64
	file   []byte
	desc   descriptor
}

type descriptor struct {
	bbox      [4]float64
	ascent    float64
	descent   float64
	capHeight float64
}

// Name returns the PostScript name used as /BaseFont.
func (f *Font) Name() string { return f.name }

// Embedded reports whether the font program is embedded in the document.
func (f *Font) Embedded() bool { return !f.standard }

// Width returns the advance width of text at size, in points.
func (f *Font) Width(text string, size float64) float64 {
	var w float64
	for _, b := range Encode(text) {
		w += f.widths[b]
	}
	return w * size / 1000
}

// Encode converts text to WinAnsi bytes. Control characters become spaces
// and characters outside the encoding become '?'.
func Encode(text string) []byte {
	out := make([]byte, 0, len(text))
	for _, r := range text {
		if r < firstChar {
			out = append(out, ' ')
			continue
		}
		b, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return out
}

// Embed adds the font dictionary, and the font program when there is one,
// to the document.
func (f *Font) Embed(w ObjectWriter) (*types.IndirectRef, error) {
	if f.standard {
		return w.AddObject(types.Dict{
			"Type":     types.Name("Font"),
			"Subtype":  types.Name("Type1"),
			"BaseFont": types.Name(f.name),
			"Encoding": types.Name("WinAnsiEncoding"),
		})
	}
	return f.embedTrueType(w)
}
