package fonts

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/encoding/charmap"
)

// LoadTrueType reads and parses a TrueType font file.
func LoadTrueType(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := ParseTrueType(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ParseTrueType parses a TrueType (glyf outline) font program.
func ParseTrueType(data []byte) (*Font, error) {
	if bytes.HasPrefix(data, []byte("OTTO")) {
		return nil, fmt.Errorf("CFF-flavoured OpenType fonts are not supported")
	}

	sf, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	var buf sfnt.Buffer
	upem := float64(sf.UnitsPerEm())
	if upem <= 0 {
		return nil, fmt.Errorf("font has no units per em")
	}
	ppem := fixed.I(int(sf.UnitsPerEm()))
	scale := func(v fixed.Int26_6) float64 {
		return float64(v) / 64 * 1000 / upem
	}

	name, err := sf.Name(&buf, sfnt.NameIDPostScript)
	if err != nil || name == "" {
		if name, err = sf.Name(&buf, sfnt.NameIDFull); err != nil {
			return nil, fmt.Errorf("font has no name: %w", err)
		}
	}

	f := &Font{name: strings.ReplaceAll(name, " ", ""), file: data}

	notdef, err := sf.GlyphAdvance(&buf, 0, ppem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("failed to read glyph advances: %w", err)
	}
	for code := firstChar; code <= lastChar; code++ {
		f.widths[code] = scale(notdef)
		r := charmap.Windows1252.DecodeByte(byte(code))
		idx, err := sf.GlyphIndex(&buf, r)
		if err != nil || idx == 0 {
			continue
		}
		adv, err := sf.GlyphAdvance(&buf, idx, ppem, font.HintingNone)
		if err != nil {
			continue
		}
		f.widths[code] = scale(adv)
	}

	bounds, err := sf.Bounds(&buf, ppem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("failed to read font bounds: %w", err)
	}
	// sfnt reports y growing downwards.
	f.desc.bbox = [4]float64{scale(bounds.Min.X), -scale(bounds.Max.Y), scale(bounds.Max.X), -scale(bounds.Min.Y)}

	m, err := sf.Metrics(&buf, ppem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("failed to read font metrics: %w", err)
	}
	f.desc.ascent = scale(m.Ascent)
	f.desc.descent = -scale(m.Descent)
	f.desc.capHeight = scale(m.CapHeight)
	if f.desc.capHeight == 0 {
		f.desc.capHeight = f.desc.ascent
	}

	return f, nil
}

func (f *Font) embedTrueType(w ObjectWriter) (*types.IndirectRef, error) {
	file, err := w.AddStream(types.Dict{"Length1": types.Integer(len(f.file))}, f.file)
	if err != nil {
		return nil, fmt.Errorf("failed to embed font program: %w", err)
	}

	desc, err := w.AddObject(types.Dict{
		"Type":        types.Name("FontDescriptor"),
		"FontName":    types.Name(f.name),
		"Flags":       types.Integer(32),
		"FontBBox":    types.Array{round(f.desc.bbox[0]), round(f.desc.bbox[1]), round(f.desc.bbox[2]), round(f.desc.bbox[3])},
		"ItalicAngle": types.Integer(0),
		"Ascent":      round(f.desc.ascent),
		"Descent":     round(f.desc.descent),
		"CapHeight":   round(f.desc.capHeight),
		"StemV":       types.Integer(80),
		"FontFile2":   *file,
	})
	if err != nil {
		return nil, err
	}

	widths := make(types.Array, 0, lastChar-firstChar+1)
	for code := firstChar; code <= lastChar; code++ {
		widths = append(widths, round(f.widths[code]))
	}

	return w.AddObject(types.Dict{
		"Type":           types.Name("Font"),
		"Subtype":        types.Name("TrueType"),
		"BaseFont":       types.Name(f.name),
		"FirstChar":      types.Integer(firstChar),
		"LastChar":       types.Integer(lastChar),
		"Widths":         widths,
		"Encoding":       types.Name("WinAnsiEncoding"),
		"FontDescriptor": *desc,
	})
}

func round(v float64) types.Integer {
	if v < 0 {
		return types.Integer(v - 0.5)
	}
	return types.Integer(v + 0.5)
}
