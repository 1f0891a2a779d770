package acroform

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/abdoul12363/mdph/internal/layout"
	"github.com/abdoul12363/mdph/internal/pdf/fonts"
)

const (
	appearanceFont  = "Helv"
	appearanceInset = 2.0
	autoSizeMax     = 12.0
	autoSizeMin     = 4.0
	multilineAuto   = 10.0
)

// textAppearance draws value into a new normal appearance stream for w.
func (d *Document) textAppearance(f *Field, w widget, value string) error {
	box, ok := d.widgetBox(w.dict)
	if !ok {
		return fmt.Errorf("widget has no usable /Rect")
	}
	if box.Width <= 0 || box.Height <= 0 {
		return fmt.Errorf("widget has an empty /Rect")
	}

	helv := fonts.Helvetica()
	size := fontSize(f.da)
	avail := box.Width - 2*appearanceInset

	var lines []string
	if f.Multiline() {
		if size == 0 {
			size = multilineAuto
		}
		lines = layout.Wrap(helv, value, size, avail)
	} else {
		line := strings.Join(strings.Fields(value), " ")
		if size == 0 {
			size = autoSizeMax
			if h := box.Height * 0.7; h < size {
				size = h
			}
			for size > autoSizeMin && helv.Width(line, size) > avail {
				size -= 0.5
			}
		}
		lines = []string{line}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "/Tx BMC\nq\n%s %s %s %s re W n\nBT\n/%s %s Tf\n0 g\n",
		num(1), num(1), num(box.Width-2), num(box.Height-2), appearanceFont, num(size))

	if f.Multiline() {
		lead := layout.LineHeight(size)
		fmt.Fprintf(&buf, "%s %s Td\n", num(appearanceInset), num(box.Height-appearanceInset-size))
		for i, l := range lines {
			if i > 0 {
				fmt.Fprintf(&buf, "0 %s Td\n", num(-lead))
			}
			fmt.Fprintf(&buf, "(%s) Tj\n", literal(string(fonts.Encode(l))))
		}
	} else {
		baseline := (box.Height-size)/2 + size*0.22
		fmt.Fprintf(&buf, "%s %s Td\n(%s) Tj\n", num(appearanceInset), num(baseline), literal(string(fonts.Encode(lines[0]))))
	}
	buf.WriteString("ET\nQ\nEMC\n")

	helvRef, err := d.fontRef(helv)
	if err != nil {
		return err
	}

	ref, err := d.AddStream(types.Dict{
		"Type":      types.Name("XObject"),
		"Subtype":   types.Name("Form"),
		"BBox":      types.Array{types.Float(0), types.Float(0), types.Float(box.Width), types.Float(box.Height)},
		"Resources": types.Dict{"Font": types.Dict{appearanceFont: *helvRef}},
	}, buf.Bytes())
	if err != nil {
		return err
	}

	w.dict["AP"] = types.Dict{"N": *ref}
	return nil
}

// fontSize extracts the size operand of the Tf operator in a default
// appearance string; 0 means auto size.
func fontSize(da string) float64 {
	tokens := strings.Fields(da)
	for i, t := range tokens {
		if t == "Tf" && i >= 1 {
			if v, err := strconv.ParseFloat(tokens[i-1], 64); err == nil && v >= 0 {
				return v
			}
		}
	}
	return 0
}

// fontRef returns the document's font dictionary for f, embedding it once.
func (d *Document) fontRef(f *fonts.Font) (*types.IndirectRef, error) {
	if ref, ok := d.fontRefs[f.Name()]; ok {
		return ref, nil
	}
	ref, err := f.Embed(d)
	if err != nil {
		return nil, fmt.Errorf("failed to embed font %s: %w", f.Name(), err)
	}
	d.fontRefs[f.Name()] = ref
	return ref, nil
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}
