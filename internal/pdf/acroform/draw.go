package acroform

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/abdoul12363/mdph/internal/pdf/fonts"
)

const fontPrefix = "MdphF"

// Color is an RGB colour with components in [0, 1].
type Color struct {
	R, G, B float64
}

// RGB255 builds a Color from 8-bit components.
func RGB255(r, g, b uint8) Color {
	return Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// TextRun is a single line of text drawn at a baseline origin.
type TextRun struct {
	Font  *fonts.Font
	Size  float64
	X, Y  float64
	Text  string
	Color Color
}

// DrawText appends runs to the content of the zero-based page. Runs with
// empty text are skipped.
func (d *Document) DrawText(pageIndex int, runs []TextRun) error {
	page, inherited, err := d.pageDict(pageIndex)
	if err != nil {
		return err
	}

	res := d.resources(page, inherited)
	fontDict := d.subDict(res, "Font")
	names := map[string]string{}

	var buf bytes.Buffer
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		if r.Font == nil {
			return fmt.Errorf("text run %q has no font", r.Text)
		}

		name, ok := names[r.Font.Name()]
		if !ok {
			ref, err := d.fontRef(r.Font)
			if err != nil {
				return err
			}
			name = d.resourceName(fontPrefix, fontDict)
			fontDict[name] = *ref
			names[r.Font.Name()] = name
		}

		fmt.Fprintf(&buf, "BT\n%s %s %s rg\n/%s %s Tf\n1 0 0 1 %s %s Tm\n(%s) Tj\nET\n",
			num(r.Color.R), num(r.Color.G), num(r.Color.B),
			name, num(r.Size), num(r.X), num(r.Y),
			literal(string(fonts.Encode(r.Text))))
	}

	if buf.Len() == 0 {
		return nil
	}
	return d.appendContent(pageIndex, page, buf.Bytes())
}

// resources returns the page's resource dictionary, materialising the
// inherited one on the page when the page has none of its own.
func (d *Document) resources(page types.Dict, inherited *model.InheritedPageAttrs) types.Dict {
	if obj, found := page.Find("Resources"); found {
		if res, err := d.ctx.DereferenceDict(obj); err == nil && res != nil {
			return res
		}
	}
	res := types.Dict{}
	if inherited != nil {
		for k, v := range inherited.Resources {
			res[k] = v
		}
	}
	page["Resources"] = res
	return res
}

// subDict returns res[key] as a dictionary, creating it when missing.
func (d *Document) subDict(res types.Dict, key string) types.Dict {
	if obj, found := res.Find(key); found {
		if sub, err := d.ctx.DereferenceDict(obj); err == nil && sub != nil {
			return sub
		}
	}
	sub := types.Dict{}
	res[key] = sub
	return sub
}

// resourceName returns prefix+n for the first n not used in any of the
// given dictionaries.
func (d *Document) resourceName(prefix string, used ...types.Dict) string {
	for {
		d.resSeq++
		name := fmt.Sprintf("%s%d", prefix, d.resSeq)
		free := true
		for _, u := range used {
			if _, found := u.Find(name); found {
				free = false
				break
			}
		}
		if free {
			return name
		}
	}
}

// appendContent adds a content stream after the existing page content.
// The existing content is wrapped in q/Q once so its graphics state does
// not leak into what is drawn on top.
func (d *Document) appendContent(pageIndex int, page types.Dict, content []byte) error {
	ref, err := d.AddStream(types.Dict{}, content)
	if err != nil {
		return err
	}

	var existing types.Array
	if obj, found := page.Find("Contents"); found {
		o, err := d.ctx.Dereference(obj)
		if err != nil {
			return fmt.Errorf("unreadable page contents: %w", err)
		}
		if arr, ok := o.(types.Array); ok {
			existing = append(existing, arr...)
		} else if r := refOf(obj); r != nil {
			existing = append(existing, *r)
		}
	}

	if len(existing) > 0 && !d.isolated(pageIndex) {
		open, err := d.AddStream(types.Dict{}, []byte("q\n"))
		if err != nil {
			return err
		}
		closing, err := d.AddStream(types.Dict{}, []byte("\nQ\n"))
		if err != nil {
			return err
		}
		existing = append(append(types.Array{*open}, existing...), *closing)
	}

	page["Contents"] = append(existing, *ref)
	return nil
}

func (d *Document) isolated(pageIndex int) bool {
	if d.wrapped == nil {
		d.wrapped = map[int]bool{}
	}
	done := d.wrapped[pageIndex]
	d.wrapped[pageIndex] = true
	return done
}
