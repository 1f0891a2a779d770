package acroform

import (
	"math"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/abdoul12363/mdph/internal/layout"
)

// Placement is where a field's first widget sits.
type Placement struct {
	Box       layout.Box `json:"box"`
	PageIndex int        `json:"page_index"`
}

// Rect is a rectangle given as origin and size.
type Rect struct {
	X, Y, Width, Height float64
}

// RectFromRecord converts an origin and size record into a Box.
func RectFromRecord(r Rect) layout.Box {
	return layout.Box{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// RectFromArray converts two opposite corners into a Box whatever their order.
func RectFromArray(x1, y1, x2, y2 float64) layout.Box {
	return layout.Box{
		X:      math.Min(x1, x2),
		Y:      math.Min(y1, y2),
		Width:  math.Abs(x2 - x1),
		Height: math.Abs(y2 - y1),
	}
}

// BoxFromRect accepts either rectangle representation: a Rect record, a
// pdfcpu Rectangle or a four number corner array.
func BoxFromRect(v interface{}) (layout.Box, bool) {
	switch r := v.(type) {
	case Rect:
		return RectFromRecord(r), true
	case *Rect:
		if r == nil {
			return layout.Box{}, false
		}
		return RectFromRecord(*r), true
	case layout.Box:
		return r, true
	case types.Rectangle:
		return RectFromArray(r.LL.X, r.LL.Y, r.UR.X, r.UR.Y), true
	case *types.Rectangle:
		if r == nil {
			return layout.Box{}, false
		}
		return RectFromArray(r.LL.X, r.LL.Y, r.UR.X, r.UR.Y), true
	case []float64:
		if len(r) != 4 {
			return layout.Box{}, false
		}
		return RectFromArray(r[0], r[1], r[2], r[3]), true
	case [4]float64:
		return RectFromArray(r[0], r[1], r[2], r[3]), true
	}
	return layout.Box{}, false
}

// Locate returns the box and page of the first widget of a field. It
// reports false when the field does not exist or has no usable rectangle.
// A widget whose page cannot be determined is placed on the first page.
func (d *Document) Locate(name string) (*Placement, bool) {
	f, ok := d.byName[name]
	if !ok || len(f.widgets) == 0 {
		return nil, false
	}
	w := f.widgets[0]
	box, ok := d.widgetBox(w.dict)
	if !ok {
		return nil, false
	}
	return &Placement{Box: box, PageIndex: d.widgetPage(w)}, true
}

// widgetBox reads the /Rect of an annotation.
func (d *Document) widgetBox(dict types.Dict) (layout.Box, bool) {
	obj, found := dict.Find("Rect")
	if !found {
		return layout.Box{}, false
	}
	arr, err := d.ctx.DereferenceArray(obj)
	if err != nil || len(arr) != 4 {
		return layout.Box{}, false
	}
	coords := make([]float64, 4)
	for i, c := range arr {
		v, err := d.ctx.DereferenceNumber(c)
		if err != nil {
			return layout.Box{}, false
		}
		coords[i] = v
	}
	return BoxFromRect(coords)
}

// widgetPage resolves the zero-based page of a widget from its /P entry,
// then from the page /Annots arrays.
func (d *Document) widgetPage(w widget) int {
	if obj, found := w.dict.Find("P"); found {
		if ref := refOf(obj); ref != nil {
			if i, ok := d.pageIndex(*ref); ok {
				return i
			}
		}
	}

	if w.ref != nil {
		for i := range d.pages {
			page, _, err := d.pageDict(i)
			if err != nil {
				continue
			}
			annotsObj, found := page.Find("Annots")
			if !found {
				continue
			}
			annots, err := d.ctx.DereferenceArray(annotsObj)
			if err != nil {
				continue
			}
			for _, a := range annots {
				if ref := refOf(a); ref != nil && ref.ObjectNumber == w.ref.ObjectNumber {
					return i
				}
			}
		}
	}

	d.logf("page of widget unknown, using first page")
	return 0
}
