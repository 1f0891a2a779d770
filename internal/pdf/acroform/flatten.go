package acroform

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/abdoul12363/mdph/internal/layout"
)

// annotation flag bits (PDF 32000-1, 12.5.3).
const (
	annotHidden  = 1 << 1
	annotNoView  = 1 << 5
	widgetPrefix = "MdphW"
)

// Flatten stamps the normal appearance of every widget into its page
// content, removes the widget annotations and drops the AcroForm.
func (d *Document) Flatten() error {
	for i := range d.pages {
		if err := d.flattenPage(i); err != nil {
			return fmt.Errorf("failed to flatten page %d: %w", i+1, err)
		}
	}

	root, err := d.ctx.Catalog()
	if err != nil {
		return fmt.Errorf("failed to get catalog: %w", err)
	}
	root.Delete("AcroForm")
	return nil
}

func (d *Document) flattenPage(index int) error {
	page, inherited, err := d.pageDict(index)
	if err != nil {
		return err
	}

	annotsObj, found := page.Find("Annots")
	if !found {
		return nil
	}
	annots, err := d.ctx.DereferenceArray(annotsObj)
	if err != nil {
		return fmt.Errorf("unreadable /Annots: %w", err)
	}

	var keep types.Array
	var content bytes.Buffer
	xobjects := types.Dict{}

	for _, a := range annots {
		ad, err := d.ctx.DereferenceDict(a)
		if err != nil || ad == nil {
			keep = append(keep, a)
			continue
		}
		if st := ad.NameEntry("Subtype"); st == nil || *st != "Widget" {
			keep = append(keep, a)
			continue
		}

		if flags, found := ad.Find("F"); found {
			if f, err := d.ctx.DereferenceInteger(flags); err == nil && f != nil && f.Value()&(annotHidden|annotNoView) != 0 {
				continue
			}
		}

		ap := d.normalAppearance(ad)
		if ap == nil {
			continue
		}
		box, ok := d.widgetBox(ad)
		if !ok || box.Width == 0 || box.Height == 0 {
			continue
		}

		bbox, err := d.formBBox(*ap)
		if err != nil {
			d.logf("page %d: skipping widget appearance: %v", index+1, err)
			continue
		}

		bw, bh := bbox.Width, bbox.Height
		if bw == 0 {
			bw = box.Width
		}
		if bh == 0 {
			bh = box.Height
		}
		sx, sy := box.Width/bw, box.Height/bh
		tx, ty := box.X-bbox.X*sx, box.Y-bbox.Y*sy

		name := d.resourceName(widgetPrefix, xobjects)
		xobjects[name] = *ap
		fmt.Fprintf(&content, "q %s 0 0 %s %s %s cm /%s Do Q\n", num(sx), num(sy), num(tx), num(ty), name)
	}

	if content.Len() > 0 {
		res := d.resources(page, inherited)
		dst := d.subDict(res, "XObject")
		for k, v := range xobjects {
			dst[k] = v
		}
		if err := d.appendContent(index, page, content.Bytes()); err != nil {
			return err
		}
	}

	if len(keep) == 0 {
		page.Delete("Annots")
	} else {
		page["Annots"] = keep
	}
	return nil
}

// normalAppearance returns the stream to draw for a widget: /AP /N itself,
// or the entry of /N selected by /AS for state dependent widgets.
func (d *Document) normalAppearance(w types.Dict) *types.IndirectRef {
	apObj, found := w.Find("AP")
	if !found {
		return nil
	}
	ap, err := d.ctx.DereferenceDict(apObj)
	if err != nil || ap == nil {
		return nil
	}
	nObj, found := ap.Find("N")
	if !found {
		return nil
	}

	o, err := d.ctx.Dereference(nObj)
	if err != nil || o == nil {
		return nil
	}

	switch n := o.(type) {
	case types.StreamDict, *types.StreamDict:
		return refOf(nObj)
	case types.Dict:
		as := w.NameEntry("AS")
		if as == nil {
			return nil
		}
		state, found := n.Find(*as)
		if !found {
			return nil
		}
		return refOf(state)
	}
	return nil
}

// formBBox reads the bounding box of a form XObject and marks it as one.
func (d *Document) formBBox(ref types.IndirectRef) (layout.Box, error) {
	var bbox layout.Box

	o, err := d.ctx.Dereference(ref)
	if err != nil {
		return bbox, err
	}
	var dict types.Dict
	switch sd := o.(type) {
	case types.StreamDict:
		dict = sd.Dict
	case *types.StreamDict:
		dict = sd.Dict
	default:
		return bbox, fmt.Errorf("appearance %d is not a stream", ref.ObjectNumber)
	}

	if dict.NameEntry("Subtype") == nil {
		dict["Subtype"] = types.Name("Form")
	}
	if dict.NameEntry("Type") == nil {
		dict["Type"] = types.Name("XObject")
	}

	obj, found := dict.Find("BBox")
	if !found {
		return bbox, nil
	}
	if b, ok := d.widgetBox(types.Dict{"Rect": obj}); ok {
		bbox = b
	}
	return bbox, nil
}
