package acroform

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PageContent returns the decoded content streams of a page, concatenated.
func (d *Document) PageContent(pageIndex int) ([]byte, error) {
	page, _, err := d.pageDict(pageIndex)
	if err != nil {
		return nil, err
	}
	obj, found := page.Find("Contents")
	if !found {
		return nil, nil
	}

	o, err := d.ctx.Dereference(obj)
	if err != nil {
		return nil, err
	}
	refs := types.Array{obj}
	if arr, ok := o.(types.Array); ok {
		refs = arr
	}

	var buf bytes.Buffer
	for _, r := range refs {
		b, err := d.streamContent(r)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// XObjectContent returns the decoded content of every form XObject in the
// page resources, keyed by resource name.
func (d *Document) XObjectContent(pageIndex int) (map[string][]byte, error) {
	page, inherited, err := d.pageDict(pageIndex)
	if err != nil {
		return nil, err
	}
	xobjects := d.subDict(d.resources(page, inherited), "XObject")
	out := make(map[string][]byte, len(xobjects))
	for name, obj := range xobjects {
		b, err := d.streamContent(obj)
		if err != nil {
			return nil, err
		}
		out[name] = b
	}
	return out, nil
}

func (d *Document) streamContent(obj types.Object) ([]byte, error) {
	sd, _, err := d.ctx.DereferenceStreamDict(obj)
	if err != nil {
		return nil, err
	}
	if sd == nil {
		return nil, fmt.Errorf("object is not a stream")
	}
	if sd.Content == nil {
		if err := sd.Decode(); err != nil {
			return nil, fmt.Errorf("failed to decode stream: %w", err)
		}
	}
	return sd.Content, nil
}
