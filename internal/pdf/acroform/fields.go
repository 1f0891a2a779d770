package acroform

import (
	"fmt"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Kind is the type of an AcroForm field.
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindCheckbox
	KindRadio
	KindPushButton
	KindChoice
	KindSignature
)

// String returns the string representation of the field kind
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindCheckbox:
		return "checkbox"
	case KindRadio:
		return "radio"
	case KindPushButton:
		return "button"
	case KindChoice:
		return "choice"
	case KindSignature:
		return "signature"
	default:
		return "unknown"
	}
}

// Field flag bits (PDF 32000-1, 12.7.3.1 and 12.7.4).
const (
	flagMultiline  = 1 << 12
	flagRadio      = 1 << 15
	flagPushButton = 1 << 16
	flagCombo      = 1 << 17
)

const maxFieldDepth = 32

// Field is a terminal AcroForm field and its widget annotations.
type Field struct {
	Name  string
	Kind  Kind
	Flags int

	dict    types.Dict
	da      string
	widgets []widget
}

type widget struct {
	dict types.Dict
	ref  *types.IndirectRef
}

// Multiline reports whether a text field wraps its value.
func (f *Field) Multiline() bool { return f.Kind == KindText && f.Flags&flagMultiline != 0 }

// AcceptsText reports whether the field holds a free text value.
func (f *Field) AcceptsText() bool { return f.Kind == KindText || f.Kind == KindChoice }

// WidgetCount returns the number of widget annotations of the field.
func (f *Field) WidgetCount() int { return len(f.widgets) }

// Fields returns the terminal fields in document order.
func (d *Document) Fields() []*Field {
	return append([]*Field(nil), d.fields...)
}

// Field looks a field up by fully qualified name.
func (d *Document) Field(name string) (*Field, bool) {
	f, ok := d.byName[name]
	return f, ok
}

// FieldNames returns the qualified names of all fields, sorted.
func (d *Document) FieldNames() []string {
	names := make([]string, 0, len(d.fields))
	for _, f := range d.fields {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

type inherited struct {
	ft string
	ff int
	da string
}

func (d *Document) indexFields() error {
	root, err := d.ctx.Catalog()
	if err != nil {
		return fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := root.Find("AcroForm")
	if !found {
		return nil
	}
	acroForm, err := d.ctx.DereferenceDict(acroFormObj)
	if err != nil || acroForm == nil {
		d.logf("unreadable AcroForm dictionary: %v", err)
		return nil
	}

	var inh inherited
	if da, ok := acroForm.Find("DA"); ok {
		inh.da, _ = d.textValue(da)
	}

	fieldsObj, found := acroForm.Find("Fields")
	if !found {
		return nil
	}
	fields, err := d.ctx.DereferenceArray(fieldsObj)
	if err != nil {
		d.logf("unreadable Fields array: %v", err)
		return nil
	}

	for _, obj := range fields {
		d.walk(obj, "", inh, 0)
	}
	return nil
}

func (d *Document) walk(obj types.Object, parent string, inh inherited, depth int) {
	if depth > maxFieldDepth {
		d.logf("field tree deeper than %d under %q", maxFieldDepth, parent)
		return
	}

	dict, err := d.ctx.DereferenceDict(obj)
	if err != nil || dict == nil {
		d.logf("skipping unreadable field object: %v", err)
		return
	}

	name := parent
	if t, ok := dict.Find("T"); ok {
		if partial, ok := d.textValue(t); ok && partial != "" {
			if name != "" {
				name += "."
			}
			name += partial
		}
	}

	if ft := dict.NameEntry("FT"); ft != nil {
		inh.ft = *ft
	}
	if ff, ok := dict.Find("Ff"); ok {
		if i, err := d.ctx.DereferenceInteger(ff); err == nil && i != nil {
			inh.ff = i.Value()
		}
	}
	if da, ok := dict.Find("DA"); ok {
		if s, ok := d.textValue(da); ok {
			inh.da = s
		}
	}

	var children []types.Object
	var widgetKids []widget
	if kidsObj, ok := dict.Find("Kids"); ok {
		kids, err := d.ctx.DereferenceArray(kidsObj)
		if err == nil {
			for _, kid := range kids {
				kd, err := d.ctx.DereferenceDict(kid)
				if err != nil || kd == nil {
					continue
				}
				if _, hasT := kd.Find("T"); hasT {
					children = append(children, kid)
					continue
				}
				widgetKids = append(widgetKids, widget{dict: kd, ref: refOf(kid)})
			}
		}
	}

	for _, child := range children {
		d.walk(child, name, inh, depth+1)
	}

	if len(children) > 0 && len(widgetKids) == 0 {
		return
	}
	if name == "" {
		d.logf("skipping field without name")
		return
	}

	f, exists := d.byName[name]
	if !exists {
		f = &Field{Name: name, dict: dict, Kind: kindOf(inh.ft, inh.ff), Flags: inh.ff, da: inh.da}
		d.byName[name] = f
		d.fields = append(d.fields, f)
	}

	if isWidget(dict) {
		f.widgets = append(f.widgets, widget{dict: dict, ref: refOf(obj)})
	}
	f.widgets = append(f.widgets, widgetKids...)
}

func kindOf(ft string, ff int) Kind {
	switch ft {
	case "Tx":
		return KindText
	case "Btn":
		switch {
		case ff&flagPushButton != 0:
			return KindPushButton
		case ff&flagRadio != 0:
			return KindRadio
		default:
			return KindCheckbox
		}
	case "Ch":
		return KindChoice
	case "Sig":
		return KindSignature
	}
	return KindUnknown
}

func isWidget(dict types.Dict) bool {
	if st := dict.NameEntry("Subtype"); st != nil && *st == "Widget" {
		return true
	}
	_, hasRect := dict.Find("Rect")
	return hasRect
}

func refOf(obj types.Object) *types.IndirectRef {
	switch r := obj.(type) {
	case types.IndirectRef:
		return &r
	case *types.IndirectRef:
		return r
	}
	return nil
}

// acroForm returns the document's AcroForm dictionary, if any.
func (d *Document) acroForm() types.Dict {
	root, err := d.ctx.Catalog()
	if err != nil {
		return nil
	}
	obj, found := root.Find("AcroForm")
	if !found {
		return nil
	}
	dict, err := d.ctx.DereferenceDict(obj)
	if err != nil {
		return nil
	}
	return dict
}
