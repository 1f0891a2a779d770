package acroform

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

var (
	// ErrFieldNotFound is returned for a name that is not a field of the document.
	ErrFieldNotFound = errors.New("field not found")
	// ErrWrongKind is returned when a value does not suit the field kind.
	ErrWrongKind = errors.New("field kind does not accept this value")
	// ErrNoAppearance is returned when a value was stored but at least one
	// widget could not be given an appearance. Such widgets draw nothing
	// once the form is flattened.
	ErrNoAppearance = errors.New("no appearance generated")
)

const offState = "Off"

// FieldText returns the current text value of a field.
func (d *Document) FieldText(name string) (string, error) {
	f, ok := d.byName[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}
	obj, found := f.dict.Find("V")
	if !found {
		return "", nil
	}
	s, _ := d.textValue(obj)
	return s, nil
}

// IsChecked reports whether any widget of a checkbox shows its on state.
func (d *Document) IsChecked(name string) (bool, error) {
	f, ok := d.byName[name]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}
	if f.Kind != KindCheckbox && f.Kind != KindRadio {
		return false, fmt.Errorf("%w: %q is a %s field", ErrWrongKind, name, f.Kind)
	}
	for _, w := range f.widgets {
		if as := w.dict.NameEntry("AS"); as != nil && *as != offState {
			return true, nil
		}
	}
	if v := f.dict.NameEntry("V"); v != nil {
		return *v != offState, nil
	}
	return false, nil
}

// SetText sets the value of a text or choice field and regenerates the
// appearance of its widgets. The value is kept even when an appearance
// cannot be built; that case is reported with ErrNoAppearance.
func (d *Document) SetText(name, value string) error {
	f, ok := d.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}
	if !f.AcceptsText() {
		return fmt.Errorf("%w: %q is a %s field", ErrWrongKind, name, f.Kind)
	}

	f.dict["V"] = textObject(value)

	var failed error
	for _, w := range f.widgets {
		if err := d.textAppearance(f, w, value); err != nil {
			d.logf("no appearance for %q: %v", name, err)
			delete(w.dict, "AP")
			d.needAppearances()
			if failed == nil {
				failed = fmt.Errorf("%w for %q: %v", ErrNoAppearance, name, err)
			}
		}
	}
	return failed
}

// SetChecked turns a checkbox on or off. Each widget is switched to its own
// on state, "Yes" when its appearance dictionary names none.
func (d *Document) SetChecked(name string, on bool) error {
	f, ok := d.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}
	if f.Kind != KindCheckbox {
		return fmt.Errorf("%w: %q is a %s field", ErrWrongKind, name, f.Kind)
	}

	value := offState
	for i, w := range f.widgets {
		state := offState
		if on {
			state = d.onState(w.dict)
		}
		w.dict["AS"] = types.Name(state)
		if i == 0 {
			value = state
		}
	}
	if on && len(f.widgets) == 0 {
		value = "Yes"
	}
	f.dict["V"] = types.Name(value)
	return nil
}

// onState returns the first appearance state of a checkbox widget other than Off.
func (d *Document) onState(w types.Dict) string {
	states := d.normalStates(w)
	for _, s := range states {
		if s != offState {
			return s
		}
	}
	return "Yes"
}

// normalStates lists the sorted state names of a widget's normal appearance.
func (d *Document) normalStates(w types.Dict) []string {
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
	if err != nil {
		return nil
	}
	n, ok := o.(types.Dict)
	if !ok {
		return nil
	}
	states := make([]string, 0, len(n))
	for k := range n {
		states = append(states, k)
	}
	sort.Strings(states)
	return states
}

func (d *Document) needAppearances() {
	if af := d.acroForm(); af != nil {
		af["NeedAppearances"] = types.Boolean(true)
	}
}
