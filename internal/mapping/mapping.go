// Package mapping turns one answer and its question's mapping descriptor into
// the field mutations to apply to a PDF form.
package mapping

import (
	"fmt"

	"github.com/abdoul12363/mdph/internal/formdef"
	pdferrors "github.com/abdoul12363/mdph/internal/pdf/errors"
)

// FieldKind is the kind of a PDF form field as seen by the resolver.
type FieldKind int

const (
	KindMissing FieldKind = iota
	KindText
	KindCheckbox
	KindOther
)

func (k FieldKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindCheckbox:
		return "checkbox"
	case KindOther:
		return "other"
	default:
		return "missing"
	}
}

// KindLookup reports the kind of a field by fully qualified name.
type KindLookup interface {
	FieldKind(name string) FieldKind
}

// TextAcceptor is implemented by lookups that know whether a field of
// KindOther can hold a text value.
type TextAcceptor interface {
	AcceptsText(name string) bool
}

// StaticLookup is a fixed name to kind table.
type StaticLookup map[string]FieldKind

// FieldKind implements KindLookup.
func (s StaticLookup) FieldKind(name string) FieldKind {
	return s[name]
}

// Op is the operation a Mutation applies to a field.
type Op int

const (
	OpSetText Op = iota
	OpCheck
	OpUncheck
)

func (o Op) String() string {
	switch o {
	case OpCheck:
		return "check"
	case OpUncheck:
		return "uncheck"
	default:
		return "set_text"
	}
}

// Mutation is a single change to a named form field.
type Mutation struct {
	Field string
	Op    Op
	Text  string
}

// SetText returns a text mutation.
func SetText(field, text string) Mutation {
	return Mutation{Field: field, Op: OpSetText, Text: text}
}

// Check returns a checkbox mutation turning the box on.
func Check(field string) Mutation {
	return Mutation{Field: field, Op: OpCheck}
}

// Uncheck returns a checkbox mutation turning the box off.
func Uncheck(field string) Mutation {
	return Mutation{Field: field, Op: OpUncheck}
}

func (m Mutation) String() string {
	if m.Op == OpSetText {
		return fmt.Sprintf("%s %q=%q", m.Op, m.Field, m.Text)
	}
	return fmt.Sprintf("%s %q", m.Op, m.Field)
}

// Resolve computes the mutations for one question's answer.
//
// Empty answers and unmapped questions produce nothing. Targets missing from
// the document, unparseable dates and unknown choice values produce no
// mutation and a warning instead.
func Resolve(q formdef.Question, answer formdef.Value, lookup KindLookup) ([]Mutation, pdferrors.Warnings) {
	if answer.IsEmpty() {
		return nil, nil
	}

	r := resolver{question: q, lookup: lookup}
	switch q.Mapping.Kind {
	case formdef.DescriptorField:
		r.single(q.Mapping.Field, answer)
	case formdef.DescriptorDate:
		r.date(q.Mapping.Fields, answer)
	case formdef.DescriptorChoice:
		r.choice(q.Mapping.Choices, answer)
	case formdef.DescriptorInvalid:
		r.warn(pdferrors.WarningInvalidMapping, "", "mapping descriptor has an unsupported shape")
	}
	return r.mutations, r.warnings
}

type resolver struct {
	question  formdef.Question
	lookup    KindLookup
	mutations []Mutation
	warnings  pdferrors.Warnings
}

func (r *resolver) warn(kind pdferrors.WarningKind, field, format string, args ...interface{}) {
	r.warnings.Add(kind, r.question.ID, field, format, args...)
}

func (r *resolver) acceptsText(field string) bool {
	switch r.lookup.FieldKind(field) {
	case KindText:
		return true
	case KindOther:
		if ta, ok := r.lookup.(TextAcceptor); ok {
			return ta.AcceptsText(field)
		}
	}
	return false
}

func (r *resolver) single(field string, answer formdef.Value) {
	switch kind := r.lookup.FieldKind(field); kind {
	case KindMissing:
		r.warn(pdferrors.WarningMissingField, field, "field not found")
	case KindText:
		r.mutations = append(r.mutations, SetText(field, answer.String()))
	case KindCheckbox:
		if formdef.NormalizeYesNo(answer) == "oui" {
			r.mutations = append(r.mutations, Check(field))
		} else {
			r.mutations = append(r.mutations, Uncheck(field))
		}
	default:
		if r.acceptsText(field) {
			r.mutations = append(r.mutations, SetText(field, answer.String()))
			return
		}
		r.warn(pdferrors.WarningUnsupportedField, field, "field of kind %s cannot hold the answer", kind)
	}
}

func (r *resolver) date(fields []string, answer formdef.Value) {
	if r.question.Type != formdef.TypeDate || len(fields) != 3 {
		r.warn(pdferrors.WarningInvalidMapping, "", "date triple on a %q question", r.question.Type)
		return
	}

	parts := formdef.SplitDate(answer.String())
	if parts.IsZero() {
		r.warn(pdferrors.WarningUnparseableDate, "", "date %q is not YYYY-MM-DD or DD/MM/YYYY", answer.String())
	}

	for i, text := range []string{parts.Day, parts.Month, parts.Year} {
		field := fields[i]
		switch {
		case r.lookup.FieldKind(field) == KindMissing:
			r.warn(pdferrors.WarningMissingField, field, "field not found")
		case !r.acceptsText(field):
			r.warn(pdferrors.WarningUnsupportedField, field, "date part target is not a text field")
		default:
			r.mutations = append(r.mutations, SetText(field, text))
		}
	}
}

func (r *resolver) choice(choices map[string]string, answer formdef.Value) {
	value := answer.String()
	field, ok := choices[value]
	if !ok {
		r.warn(pdferrors.WarningUnknownChoice, "", "value %q has no mapped field", value)
		return
	}

	switch r.lookup.FieldKind(field) {
	case KindMissing:
		r.warn(pdferrors.WarningMissingField, field, "field not found")
	case KindCheckbox:
		r.mutations = append(r.mutations, Check(field))
	default:
		r.warn(pdferrors.WarningUnsupportedField, field, "choice target is not a checkbox")
	}
}
