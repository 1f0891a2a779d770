// Package cerfa fills the MDPH request form from wizard answers.
package cerfa

import (
	"errors"
	"fmt"
	"log"

	"github.com/abdoul12363/mdph/internal/formdef"
	"github.com/abdoul12363/mdph/internal/mapping"
	"github.com/abdoul12363/mdph/internal/pdf/acroform"
	pdferrors "github.com/abdoul12363/mdph/internal/pdf/errors"
)

// Filler applies a form definition and answers to a PDF form.
type Filler struct {
	Broadcast NameBroadcast
	// KeepFields leaves the form interactive instead of flattening it.
	KeepFields bool
	Debug      bool
}

// NewFiller returns a Filler with the default name broadcast.
func NewFiller() *Filler {
	return &Filler{Broadcast: DefaultNameBroadcast()}
}

// Result is a filled document.
type Result struct {
	PDF      []byte
	Applied  []mapping.Mutation
	Warnings pdferrors.Warnings
}

// Fill fills the PDF at pdfPath. The only error is an unavailable or
// unwritable document; every other anomaly is reported in Warnings.
func (f *Filler) Fill(def *formdef.Definition, answers formdef.Answers, pdfPath string) (*Result, error) {
	doc, err := acroform.Open(pdfPath, acroform.WithDebug(f.Debug))
	if err != nil {
		return nil, err
	}
	return f.fill(def, answers, doc)
}

// FillBytes fills a PDF held in memory.
func (f *Filler) FillBytes(def *formdef.Definition, answers formdef.Answers, src []byte) (*Result, error) {
	doc, err := acroform.Load(src, acroform.WithDebug(f.Debug))
	if err != nil {
		return nil, err
	}
	return f.fill(def, answers, doc)
}

// Plan resolves every mapped question and the name broadcast against
// lookup without touching a document.
func (f *Filler) Plan(def *formdef.Definition, answers formdef.Answers, lookup mapping.KindLookup) ([]mapping.Mutation, pdferrors.Warnings) {
	var mutations []mapping.Mutation
	var warnings pdferrors.Warnings

	if def != nil {
		for _, q := range def.Questions() {
			m, w := mapping.Resolve(q, answers.Get(q.ID), lookup)
			mutations = append(mutations, m...)
			warnings.Merge(w)
		}
	}

	for _, m := range f.Broadcast.Mutations(answers) {
		if lookup.FieldKind(m.Field) == mapping.KindMissing {
			warnings.Add(pdferrors.WarningMissingField, "", m.Field, "name broadcast target not found")
			continue
		}
		mutations = append(mutations, m)
	}

	return mutations, warnings
}

func (f *Filler) fill(def *formdef.Definition, answers formdef.Answers, doc *acroform.Document) (*Result, error) {
	mutations, warnings := f.Plan(def, answers, Lookup(doc))

	res := &Result{}
	for _, m := range mutations {
		if err := apply(doc, m); err != nil {
			if errors.Is(err, acroform.ErrNoAppearance) {
				if f.KeepFields {
					warnings.Add(pdferrors.WarningFieldUpdate, "", m.Field, "%v; viewer must render the value", err)
					res.Applied = append(res.Applied, m)
					continue
				}
				warnings.Add(pdferrors.WarningFieldUpdate, "", m.Field, "%v; value lost when flattening", err)
				continue
			}
			warnings.Add(pdferrors.WarningFieldUpdate, "", m.Field, "%v", err)
			continue
		}
		res.Applied = append(res.Applied, m)
	}

	if !f.KeepFields {
		if err := doc.Flatten(); err != nil {
			warnings.Add(pdferrors.WarningFlatten, "", "", "form left interactive: %v", err)
		}
	}

	pdf, err := doc.Bytes()
	if err != nil {
		return nil, err
	}
	res.PDF = pdf
	res.Warnings = warnings

	if f.Debug {
		for _, w := range warnings {
			log.Printf("cerfa: %s", w.Error())
		}
		log.Printf("cerfa: applied %d mutations, %d warnings", len(res.Applied), len(warnings))
	}
	return res, nil
}

func apply(doc *acroform.Document, m mapping.Mutation) error {
	switch m.Op {
	case mapping.OpSetText:
		return doc.SetText(m.Field, m.Text)
	case mapping.OpCheck:
		return doc.SetChecked(m.Field, true)
	case mapping.OpUncheck:
		return doc.SetChecked(m.Field, false)
	}
	return fmt.Errorf("unknown operation %v", m.Op)
}

// Lookup adapts a document's field index to the resolver.
func Lookup(doc *acroform.Document) mapping.KindLookup {
	return documentLookup{doc: doc}
}

type documentLookup struct {
	doc *acroform.Document
}

func (l documentLookup) FieldKind(name string) mapping.FieldKind {
	f, ok := l.doc.Field(name)
	if !ok {
		return mapping.KindMissing
	}
	switch f.Kind {
	case acroform.KindText:
		return mapping.KindText
	case acroform.KindCheckbox:
		return mapping.KindCheckbox
	}
	return mapping.KindOther
}

func (l documentLookup) AcceptsText(name string) bool {
	f, ok := l.doc.Field(name)
	return ok && f.AcceptsText()
}

// IsSourceUnavailable reports whether err means the template PDF could not be used.
func IsSourceUnavailable(err error) bool {
	return errors.Is(err, pdferrors.ErrSourceUnavailable)
}
