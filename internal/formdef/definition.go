package formdef

import (
	"bytes"
	"encoding/json"
)

// Answer type tags used by the wizard.
const (
	TypeText                          = "text"
	TypeTextarea                      = "textarea"
	TypeDate                          = "date"
	TypeYesNo                         = "oui_non"
	TypeRadio                         = "radio"
	TypeRadioWithText                 = "radio_with_text"
	TypeCheckbox                      = "checkbox"
	TypeCheckboxMultiple              = "checkbox_multiple"
	TypeCheckboxMultipleWithFrequency = "checkbox_multiple_with_frequency"
	TypeMultipleChoice                = "choix_multiple"
)

// Definition is the ordered wizard: pages of sections of questions.
type Definition struct {
	Pages []Page `json:"pages"`
}

// Page is one screen of the wizard.
type Page struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Order         int       `json:"order"`
	QuestionsFile string    `json:"questionsFile,omitempty"`
	Sections      []Section `json:"sections"`
}

// Section groups questions under an optional visibility condition.
type Section struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Condition string     `json:"condition_affichage,omitempty"`
	Questions []Question `json:"questions"`
}

// Option is one selectable value of a radio or multi-select question.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// UnmarshalJSON accepts a bare string or a {value, label} object.
func (o *Option) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*o = Option{Value: s, Label: s}
		return nil
	}
	type plain Option
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Label == "" {
		p.Label = p.Value
	}
	*o = Option(p)
	return nil
}

// Question is a single wizard question and its PDF mapping.
type Question struct {
	ID        string
	Type      string
	Label     string
	Required  bool
	Options   []Option
	Condition string
	Mapping   Descriptor
}

type questionJSON struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	TypeChamp    string          `json:"type_champ"`
	Question     string          `json:"question"`
	Title        string          `json:"title"`
	Label        string          `json:"label"`
	Required     bool            `json:"obligatoire"`
	Options      []Option        `json:"options"`
	Condition    string          `json:"condition_affichage"`
	LegacyCond   string          `json:"condition"`
	PDFMapping   json.RawMessage `json:"pdf_mapping"`
	PDFFieldName json.RawMessage `json:"pdf_field_name"`
}

// UnmarshalJSON accepts both the current and the legacy question keys.
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw questionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*q = Question{
		ID:        raw.ID,
		Type:      firstNonEmpty(raw.Type, raw.TypeChamp),
		Label:     firstNonEmpty(raw.Question, raw.Title, raw.Label),
		Required:  raw.Required,
		Options:   raw.Options,
		Condition: firstNonEmpty(raw.Condition, raw.LegacyCond),
	}

	mapping, err := parseDescriptor(raw.PDFMapping)
	if err != nil {
		return err
	}
	if mapping.Kind == DescriptorNone {
		if mapping, err = parseDescriptor(raw.PDFFieldName); err != nil {
			return err
		}
	}
	q.Mapping = mapping
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Questions returns every question in definition order.
func (d *Definition) Questions() []Question {
	var out []Question
	for _, p := range d.Pages {
		for _, s := range p.Sections {
			out = append(out, s.Questions...)
		}
	}
	return out
}

// Question looks a question up by id.
func (d *Definition) Question(id string) (Question, bool) {
	for _, p := range d.Pages {
		for _, s := range p.Sections {
			for _, q := range s.Questions {
				if q.ID == id {
					return q, true
				}
			}
		}
	}
	return Question{}, false
}

// VisibleQuestions returns the questions whose section and own conditions
// hold for answers.
func (d *Definition) VisibleQuestions(answers Answers) []Question {
	var out []Question
	for _, p := range d.Pages {
		for _, s := range p.Sections {
			if !Evaluate(s.Condition, answers) {
				continue
			}
			for _, q := range s.Questions {
				if Evaluate(q.Condition, answers) {
					out = append(out, q)
				}
			}
		}
	}
	return out
}

// MappedFields returns every PDF field referenced by the definition, in
// first-reference order.
func (d *Definition) MappedFields() []string {
	seen := map[string]bool{}
	var out []string
	for _, q := range d.Questions() {
		for _, f := range q.Mapping.FieldNames() {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out
}
