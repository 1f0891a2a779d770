package formdef

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// DescriptorKind tags the shape of a question's mapping descriptor.
type DescriptorKind int

const (
	// DescriptorNone means the question is not mapped to the PDF.
	DescriptorNone DescriptorKind = iota
	// DescriptorField targets a single named field.
	DescriptorField
	// DescriptorDate targets day, month and year text fields.
	DescriptorDate
	// DescriptorChoice maps answer values to checkbox fields.
	DescriptorChoice
	// DescriptorInvalid is a descriptor whose shape cannot be resolved.
	DescriptorInvalid
)

func (k DescriptorKind) String() string {
	switch k {
	case DescriptorNone:
		return "none"
	case DescriptorField:
		return "field"
	case DescriptorDate:
		return "date"
	case DescriptorChoice:
		return "choice"
	default:
		return "invalid"
	}
}

// Descriptor is the canonical form of a question's PDF mapping.
type Descriptor struct {
	Kind DescriptorKind
	// Field is set for DescriptorField.
	Field string
	// Fields holds the day, month and year fields of DescriptorDate, or the
	// raw array of an invalid array descriptor.
	Fields []string
	// Choices maps answer values to checkbox field names for DescriptorChoice.
	Choices map[string]string
}

// FieldDescriptor targets a single field.
func FieldDescriptor(name string) Descriptor {
	return Descriptor{Kind: DescriptorField, Field: name}
}

// DateDescriptor targets day, month and year fields.
func DateDescriptor(day, month, year string) Descriptor {
	return Descriptor{Kind: DescriptorDate, Fields: []string{day, month, year}}
}

// ChoiceDescriptor maps answer values to checkbox fields.
func ChoiceDescriptor(choices map[string]string) Descriptor {
	return Descriptor{Kind: DescriptorChoice, Choices: choices}
}

// FieldNames returns every PDF field the descriptor can touch, sorted.
func (d Descriptor) FieldNames() []string {
	var names []string
	switch d.Kind {
	case DescriptorField:
		names = []string{d.Field}
	case DescriptorDate:
		names = append(names, d.Fields...)
	case DescriptorChoice:
		seen := make(map[string]bool, len(d.Choices))
		for _, f := range d.Choices {
			if !seen[f] {
				seen[f] = true
				names = append(names, f)
			}
		}
		sort.Strings(names)
	}
	return names
}

// UnmarshalJSON accepts a field name, a date triple, a choice map and the
// object wrappers {"field": ...} and {"values": {...}}.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	parsed, err := parseDescriptor(data)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func parseDescriptor(data []byte) (Descriptor, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Descriptor{}, nil
	}
	switch data[0] {
	case 'n':
		return Descriptor{}, nil
	case '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return Descriptor{}, err
		}
		if name == "" {
			return Descriptor{}, nil
		}
		return FieldDescriptor(name), nil
	case '[':
		var names []string
		if err := json.Unmarshal(data, &names); err != nil {
			return Descriptor{Kind: DescriptorInvalid}, nil
		}
		if len(names) == 3 {
			return DateDescriptor(names[0], names[1], names[2]), nil
		}
		return Descriptor{Kind: DescriptorInvalid, Fields: names}, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return Descriptor{}, err
		}
		if values, ok := obj["values"]; ok {
			return parseChoices(values)
		}
		if field, ok := obj["field"]; ok {
			return parseDescriptor(field)
		}
		return parseChoices(data)
	}
	return Descriptor{}, fmt.Errorf("unsupported mapping descriptor %s", data)
}

func parseChoices(data []byte) (Descriptor, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Descriptor{Kind: DescriptorInvalid}, nil
	}
	choices := make(map[string]string, len(raw))
	for value, target := range raw {
		var name string
		if err := json.Unmarshal(target, &name); err != nil || name == "" {
			continue
		}
		choices[value] = name
	}
	return ChoiceDescriptor(choices), nil
}
