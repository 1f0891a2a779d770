package errors

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// WarningKind classifies a degraded but non-fatal condition.
type WarningKind int

const (
	WarningMissingField WarningKind = iota
	WarningUnsupportedField
	WarningUnparseableDate
	WarningUnknownChoice
	WarningInvalidMapping
	WarningFieldUpdate
	WarningFlatten
	WarningOverflow
	WarningDefinition
)

// String returns a string representation of the WarningKind
func (k WarningKind) String() string {
	switch k {
	case WarningMissingField:
		return "missing_field"
	case WarningUnsupportedField:
		return "unsupported_field"
	case WarningUnparseableDate:
		return "unparseable_date"
	case WarningUnknownChoice:
		return "unknown_choice"
	case WarningInvalidMapping:
		return "invalid_mapping"
	case WarningFieldUpdate:
		return "field_update"
	case WarningFlatten:
		return "flatten"
	case WarningOverflow:
		return "overflow"
	case WarningDefinition:
		return "definition"
	default:
		return "unknown"
	}
}

// Warning records a degraded path taken while producing a document.
type Warning struct {
	Kind     WarningKind `json:"kind"`
	Question string      `json:"question,omitempty"`
	Field    string      `json:"field,omitempty"`
	Message  string      `json:"message"`
}

func (w Warning) Error() string {
	var b strings.Builder
	b.WriteString(w.Kind.String())
	if w.Question != "" {
		fmt.Fprintf(&b, " question=%s", w.Question)
	}
	if w.Field != "" {
		fmt.Fprintf(&b, " field=%q", w.Field)
	}
	if w.Message != "" {
		b.WriteString(": ")
		b.WriteString(w.Message)
	}
	return b.String()
}

// Warnings is an ordered collection of Warning values.
type Warnings []Warning

// Add appends a warning built from the given parts.
func (ws *Warnings) Add(kind WarningKind, question, field, format string, args ...interface{}) {
	*ws = append(*ws, Warning{
		Kind:     kind,
		Question: question,
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Merge appends all warnings of other.
func (ws *Warnings) Merge(other Warnings) {
	*ws = append(*ws, other...)
}

// Count returns how many warnings are of the given kind.
func (ws Warnings) Count(kind WarningKind) int {
	n := 0
	for _, w := range ws {
		if w.Kind == kind {
			n++
		}
	}
	return n
}

// Strings renders every warning on its own line.
func (ws Warnings) Strings() []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Error()
	}
	return out
}

// Err combines the warnings into a single error, or nil when there are none.
func (ws Warnings) Err() error {
	var err error
	for _, w := range ws {
		err = multierr.Append(err, w)
	}
	return err
}
