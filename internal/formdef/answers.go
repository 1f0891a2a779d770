package formdef

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type valueKind int

const (
	valueAbsent valueKind = iota
	valueString
	valueNumber
	valueBool
	valueList
)

// Value is a single wizard answer: a string, a boolean or a list of strings.
// The zero Value is an absent answer.
type Value struct {
	kind valueKind
	text string
	flag bool
	list []string
}

// String returns a string answer.
func String(s string) Value { return Value{kind: valueString, text: s} }

// Bool returns a boolean answer.
func Bool(b bool) Value { return Value{kind: valueBool, flag: b} }

// List returns a multi-select answer.
func List(items ...string) Value {
	return Value{kind: valueList, list: append([]string(nil), items...)}
}

// IsEmpty reports whether the answer is absent, null or the empty string.
func (v Value) IsEmpty() bool {
	return v.kind == valueAbsent || (v.kind == valueString && v.text == "")
}

// IsBool reports whether the answer is a boolean, returning its value.
func (v Value) IsBool() (bool, bool) {
	return v.flag, v.kind == valueBool
}

// Items returns the elements of a list answer, or nil.
func (v Value) Items() []string {
	if v.kind != valueList {
		return nil
	}
	return append([]string(nil), v.list...)
}

// String renders the answer the way it is written into a text field:
// booleans as true/false, lists comma-joined.
func (v Value) String() string {
	switch v.kind {
	case valueString, valueNumber:
		return v.text
	case valueBool:
		return strconv.FormatBool(v.flag)
	case valueList:
		return strings.Join(v.list, ",")
	}
	return ""
}

// Truthy reports the truthiness used by bare visibility conditions.
func (v Value) Truthy() bool {
	switch v.kind {
	case valueString:
		return v.text != ""
	case valueNumber:
		f, err := strconv.ParseFloat(v.text, 64)
		return err == nil && f != 0
	case valueBool:
		return v.flag
	case valueList:
		return true
	}
	return false
}

// UnmarshalJSON decodes null, strings, booleans, numbers and arrays.
// Objects are not answers and decode as absent.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*v = Value{}
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case 'n', '{':
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		items := make([]string, 0, len(raw))
		for _, r := range raw {
			var item Value
			if err := item.UnmarshalJSON(r); err != nil {
				return err
			}
			items = append(items, item.String())
		}
		*v = Value{kind: valueList, list: items}
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("unsupported answer value %s: %w", data, err)
		}
		*v = Value{kind: valueNumber, text: n.String()}
	}
	return nil
}

// MarshalJSON encodes the answer back to its JSON form.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case valueString:
		return json.Marshal(v.text)
	case valueNumber:
		return []byte(v.text), nil
	case valueBool:
		return json.Marshal(v.flag)
	case valueList:
		return json.Marshal(v.list)
	}
	return []byte("null"), nil
}

// Answers maps question ids to the answers of one submission.
type Answers map[string]Value

// ParseAnswers decodes a JSON object of answers.
func ParseAnswers(data []byte) (Answers, error) {
	answers := Answers{}
	if len(bytes.TrimSpace(data)) == 0 {
		return answers, nil
	}
	if err := json.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("failed to parse answers: %w", err)
	}
	return answers, nil
}

// Get returns the answer for id; the zero Value when absent.
func (a Answers) Get(id string) Value {
	return a[id]
}

// Text returns the stringified answer for id.
func (a Answers) Text(id string) string {
	return a[id].String()
}

// conditionText stringifies a value for condition comparisons, where
// falsy answers compare as the empty string.
func conditionText(v Value) string {
	if !v.Truthy() {
		return ""
	}
	return v.String()
}

// NormalizeYesNo maps an answer to "oui" or "non".
func NormalizeYesNo(v Value) string {
	if b, ok := v.IsBool(); ok {
		if b {
			return "oui"
		}
		return "non"
	}
	if !v.Truthy() {
		return "non"
	}
	return NormalizeYesNoString(v.String())
}

// NormalizeYesNoString maps free text to "oui" or "non".
func NormalizeYesNoString(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "oui", "o", "yes", "y", "1", "true":
		return "oui"
	}
	return "non"
}

// DateParts holds the zero-padded day, month and year of a date answer.
type DateParts struct {
	Day   string
	Month string
	Year  string
}

// IsZero reports whether the date could not be parsed.
func (d DateParts) IsZero() bool {
	return d.Day == "" && d.Month == "" && d.Year == ""
}

var (
	isoDate    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	frenchDate = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
)

// SplitDate splits YYYY-MM-DD or DD/MM/YYYY; anything else yields empty parts.
func SplitDate(value string) DateParts {
	s := value
	switch {
	case isoDate.MatchString(s):
		return DateParts{Day: s[8:10], Month: s[5:7], Year: s[0:4]}
	case frenchDate.MatchString(s):
		return DateParts{Day: s[0:2], Month: s[3:5], Year: s[6:10]}
	}
	return DateParts{}
}
