package acroform

import (
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// textObject encodes s as a PDF text string: a literal for printable ASCII,
// otherwise UTF-16BE with a byte order mark.
func textObject(s string) types.Object {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7e || (s[i] < 0x20 && s[i] != '\n' && s[i] != '\r' && s[i] != '\t') {
			return types.NewHexLiteral([]byte(types.EncodeUTF16String(s)))
		}
	}
	return types.StringLiteral(literal(s))
}

// literal escapes raw bytes for use between parentheses.
func literal(s string) string {
	escaped, err := types.Escape(s)
	if err != nil {
		return s
	}
	return *escaped
}

// textValue reads a text string, name or number object as a Go string.
func (d *Document) textValue(obj types.Object) (string, bool) {
	o, err := d.ctx.Dereference(obj)
	if err != nil || o == nil {
		return "", false
	}
	switch v := o.(type) {
	case types.StringLiteral, types.HexLiteral:
		s, err := d.ctx.DereferenceStringOrHexLiteral(v, model.V10, nil)
		if err != nil {
			return "", false
		}
		return s, true
	case types.Name:
		return string(v), true
	case types.Integer:
		return v.String(), true
	case types.Float:
		return v.String(), true
	}
	return "", false
}
