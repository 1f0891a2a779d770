// Package testpdf writes small interactive PDF documents for tests.
package testpdf

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf16"
)

// Kind selects the AcroForm field type of a test field.
type Kind int

const (
	Text Kind = iota
	Checkbox
	Choice
)

// Field describes one form field and its single widget.
type Field struct {
	// Name is the fully qualified name; one dot creates a parent/child pair.
	Name string
	Kind Kind
	// Page is the zero-based page index of the widget.
	Page int
	// Rect is written as given; nil omits /Rect.
	Rect []float64
	// Value is the initial text value.
	Value string
	// Checked turns a checkbox on initially.
	Checked bool
	// OnState is the checkbox on appearance name; "Yes" when empty.
	OnState string
	// Options lists the entries of a choice field.
	Options []string
	// NoPageRef omits the widget's /P entry.
	NoPageRef bool
	// SeparateWidget stores the widget as a /Kids entry of the field.
	SeparateWidget bool
	// Multiline sets the multiline text flag.
	Multiline bool
}

// Document describes a test PDF.
type Document struct {
	Pages  int
	Width  float64
	Height float64
	Fields []Field
}

// A4 returns an n-page A4 document with fields.
func A4(pages int, fields ...Field) Document {
	return Document{Pages: pages, Width: 595, Height: 842, Fields: fields}
}

// Write builds doc into a temporary file and returns its path.
func Write(tb testing.TB, doc Document) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "form.pdf")
	if err := os.WriteFile(path, Build(doc), 0644); err != nil {
		tb.Fatalf("failed to write test pdf: %v", err)
	}
	return path
}

type builder struct {
	objects []string
}

func (b *builder) alloc() int {
	b.objects = append(b.objects, "")
	return len(b.objects)
}

func (b *builder) set(n int, body string) {
	b.objects[n-1] = body
}

func (b *builder) add(body string) int {
	n := b.alloc()
	b.set(n, body)
	return n
}

func (b *builder) stream(dict, content string) int {
	return b.add(fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(content), content))
}

// Build serializes doc with a classic cross-reference table.
func Build(doc Document) []byte {
	if doc.Pages < 1 {
		doc.Pages = 1
	}
	if doc.Width == 0 {
		doc.Width, doc.Height = 595, 842
	}

	b := &builder{}
	catalog := b.alloc()
	pagesRoot := b.alloc()
	helv := b.add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	pageRefs := make([]int, doc.Pages)
	for i := range pageRefs {
		pageRefs[i] = b.alloc()
	}
	annots := make([][]int, doc.Pages)

	var roots []int
	parents := map[string]int{}
	parentKids := map[int][]int{}
	var parentOrder []string

	for _, f := range doc.Fields {
		parentName, leaf := "", f.Name
		if i := strings.LastIndex(f.Name, "."); i >= 0 {
			parentName, leaf = f.Name[:i], f.Name[i+1:]
		}

		fieldNum := b.alloc()
		widgetNum := fieldNum
		if f.SeparateWidget {
			widgetNum = b.alloc()
		}

		var field, widget strings.Builder
		fmt.Fprintf(&field, "/T %s ", textString(leaf))

		switch f.Kind {
		case Text:
			field.WriteString("/FT /Tx /DA (/Helv 0 Tf 0 g) ")
			if f.Multiline {
				field.WriteString("/Ff 4096 ")
			}
			if f.Value != "" {
				fmt.Fprintf(&field, "/V %s ", textString(f.Value))
			}
		case Choice:
			field.WriteString("/FT /Ch /Ff 131072 /DA (/Helv 0 Tf 0 g) /Opt [")
			for _, o := range f.Options {
				field.WriteString(textString(o) + " ")
			}
			field.WriteString("] ")
			if f.Value != "" {
				fmt.Fprintf(&field, "/V %s ", textString(f.Value))
			}
		case Checkbox:
			on := f.OnState
			if on == "" {
				on = "Yes"
			}
			state := "Off"
			if f.Checked {
				state = on
			}
			field.WriteString("/FT /Btn ")
			fmt.Fprintf(&field, "/V /%s ", state)

			w, h := 10.0, 10.0
			if len(f.Rect) == 4 {
				w, h = abs(f.Rect[2]-f.Rect[0]), abs(f.Rect[3]-f.Rect[1])
			}
			form := fmt.Sprintf("/Type /XObject /Subtype /Form /BBox [0 0 %s %s] /Resources << >>", num(w), num(h))
			onAP := b.stream(form, fmt.Sprintf("q 0 g 1 1 %s %s re f Q", num(w-2), num(h-2)))
			offAP := b.stream(form, "")
			fmt.Fprintf(&widget, "/AS /%s /AP << /N << /%s %d 0 R /Off %d 0 R >> >> ", state, on, onAP, offAP)
		}

		widget.WriteString("/Type /Annot /Subtype /Widget /F 4 ")
		if f.Rect != nil {
			parts := make([]string, len(f.Rect))
			for i, v := range f.Rect {
				parts[i] = num(v)
			}
			fmt.Fprintf(&widget, "/Rect [%s] ", strings.Join(parts, " "))
		}
		page := f.Page
		if page < 0 || page >= doc.Pages {
			page = 0
		}
		if !f.NoPageRef {
			fmt.Fprintf(&widget, "/P %d 0 R ", pageRefs[page])
		}
		annots[page] = append(annots[page], widgetNum)

		if parentName != "" {
			p, ok := parents[parentName]
			if !ok {
				p = b.alloc()
				parents[parentName] = p
				parentOrder = append(parentOrder, parentName)
				roots = append(roots, p)
			}
			parentKids[p] = append(parentKids[p], fieldNum)
			fmt.Fprintf(&field, "/Parent %d 0 R ", p)
		} else {
			roots = append(roots, fieldNum)
		}

		if f.SeparateWidget {
			b.set(fieldNum, fmt.Sprintf("<< %s/Kids [%d 0 R] >>", field.String(), widgetNum))
			b.set(widgetNum, fmt.Sprintf("<< %s/Parent %d 0 R >>", widget.String(), fieldNum))
		} else {
			b.set(fieldNum, fmt.Sprintf("<< %s%s>>", field.String(), widget.String()))
		}
	}

	for _, name := range parentOrder {
		p := parents[name]
		b.set(p, fmt.Sprintf("<< /T %s /Kids [%s] >>", textString(name), refs(parentKids[p])))
	}

	for i, ref := range pageRefs {
		content := b.stream("", fmt.Sprintf("BT /F1 12 Tf 72 %s Td (Page %d) Tj ET", num(doc.Height-40), i+1))
		page := fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 %s %s] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R",
			pagesRoot, num(doc.Width), num(doc.Height), helv, content)
		if len(annots[i]) > 0 {
			page += fmt.Sprintf(" /Annots [%s]", refs(annots[i]))
		}
		b.set(ref, page+" >>")
	}

	b.set(pagesRoot, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", refs(pageRefs), doc.Pages))

	root := fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R", pagesRoot)
	if len(roots) > 0 {
		acroForm := b.add(fmt.Sprintf("<< /Fields [%s] /DA (/Helv 0 Tf 0 g) /DR << /Font << /Helv %d 0 R >> >> >>", refs(roots), helv))
		root += fmt.Sprintf(" /AcroForm %d 0 R", acroForm)
	}
	b.set(catalog, root+" >>")

	return b.bytes()
}

func (b *builder) bytes() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(b.objects))
	for i, body := range b.objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(b.objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(b.objects)+1, xref)
	return buf.Bytes()
}

func refs(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprintf("%d 0 R", n)
	}
	return strings.Join(parts, " ")
}

func num(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// textString encodes s as a literal string when ASCII, else as UTF-16BE hex.
func textString(s string) string {
	ascii := true
	for _, r := range s {
		if r > 0x7e || r < 0x20 {
			ascii = false
			break
		}
	}
	if ascii {
		r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
		return "(" + r.Replace(s) + ")"
	}
	units := utf16.Encode([]rune(s))
	raw := []byte{0xfe, 0xff}
	for _, u := range units {
		raw = append(raw, byte(u>>8), byte(u))
	}
	return "<" + strings.ToUpper(hex.EncodeToString(raw)) + ">"
}
