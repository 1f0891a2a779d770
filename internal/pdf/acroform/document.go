// Package acroform edits interactive PDF forms with pdfcpu: it indexes the
// AcroForm fields of a document, sets their values, regenerates their
// appearances, flattens them into page content, resolves field geometry and
// draws text onto pages.
package acroform

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	pdferrors "github.com/abdoul12363/mdph/internal/pdf/errors"
)

// Document is an in-memory PDF whose form can be read and modified.
type Document struct {
	path  string
	ctx   *model.Context
	pages []*types.IndirectRef

	fields []*Field
	byName map[string]*Field

	fontRefs map[string]*types.IndirectRef
	resSeq   int
	wrapped  map[int]bool
	debug    bool
}

// Option configures a Document.
type Option func(*Document)

// WithDebug logs skipped objects while indexing and flattening.
func WithDebug(debug bool) Option {
	return func(d *Document) { d.debug = debug }
}

// Open reads the PDF at path. Any failure to read or parse the file is an
// ErrSourceUnavailable error.
func Open(path string, opts ...Option) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pdferrors.SourceUnavailable(path, err)
	}
	doc, err := load(bytes.NewReader(data), path, opts...)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Load parses a PDF held in memory.
func Load(data []byte, opts ...Option) (*Document, error) {
	return load(bytes.NewReader(data), "", opts...)
}

func load(rs io.ReadSeeker, path string, opts ...Option) (*Document, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return nil, pdferrors.SourceUnavailable(path, fmt.Errorf("failed to read PDF context: %w", err))
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, pdferrors.SourceUnavailable(path, fmt.Errorf("failed to ensure page count: %w", err))
	}

	d := &Document{
		path:     path,
		ctx:      ctx,
		byName:   make(map[string]*Field),
		fontRefs: make(map[string]*types.IndirectRef),
	}
	for _, opt := range opts {
		opt(d)
	}

	for i := 1; i <= ctx.PageCount; i++ {
		_, ref, _, err := ctx.PageDict(i, false)
		if err != nil {
			return nil, pdferrors.SourceUnavailable(path, fmt.Errorf("failed to read page %d: %w", i, err))
		}
		d.pages = append(d.pages, ref)
	}

	if err := d.indexFields(); err != nil {
		return nil, pdferrors.SourceUnavailable(path, err)
	}

	return d, nil
}

// Path returns the file the document was opened from, if any.
func (d *Document) Path() string { return d.path }

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return len(d.pages) }

// Write serializes the document to w.
func (d *Document) Write(w io.Writer) error {
	if err := api.WriteContext(d.ctx, w); err != nil {
		return pdferrors.WrapError(pdferrors.ErrorTypeSerialization, err).WithFile(d.path)
	}
	return nil
}

// Bytes serializes the document.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// AddObject stores obj as a new indirect object.
func (d *Document) AddObject(obj types.Object) (*types.IndirectRef, error) {
	return d.ctx.IndRefForNewObject(obj)
}

// AddStream stores content as a new Flate encoded stream carrying the entries of dict.
func (d *Document) AddStream(dict types.Dict, content []byte) (*types.IndirectRef, error) {
	sd, err := d.ctx.NewStreamDictForBuf(content)
	if err != nil {
		return nil, err
	}
	for k, v := range dict {
		sd.Dict[k] = v
	}
	if err := sd.Encode(); err != nil {
		return nil, fmt.Errorf("failed to encode stream: %w", err)
	}
	return d.ctx.IndRefForNewObject(*sd)
}

// pageDict returns the dictionary of the zero-based page index.
func (d *Document) pageDict(index int) (types.Dict, *model.InheritedPageAttrs, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, nil, fmt.Errorf("page index %d out of range", index)
	}
	dict, _, inherited, err := d.ctx.PageDict(index+1, false)
	if err != nil {
		return nil, nil, err
	}
	return dict, inherited, nil
}

// pageIndex returns the zero-based index of the page referenced by ref.
func (d *Document) pageIndex(ref types.IndirectRef) (int, bool) {
	for i, p := range d.pages {
		if p != nil && p.ObjectNumber == ref.ObjectNumber {
			return i, true
		}
	}
	return 0, false
}

func (d *Document) logf(format string, args ...interface{}) {
	if d.debug {
		log.Printf("acroform: "+format, args...)
	}
}
