package pdf

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/abdoul12363/mdph/internal/access"
	"github.com/abdoul12363/mdph/internal/cerfa"
	"github.com/abdoul12363/mdph/internal/config"
	"github.com/abdoul12363/mdph/internal/formdef"
	"github.com/abdoul12363/mdph/internal/layout"
	"github.com/abdoul12363/mdph/internal/lifeproject"
	"github.com/abdoul12363/mdph/internal/pdf/acroform"
	pdferrors "github.com/abdoul12363/mdph/internal/pdf/errors"
	"github.com/abdoul12363/mdph/internal/pdf/security"
)

// Output kinds, used as generated file name prefixes
const (
	KindCerfa       = "cerfa"
	KindLifeProject = "life-project"
)

// Service orchestrates form filling, life-project composition and PDF
// inspection for the transport layer
type Service struct {
	cfg       *config.Config
	reader    *Reader
	validator *Validator
	// inputs spans the data and output directories; outputs only the latter.
	inputs   *security.Sandbox
	outputs  *security.Sandbox
	filler   *cerfa.Filler
	composer *lifeproject.Composer
	gate     access.Gate
	rewriter lifeproject.Rewriter
	info     *ServerInfo

	// definitions caches parsed form definitions across requests.
	definitions *DefinitionCache
}

// Option configures optional collaborators of a Service
type Option func(*Service)

// WithPremium enables the paid life-project flow
func WithPremium(gate access.Gate, rewriter lifeproject.Rewriter) Option {
	return func(s *Service) {
		s.gate = gate
		s.rewriter = rewriter
	}
}

// NewService creates a new PDF service from the configuration
func NewService(cfg *config.Config, opts ...Option) (*Service, error) {
	inputs, err := security.NewSandbox(cfg.DataDir, cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create input sandbox: %w", err)
	}
	outputs, err := security.NewSandbox(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create output sandbox: %w", err)
	}

	filler := cerfa.NewFiller()
	filler.Debug = cfg.IsDebug()
	if cfg.NameBroadcast != "" {
		b, err := cerfa.LoadNameBroadcast(cfg.Resolve(cfg.NameBroadcast))
		if err != nil {
			return nil, err
		}
		filler.Broadcast = b
	}

	composer := lifeproject.NewComposer(cfg.BrandFontPaths()...)
	composer.Debug = cfg.IsDebug()

	s := &Service{
		cfg:         cfg,
		reader:      NewReader(),
		validator:   NewValidator(cfg.MaxFileSize),
		inputs:      inputs,
		outputs:     outputs,
		filler:      filler,
		composer:    composer,
		definitions: NewDefinitionCache(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.info = NewServerInfo(s)
	return s, nil
}

// FillCerfa fills the request form from answers and writes the result
// into the output directory
func (s *Service) FillCerfa(req CerfaFillRequest) (*CerfaFillResult, error) {
	answers, err := formdef.ParseAnswers(req.Answers)
	if err != nil {
		return nil, err
	}

	defPath, err := s.inputPath(req.FormDefinition, s.cfg.FormDef)
	if err != nil {
		return nil, err
	}
	def, warnings, err := s.definitions.Load(defPath)
	if err != nil {
		return nil, err
	}

	pdfPath, err := s.templatePath(req.PDF, s.cfg.CerfaPDF)
	if err != nil {
		return nil, err
	}

	filler := *s.filler
	filler.KeepFields = req.KeepFields
	res, err := filler.Fill(def, answers, pdfPath)
	if err != nil {
		return nil, err
	}
	warnings.Merge(res.Warnings)

	out, size, err := s.writeOutput(KindCerfa, req.Output, res.PDF)
	if err != nil {
		return nil, err
	}

	applied := make([]string, 0, len(res.Applied))
	for _, m := range res.Applied {
		applied = append(applied, m.String())
	}
	return &CerfaFillResult{
		OutputPath: out,
		Size:       size,
		Applied:    applied,
		Warnings:   WarningInfos(warnings),
	}, nil
}

// FillLifeProject composes a life-project document and writes it into the
// output directory
func (s *Service) FillLifeProject(ctx context.Context, req LifeProjectRequest) (*LifeProjectResult, error) {
	answers, err := formdef.ParseAnswers(req.Answers)
	if err != nil {
		return nil, err
	}
	pdfPath, err := s.templatePath(req.PDF, s.cfg.LifeProjectPDF)
	if err != nil {
		return nil, err
	}

	svc := &lifeproject.Service{Composer: s.composer, Gate: s.gate, Rewriter: s.rewriter, PDFPath: pdfPath}

	var res *lifeproject.Result
	var offer string
	switch {
	case req.PaymentID != "":
		premium, err := svc.GeneratePremium(ctx, req.PaymentID, answers)
		if err != nil {
			return nil, err
		}
		res, offer = premium.Result, premium.Decision.Offer
	case req.Text != "":
		family, given := lifeproject.NameFromAnswers(answers)
		if req.FamilyName != "" || req.GivenNames != "" {
			family, given = req.FamilyName, req.GivenNames
		}
		res, err = s.composer.Compose(ctx, lifeproject.Request{
			PDFPath:    pdfPath,
			FamilyName: family,
			GivenNames: given,
			Blocks:     []layout.Block{{Body: req.Text}},
		})
	default:
		res, err = svc.Generate(ctx, answers)
	}
	if err != nil {
		return nil, err
	}

	out, size, err := s.writeOutput(KindLifeProject, req.Output, res.PDF)
	if err != nil {
		return nil, err
	}

	regions := make([]RegionInfo, 0, len(res.Regions))
	for _, r := range res.Regions {
		regions = append(regions, RegionInfo{Field: r.Field, PageIndex: r.PageIndex, Lines: r.Lines})
	}
	return &LifeProjectResult{
		OutputPath:  out,
		Size:        size,
		Heading:     res.Heading,
		HeadingSize: res.HeadingSize,
		Regions:     regions,
		Dropped:     res.Dropped,
		Offer:       offer,
		Warnings:    WarningInfos(res.Warnings),
	}, nil
}

// FormFields lists the fields of a PDF form and, with a form definition,
// the mapping coverage
func (s *Service) FormFields(req FormFieldsRequest) (*FormFieldsResult, error) {
	path, err := s.templatePath(req.Path, "")
	if err != nil {
		return nil, err
	}
	result, err := DescribeForm(path, s.cfg.IsDebug())
	if err != nil {
		return nil, err
	}

	if req.FormDefinition != "" {
		defPath, err := s.inputPath(req.FormDefinition, "")
		if err != nil {
			return nil, err
		}
		def, warnings, err := s.definitions.Load(defPath)
		if err != nil {
			return nil, err
		}
		result.Coverage = Coverage(def, fieldNames(result.Fields))
		result.Coverage.Warnings = WarningInfos(warnings)
	}

	return result, nil
}

// DescribeForm lists the fields of the PDF at path, ordered by page then name
func DescribeForm(path string, debug bool) (*FormFieldsResult, error) {
	doc, err := acroform.Open(path, acroform.WithDebug(debug))
	if err != nil {
		return nil, err
	}

	result := &FormFieldsResult{Path: path, Pages: doc.PageCount(), Fields: []FormFieldInfo{}}
	for _, f := range doc.Fields() {
		info := FormFieldInfo{
			Name:      f.Name,
			Kind:      f.Kind.String(),
			Multiline: f.Multiline(),
			Widgets:   f.WidgetCount(),
		}
		if p, ok := doc.Locate(f.Name); ok {
			box := p.Box
			info.Box = &box
			info.PageIndex = p.PageIndex
		}
		if f.AcceptsText() {
			info.Value, _ = doc.FieldText(f.Name)
		}
		result.Fields = append(result.Fields, info)
	}
	sort.SliceStable(result.Fields, func(i, j int) bool {
		a, b := result.Fields[i], result.Fields[j]
		if a.PageIndex != b.PageIndex {
			return a.PageIndex < b.PageIndex
		}
		return a.Name < b.Name
	})
	return result, nil
}

func fieldNames(fields []FormFieldInfo) []string {
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	return names
}

// Coverage compares the fields mapped by def with the fields of a PDF
func Coverage(def *formdef.Definition, pdfFields []string) *MappingCoverage {
	present := make(map[string]bool, len(pdfFields))
	for _, name := range pdfFields {
		present[name] = true
	}

	c := &MappingCoverage{Mapped: []string{}, Missing: []string{}, Unmapped: []string{}}
	mapped := map[string]bool{}
	for _, name := range def.MappedFields() {
		mapped[name] = true
		if present[name] {
			c.Mapped = append(c.Mapped, name)
		} else {
			c.Missing = append(c.Missing, name)
		}
	}
	for _, name := range pdfFields {
		if !mapped[name] {
			c.Unmapped = append(c.Unmapped, name)
		}
	}
	sort.Strings(c.Mapped)
	sort.Strings(c.Missing)
	sort.Strings(c.Unmapped)
	return c
}

// ExtractText returns the plain text of a PDF
func (s *Service) ExtractText(req ReadTextRequest) (*ReadTextResult, error) {
	path, err := s.inputPath(req.Path, "")
	if err != nil {
		return nil, err
	}
	info, err := s.validator.ValidateFile(path)
	if err != nil {
		return nil, err
	}

	content, pages, err := s.reader.ReadText(path)
	if err != nil {
		return nil, err
	}
	return &ReadTextResult{Path: path, Pages: pages, Size: info.Size(), Content: content}, nil
}

// ServerInfo returns server configuration, tools and templates
func (s *Service) ServerInfo(ctx context.Context) (*ServerInfoResult, error) {
	return s.info.GetServerInfo(ctx)
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.cfg.MaxFileSize
}

// inputPath resolves a requested path, or fallback when empty, inside the
// data or output directory
func (s *Service) inputPath(requested, fallback string) (string, error) {
	path := requested
	if path == "" {
		path = fallback
	}
	resolved, err := s.inputs.Resolve(s.cfg.DataDir, path)
	if err != nil {
		return "", fmt.Errorf("security validation failed: %w", err)
	}
	return resolved, nil
}

// templatePath resolves and validates a PDF input. A template that cannot
// be used is reported as an unavailable source.
func (s *Service) templatePath(requested, fallback string) (string, error) {
	path, err := s.inputPath(requested, fallback)
	if err != nil {
		return "", err
	}
	if _, err := s.validator.ValidateFile(path); err != nil {
		return "", pdferrors.SourceUnavailable(path, err)
	}
	return path, nil
}

// writeOutput stores data in the output directory, naming the file
// <kind>-<uuid>.pdf unless requested is set
func (s *Service) writeOutput(kind, requested string, data []byte) (string, int64, error) {
	name := requested
	if name == "" {
		name = fmt.Sprintf("%s-%s.pdf", kind, uuid.NewString())
	}
	path, err := s.outputs.Resolve(s.cfg.OutputDir, name)
	if err != nil {
		return "", 0, fmt.Errorf("security validation failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), config.DefaultDirPerm); err != nil {
		return "", 0, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if s.cfg.IsDebug() {
		log.Printf("wrote %s (%d bytes)", path, len(data))
	}
	return path, int64(len(data)), nil
}

// WarningInfos converts collected warnings to their reported form
func WarningInfos(ws pdferrors.Warnings) []WarningInfo {
	out := make([]WarningInfo, 0, len(ws))
	for _, w := range ws {
		out = append(out, WarningInfo{
			Kind:     w.Kind.String(),
			Question: w.Question,
			Field:    w.Field,
			Message:  w.Message,
		})
	}
	return out
}
