// Package lifeproject composes the MDPH "projet de vie" document: the
// applicant's name drawn as a heading and narrative blocks laid out over a
// primary region that overflows into a second one.
package lifeproject

import (
	"context"
	"log"
	"math"

	"github.com/abdoul12363/mdph/internal/layout"
	"github.com/abdoul12363/mdph/internal/pdf/acroform"
	pdferrors "github.com/abdoul12363/mdph/internal/pdf/errors"
	"github.com/abdoul12363/mdph/internal/pdf/fonts"
)

const (
	headingMaxSize = 28
	headingMinSize = 12
	titleSize      = 12
	bodySize       = 11
	padding        = 4
	minTextWidth   = 10
)

// HeadingColor is the brand blue of the name heading.
var HeadingColor = acroform.RGB255(0, 45, 95)

// Targets names the form fields whose rectangles receive the drawing.
type Targets struct {
	Heading  string `json:"heading"`
	Primary  string `json:"primary"`
	Overflow string `json:"overflow"`
}

// DefaultTargets returns the field names of the life-project template.
func DefaultTargets() Targets {
	return Targets{Heading: "Text1", Primary: "Text2", Overflow: "Text4"}
}

// DefaultBrandFonts is the ordered list of heading fonts tried before
// falling back to Helvetica-Bold.
var DefaultBrandFonts = []string{"fonts/Poppins-SemiBold.ttf", "fonts/Poppins-Bold.ttf"}

// Composer draws narrative text into a life-project template.
type Composer struct {
	Fields Targets
	// BrandFonts are TrueType files tried in order for the heading.
	BrandFonts []string
	Debug      bool
}

// NewComposer returns a Composer for the default template fields.
func NewComposer(brandFonts ...string) *Composer {
	if len(brandFonts) == 0 {
		brandFonts = DefaultBrandFonts
	}
	return &Composer{Fields: DefaultTargets(), BrandFonts: brandFonts}
}

// Request is one document to compose.
type Request struct {
	PDFPath    string
	FamilyName string
	GivenNames string
	Blocks     []layout.Block
}

// RegionReport describes what was drawn into one region.
type RegionReport struct {
	Field     string   `json:"field"`
	PageIndex int      `json:"page_index"`
	Lines     []string `json:"lines"`
}

// Result is a composed document.
type Result struct {
	PDF         []byte
	Heading     string
	HeadingSize float64
	// Regions holds the primary then the overflow region.
	Regions  [2]RegionReport
	Dropped  int
	Warnings pdferrors.Warnings
}

// Compose opens the template at req.PDFPath and composes it.
//
// The template must be readable and must hold the primary and overflow
// fields; otherwise nothing is drawn and an ErrSourceUnavailable or
// ErrLayoutTargetMissing error is returned. Lines that fit in neither
// region are dropped and reported as a warning.
func (c *Composer) Compose(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := acroform.Open(req.PDFPath, acroform.WithDebug(c.Debug))
	if err != nil {
		return nil, err
	}
	return c.compose(ctx, doc, req)
}

// ComposeBytes composes a template held in memory. req.PDFPath is only
// used in error reports.
func (c *Composer) ComposeBytes(ctx context.Context, src []byte, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := acroform.Load(src, acroform.WithDebug(c.Debug))
	if err != nil {
		return nil, err
	}
	return c.compose(ctx, doc, req)
}

func (c *Composer) compose(ctx context.Context, doc *acroform.Document, req Request) (*Result, error) {
	targets := c.Fields
	if targets.Primary == "" && targets.Overflow == "" {
		targets = DefaultTargets()
	}

	primary, ok := doc.Locate(targets.Primary)
	if !ok {
		return nil, pdferrors.LayoutTargetMissing(req.PDFPath, targets.Primary)
	}
	overflow, ok := doc.Locate(targets.Overflow)
	if !ok {
		return nil, pdferrors.LayoutTargetMissing(req.PDFPath, targets.Overflow)
	}
	var heading *acroform.Placement
	if targets.Heading != "" {
		heading, _ = doc.Locate(targets.Heading)
	}

	res := &Result{}
	res.Regions[0] = RegionReport{Field: targets.Primary, PageIndex: primary.PageIndex}
	res.Regions[1] = RegionReport{Field: targets.Overflow, PageIndex: overflow.PageIndex}

	for _, name := range []string{targets.Heading, targets.Primary, targets.Overflow} {
		if name == "" {
			continue
		}
		if err := doc.SetText(name, ""); err != nil {
			c.logf("clearing %s: %v", name, err)
		}
	}
	if err := doc.Flatten(); err != nil {
		res.Warnings.Add(pdferrors.WarningFlatten, "", "", "form left interactive: %v", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	regular, bold := fonts.Helvetica(), fonts.HelveticaBold()
	maxWidth := math.Max(minTextWidth, primary.Box.Width-2*padding)
	lines := layout.BuildLines(regular, bold, maxWidth, titleSize, bodySize, req.Blocks)

	res.Heading = HeadingText(req.FamilyName, req.GivenNames)
	if heading != nil && res.Heading != "" {
		brand := c.brandFont(bold)
		size := FitHeadingSize(brand, res.Heading, math.Max(minTextWidth, heading.Box.Width-2*padding))
		run := acroform.TextRun{
			Font:  brand,
			Size:  size,
			X:     heading.Box.X + padding,
			Y:     heading.Box.Y + (heading.Box.Height-size)/2,
			Text:  res.Heading,
			Color: HeadingColor,
		}
		if err := doc.DrawText(heading.PageIndex, []acroform.TextRun{run}); err != nil {
			return nil, err
		}
		res.HeadingSize = size
	}

	rest, err := c.drawRegion(doc, primary, lines, &res.Regions[0], regular, bold)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		rest, err = c.drawRegion(doc, overflow, rest, &res.Regions[1], regular, bold)
		if err != nil {
			return nil, err
		}
	}
	if len(rest) > 0 {
		res.Dropped = len(rest)
		res.Warnings.Add(pdferrors.WarningOverflow, "", targets.Overflow, "%d lines did not fit and were dropped", len(rest))
	}

	pdf, err := doc.Bytes()
	if err != nil {
		return nil, err
	}
	res.PDF = pdf

	if c.Debug {
		for _, w := range res.Warnings {
			log.Printf("lifeproject: %s", w.Error())
		}
		log.Printf("lifeproject: %d lines in %s, %d in %s, %d dropped",
			len(res.Regions[0].Lines), res.Regions[0].Field,
			len(res.Regions[1].Lines), res.Regions[1].Field, res.Dropped)
	}
	return res, nil
}

// drawRegion fits lines into p and draws them, returning the remainder.
func (c *Composer) drawRegion(doc *acroform.Document, p *acroform.Placement, lines []layout.StyledLine,
	report *RegionReport, regular, bold *fonts.Font) ([]layout.StyledLine, error) {
	placed, rest := layout.Fit(p.Box, layout.Uniform(padding), lines)

	runs := make([]acroform.TextRun, 0, len(placed))
	for _, l := range placed {
		report.Lines = append(report.Lines, l.Text)
		f := regular
		if l.Bold {
			f = bold
		}
		runs = append(runs, acroform.TextRun{Font: f, Size: l.Size, X: l.X, Y: l.Y, Text: l.Text})
	}
	if err := doc.DrawText(p.PageIndex, runs); err != nil {
		return nil, err
	}
	return rest, nil
}

// brandFont returns the first loadable brand font, or fallback.
func (c *Composer) brandFont(fallback *fonts.Font) *fonts.Font {
	for _, path := range c.BrandFonts {
		f, err := fonts.LoadTrueType(path)
		if err != nil {
			c.logf("brand font %s: %v", path, err)
			continue
		}
		return f
	}
	return fallback
}

func (c *Composer) logf(format string, args ...interface{}) {
	if c.Debug {
		log.Printf("lifeproject: "+format, args...)
	}
}
