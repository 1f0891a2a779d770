package lifeproject

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"

	"github.com/abdoul12363/mdph/internal/layout"
	"github.com/abdoul12363/mdph/internal/pdf/acroform"
	pdferrors "github.com/abdoul12363/mdph/internal/pdf/errors"
	"github.com/abdoul12363/mdph/internal/pdf/fonts"
	"github.com/abdoul12363/mdph/internal/testpdf"
)

// Text2 and Text4 are 148pt high: exactly ten 11pt lines after padding.
func templateFields() []testpdf.Field {
	return []testpdf.Field{
		{Name: "Text1", Kind: testpdf.Text, Page: 0, Rect: []float64{50, 760, 545, 800}},
		{Name: "Text2", Kind: testpdf.Text, Page: 0, Rect: []float64{50, 100, 350, 248}, Multiline: true},
		{Name: "Text4", Kind: testpdf.Text, Page: 1, Rect: []float64{50, 600, 350, 748}, Multiline: true},
	}
}

func template(t *testing.T, fields ...testpdf.Field) string {
	t.Helper()
	if fields == nil {
		fields = templateFields()
	}
	return testpdf.Write(t, testpdf.A4(2, fields...))
}

func numbered(from, to int) string {
	var lines []string
	for i := from; i <= to; i++ {
		lines = append(lines, fmt.Sprintf("L%02d", i))
	}
	return strings.Join(lines, "\n")
}

func pageText(t *testing.T, pdf []byte, page int) string {
	t.Helper()
	doc, err := acroform.Load(pdf)
	require.NoError(t, err)
	content, err := doc.PageContent(page)
	require.NoError(t, err)
	return string(content)
}

func TestCompose_Overflow(t *testing.T) {
	c := NewComposer(filepath.Join(t.TempDir(), "absent.ttf"))
	res, err := c.Compose(context.Background(), Request{
		PDFPath: template(t),
		Blocks:  []layout.Block{{Body: numbered(1, 12)}},
	})
	require.NoError(t, err)

	assert.Equal(t, strings.Split(numbered(1, 10), "\n"), res.Regions[0].Lines)
	assert.Equal(t, []string{"L11", "L12"}, res.Regions[1].Lines)
	assert.Equal(t, "Text2", res.Regions[0].Field)
	assert.Equal(t, 1, res.Regions[1].PageIndex)
	assert.Zero(t, res.Dropped)
	assert.Empty(t, res.Warnings)

	first := pageText(t, res.PDF, 0)
	assert.Contains(t, first, "(L01) Tj")
	assert.Contains(t, first, "(L10) Tj")
	assert.NotContains(t, first, "(L11) Tj")

	second := pageText(t, res.PDF, 1)
	assert.Contains(t, second, "(L11) Tj")
	assert.Contains(t, second, "(L12) Tj")
}

func TestCompose_DropsWhatDoesNotFit(t *testing.T) {
	res, err := NewComposer().Compose(context.Background(), Request{
		PDFPath: template(t),
		Blocks:  []layout.Block{{Body: numbered(1, 25)}},
	})
	require.NoError(t, err)

	assert.Len(t, res.Regions[0].Lines, 10)
	assert.Len(t, res.Regions[1].Lines, 10)
	assert.Equal(t, 5, res.Dropped)
	assert.Equal(t, 1, res.Warnings.Count(pdferrors.WarningOverflow))
	assert.NotContains(t, pageText(t, res.PDF, 1), "(L21) Tj")
}

func TestCompose_TitledBlocks(t *testing.T) {
	res, err := NewComposer().Compose(context.Background(), Request{
		PDFPath: template(t),
		Blocks: []layout.Block{
			{Title: "Impact sur le travail", Body: "Je ne peux plus porter de charges."},
			{Title: "Vos aspirations", Body: ""},
		},
	})
	require.NoError(t, err)

	want := []string{
		"Impact sur le travail", "", "Je ne peux plus porter de charges.", "",
		"Vos aspirations", "", "", "",
	}
	assert.Equal(t, want, res.Regions[0].Lines)
	assert.Empty(t, res.Regions[1].Lines)
}

func TestCompose_Heading(t *testing.T) {
	res, err := NewComposer().Compose(context.Background(), Request{
		PDFPath:    template(t),
		FamilyName: " Dupont ",
		GivenNames: "Marie",
		Blocks:     []layout.Block{{Body: "Bonjour"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Dupont Marie,", res.Heading)
	assert.Equal(t, 28.0, res.HeadingSize)

	first := pageText(t, res.PDF, 0)
	assert.Contains(t, first, "(Dupont Marie,) Tj")
	assert.Contains(t, first, "0 0.176 0.373 rg")
	// x = 50 + 4, y = 760 + (40 - 28) / 2
	assert.Contains(t, first, "1 0 0 1 54 766 Tm")
}

func TestCompose_NoHeadingField(t *testing.T) {
	fields := templateFields()[1:]
	res, err := NewComposer().Compose(context.Background(), Request{
		PDFPath:    template(t, fields...),
		FamilyName: "Dupont",
		Blocks:     []layout.Block{{Body: "Bonjour"}},
	})
	require.NoError(t, err)
	assert.Zero(t, res.HeadingSize)
	assert.NotContains(t, pageText(t, res.PDF, 0), "(Dupont,) Tj")
}

func TestCompose_BrandFont(t *testing.T) {
	fontPath := filepath.Join(t.TempDir(), "brand.ttf")
	require.NoError(t, os.WriteFile(fontPath, gobold.TTF, 0644))

	c := NewComposer(filepath.Join(t.TempDir(), "absent.ttf"), fontPath)
	res, err := c.Compose(context.Background(), Request{
		PDFPath:    template(t),
		FamilyName: "Dupont",
		GivenNames: "Marie-Hélène Jeanne Françoise",
		Blocks:     []layout.Block{{Body: "Bonjour"}},
	})
	require.NoError(t, err)

	brand, err := fonts.ParseTrueType(gobold.TTF)
	require.NoError(t, err)
	assert.Equal(t, FitHeadingSize(brand, res.Heading, 487), res.HeadingSize)
	assert.True(t, bytes.Contains(res.PDF, []byte("TrueType")))
}

func TestCompose_MissingTarget(t *testing.T) {
	fields := templateFields()[:2]
	path := template(t, fields...)

	_, err := NewComposer().Compose(context.Background(), Request{PDFPath: path, Blocks: []layout.Block{{Body: "x"}}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pdferrors.ErrLayoutTargetMissing))

	var pdfErr *pdferrors.PDFError
	require.True(t, errors.As(err, &pdfErr))
	assert.Equal(t, "Text4", pdfErr.Field)
	assert.Equal(t, path, pdfErr.FilePath)
}

func TestCompose_SourceUnavailable(t *testing.T) {
	_, err := NewComposer().Compose(context.Background(), Request{PDFPath: filepath.Join(t.TempDir(), "absent.pdf")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, pdferrors.ErrSourceUnavailable))
}

func TestCompose_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewComposer().Compose(ctx, Request{PDFPath: template(t)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestComposeBytes(t *testing.T) {
	src := testpdf.Build(testpdf.A4(2, templateFields()...))
	res, err := NewComposer().ComposeBytes(context.Background(), src, Request{Blocks: []layout.Block{{Body: "Bonjour"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bonjour"}, res.Regions[0].Lines)
}
