package cerfa

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdoul12363/mdph/internal/formdef"
	"github.com/abdoul12363/mdph/internal/mapping"
	"github.com/abdoul12363/mdph/internal/pdf/acroform"
	pdferrors "github.com/abdoul12363/mdph/internal/pdf/errors"
	"github.com/abdoul12363/mdph/internal/testpdf"
)

func definition(t *testing.T, questions string) *formdef.Definition {
	t.Helper()
	def, _, err := formdef.Parse([]byte(`{"questions":`+questions+`}`), "")
	require.NoError(t, err)
	return def
}

func cerfaTemplate(t *testing.T) string {
	t.Helper()
	return testpdf.Write(t, testpdf.A4(2,
		testpdf.Field{Name: "Nom", Kind: testpdf.Text, Rect: []float64{100, 700, 300, 720}},
		testpdf.Field{Name: "CaseA", Kind: testpdf.Checkbox, Rect: []float64{50, 650, 60, 660}},
		testpdf.Field{Name: "J", Kind: testpdf.Text, Rect: []float64{100, 600, 120, 620}},
		testpdf.Field{Name: "M", Kind: testpdf.Text, Rect: []float64{130, 600, 150, 620}},
		testpdf.Field{Name: "A", Kind: testpdf.Text, Rect: []float64{160, 600, 200, 620}},
		testpdf.Field{Name: "Sexe H", Kind: testpdf.Checkbox, Rect: []float64{50, 550, 60, 560}},
		testpdf.Field{Name: "Sexe F", Kind: testpdf.Checkbox, Rect: []float64{70, 550, 80, 560}},
		testpdf.Field{Name: "Nom et prénom de la personne", Kind: testpdf.Text, Page: 1, Rect: []float64{100, 800, 400, 820}},
		testpdf.Field{Name: "Nom p3", Kind: testpdf.Text, Page: 1, Rect: []float64{100, 760, 250, 780}},
		testpdf.Field{Name: "Prénom p3", Kind: testpdf.Text, Page: 1, Rect: []float64{260, 760, 400, 780}},
	))
}

const questions = `[
	{"id":"q_nom","type":"text","pdf_mapping":"Nom"},
	{"id":"q_x","type":"oui_non","pdf_mapping":"CaseA"},
	{"id":"q_date","type":"date","pdf_mapping":["J","M","A"]},
	{"id":"q_sexe","type":"radio","pdf_mapping":{"values":{"Masculin":"Sexe H","Féminin":"Sexe F"}}},
	{"id":"q_fantome","type":"text","pdf_mapping":"Champ absent"}
]`

func fillInteractive(t *testing.T, answers formdef.Answers) (*acroform.Document, *Result) {
	t.Helper()
	f := NewFiller()
	f.KeepFields = true
	res, err := f.Fill(definition(t, questions), answers, cerfaTemplate(t))
	require.NoError(t, err)
	doc, err := acroform.Load(res.PDF)
	require.NoError(t, err)
	return doc, res
}

func fieldText(t *testing.T, doc *acroform.Document, name string) string {
	t.Helper()
	s, err := doc.FieldText(name)
	require.NoError(t, err)
	return s
}

func checked(t *testing.T, doc *acroform.Document, name string) bool {
	t.Helper()
	on, err := doc.IsChecked(name)
	require.NoError(t, err)
	return on
}

func TestFill_TextField(t *testing.T) {
	doc, res := fillInteractive(t, formdef.Answers{"q_nom": formdef.String("Dupont")})
	assert.Equal(t, "Dupont", fieldText(t, doc, "Nom"))
	assert.Equal(t, []mapping.Mutation{mapping.SetText("Nom", "Dupont")}, res.Applied)
	assert.Empty(t, res.Warnings)
}

func TestFill_Checkbox(t *testing.T) {
	tests := []struct {
		name    string
		answers formdef.Answers
		want    bool
	}{
		{"true checks", formdef.Answers{"q_x": formdef.Bool(true)}, true},
		{"false unchecks", formdef.Answers{"q_x": formdef.Bool(false)}, false},
		{"omitted stays unchecked", formdef.Answers{}, false},
		{"oui string checks", formdef.Answers{"q_x": formdef.String("oui")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, _ := fillInteractive(t, tt.answers)
			assert.Equal(t, tt.want, checked(t, doc, "CaseA"))
		})
	}
}

func TestFill_Date(t *testing.T) {
	doc, _ := fillInteractive(t, formdef.Answers{"q_date": formdef.String("2024-03-07")})
	assert.Equal(t, "07", fieldText(t, doc, "J"))
	assert.Equal(t, "03", fieldText(t, doc, "M"))
	assert.Equal(t, "2024", fieldText(t, doc, "A"))

	doc, res := fillInteractive(t, formdef.Answers{"q_date": formdef.String("bientôt")})
	assert.Equal(t, "", fieldText(t, doc, "J"))
	assert.Equal(t, 1, res.Warnings.Count(pdferrors.WarningUnparseableDate))
}

func TestFill_ChoiceMap(t *testing.T) {
	doc, _ := fillInteractive(t, formdef.Answers{"q_sexe": formdef.String("Féminin")})
	assert.True(t, checked(t, doc, "Sexe F"))
	assert.False(t, checked(t, doc, "Sexe H"))

	doc, res := fillInteractive(t, formdef.Answers{"q_sexe": formdef.String("Autre")})
	assert.False(t, checked(t, doc, "Sexe F"))
	assert.False(t, checked(t, doc, "Sexe H"))
	assert.Equal(t, 1, res.Warnings.Count(pdferrors.WarningUnknownChoice))
}

func TestFill_MissingFieldIsWarning(t *testing.T) {
	doc, res := fillInteractive(t, formdef.Answers{
		"q_fantome": formdef.String("x"),
		"q_nom":     formdef.String("Martin"),
	})
	assert.Equal(t, "Martin", fieldText(t, doc, "Nom"))
	require.Equal(t, 1, res.Warnings.Count(pdferrors.WarningMissingField))
	assert.Equal(t, "Champ absent", res.Warnings[0].Field)
}

func TestFill_NameBroadcast(t *testing.T) {
	doc, res := fillInteractive(t, formdef.Answers{
		"q_nom_naissance": formdef.String("Dupont"),
		"q_prenoms":       formdef.String("Jean Paul"),
	})

	assert.Equal(t, "Jean Paul Dupont", fieldText(t, doc, "Nom et prénom de la personne"))
	assert.Equal(t, "Dupont", fieldText(t, doc, "Nom p3"))
	assert.Equal(t, "Jean Paul", fieldText(t, doc, "Prénom p3"))
	// Pages 4 to 9 are not in the template.
	assert.Equal(t, 12, res.Warnings.Count(pdferrors.WarningMissingField))

	_, res = fillInteractive(t, formdef.Answers{"q_nom_naissance": formdef.String("Dupont")})
	assert.Empty(t, res.Applied)
}

func TestFill_Flattens(t *testing.T) {
	res, err := NewFiller().Fill(definition(t, questions), formdef.Answers{"q_nom": formdef.String("Dupont")}, cerfaTemplate(t))
	require.NoError(t, err)
	assert.Zero(t, res.Warnings.Count(pdferrors.WarningFlatten))

	doc, err := acroform.Load(res.PDF)
	require.NoError(t, err)
	assert.Empty(t, doc.Fields())
}

func TestFill_SourceUnavailable(t *testing.T) {
	_, err := NewFiller().Fill(definition(t, questions), formdef.Answers{}, filepath.Join(t.TempDir(), "absent.pdf"))
	require.Error(t, err)
	assert.True(t, IsSourceUnavailable(err))

	_, err = NewFiller().FillBytes(definition(t, questions), formdef.Answers{}, []byte("%PDF-garbage"))
	assert.True(t, errors.Is(err, pdferrors.ErrSourceUnavailable))
}

func TestPlan(t *testing.T) {
	f := &Filler{Broadcast: NameBroadcast{
		FamilyQuestion: "q_nom_naissance",
		GivenQuestion:  "q_prenoms",
		FullNameField:  "Complet",
		Pairs:          []NamePair{{Family: "N1", Given: "P1"}},
	}}
	lookup := mapping.StaticLookup{"Nom": mapping.KindText, "CaseA": mapping.KindCheckbox, "Complet": mapping.KindText, "N1": mapping.KindText}

	got, warnings := f.Plan(definition(t, questions), formdef.Answers{
		"q_nom":           formdef.String("Dupont"),
		"q_x":             formdef.Bool(true),
		"q_nom_naissance": formdef.String("Dupont"),
		"q_prenoms":       formdef.String("Jean"),
	}, lookup)

	want := []mapping.Mutation{
		mapping.SetText("Nom", "Dupont"),
		mapping.Check("CaseA"),
		mapping.SetText("Complet", "Jean Dupont"),
		mapping.SetText("N1", "Dupont"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Plan() mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, warnings, 1)
	assert.Equal(t, "P1", warnings[0].Field)
}

func TestLoadNameBroadcast(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broadcast.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"family_question": "q_nom",
		"given_question": "q_prenom",
		"pairs": [{"family": "Nom p2", "given": "Prénom p2"}]
	}`), 0644))

	b, err := LoadNameBroadcast(path)
	require.NoError(t, err)
	assert.Equal(t, "q_nom", b.FamilyQuestion)
	assert.Equal(t, []NamePair{{Family: "Nom p2", Given: "Prénom p2"}}, b.Pairs)

	require.NoError(t, os.WriteFile(path, []byte(`{"pairs": []}`), 0644))
	_, err = LoadNameBroadcast(path)
	assert.Error(t, err)

	def := DefaultNameBroadcast()
	assert.Len(t, def.Pairs, 7)
	assert.Equal(t, NamePair{Family: "Nom p9", Given: "Prénom p9"}, def.Pairs[6])
}

func TestFill_FieldWithoutAppearance(t *testing.T) {
	path := testpdf.Write(t, testpdf.A4(1,
		testpdf.Field{Name: "Nom", Kind: testpdf.Text},
	))
	def := definition(t, `[{"id":"q_nom","type":"text","pdf_mapping":"Nom"}]`)
	answers := formdef.Answers{"q_nom": formdef.String("Dupont")}

	t.Run("flattened", func(t *testing.T) {
		res, err := NewFiller().Fill(def, answers, path)
		require.NoError(t, err)
		assert.Empty(t, res.Applied)
		require.Equal(t, 1, res.Warnings.Count(pdferrors.WarningFieldUpdate))
		assert.Equal(t, "Nom", res.Warnings[0].Field)
		assert.Contains(t, res.Warnings[0].Message, "value lost when flattening")
	})

	t.Run("interactive", func(t *testing.T) {
		f := NewFiller()
		f.KeepFields = true
		res, err := f.Fill(def, answers, path)
		require.NoError(t, err)
		assert.Equal(t, []mapping.Mutation{mapping.SetText("Nom", "Dupont")}, res.Applied)
		assert.Equal(t, 1, res.Warnings.Count(pdferrors.WarningFieldUpdate))

		doc, err := acroform.Load(res.PDF)
		require.NoError(t, err)
		assert.Equal(t, "Dupont", fieldText(t, doc, "Nom"))
	})
}
