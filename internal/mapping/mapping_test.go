package mapping

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/abdoul12363/mdph/internal/formdef"
	pdferrors "github.com/abdoul12363/mdph/internal/pdf/errors"
)

type choiceLookup struct {
	StaticLookup
	text map[string]bool
}

func (c choiceLookup) AcceptsText(name string) bool { return c.text[name] }

func TestResolve(t *testing.T) {
	lookup := choiceLookup{
		StaticLookup: StaticLookup{
			"Nom":    KindText,
			"CaseA":  KindCheckbox,
			"J":      KindText,
			"M":      KindText,
			"A":      KindText,
			"Sexe H": KindCheckbox,
			"Sexe F": KindCheckbox,
			"Liste":  KindOther,
			"Radio":  KindOther,
		},
		text: map[string]bool{"Liste": true},
	}

	textQ := formdef.Question{ID: "q_nom", Type: formdef.TypeText, Mapping: formdef.FieldDescriptor("Nom")}
	yesNoQ := formdef.Question{ID: "q_x", Type: formdef.TypeYesNo, Mapping: formdef.FieldDescriptor("CaseA")}
	dateQ := formdef.Question{ID: "q_date", Type: formdef.TypeDate, Mapping: formdef.DateDescriptor("J", "M", "A")}
	choiceQ := formdef.Question{ID: "q_sexe", Type: formdef.TypeRadio, Mapping: formdef.ChoiceDescriptor(map[string]string{
		"Masculin": "Sexe H",
		"Féminin":  "Sexe F",
	})}

	tests := []struct {
		name     string
		question formdef.Question
		answer   formdef.Value
		want     []Mutation
		warnings []pdferrors.WarningKind
	}{
		{"empty answer", textQ, formdef.String(""), nil, nil},
		{"absent answer", textQ, formdef.Value{}, nil, nil},
		{"text", textQ, formdef.String("Dupont"), []Mutation{SetText("Nom", "Dupont")}, nil},
		{"bool into text", textQ, formdef.Bool(true), []Mutation{SetText("Nom", "true")}, nil},
		{"checkbox yes", yesNoQ, formdef.Bool(true), []Mutation{Check("CaseA")}, nil},
		{"checkbox no", yesNoQ, formdef.Bool(false), []Mutation{Uncheck("CaseA")}, nil},
		{"checkbox oui string", yesNoQ, formdef.String(" OUI"), []Mutation{Check("CaseA")}, nil},
		{"checkbox other string", yesNoQ, formdef.String("peut-être"), []Mutation{Uncheck("CaseA")}, nil},
		{
			"iso date", dateQ, formdef.String("2024-03-07"),
			[]Mutation{SetText("J", "07"), SetText("M", "03"), SetText("A", "2024")}, nil,
		},
		{
			"french date", dateQ, formdef.String("07/03/2024"),
			[]Mutation{SetText("J", "07"), SetText("M", "03"), SetText("A", "2024")}, nil,
		},
		{
			"unparseable date blanks the fields", dateQ, formdef.String("mars 2024"),
			[]Mutation{SetText("J", ""), SetText("M", ""), SetText("A", "")},
			[]pdferrors.WarningKind{pdferrors.WarningUnparseableDate},
		},
		{
			"date triple on text question", formdef.Question{ID: "q_t", Type: formdef.TypeText, Mapping: formdef.DateDescriptor("J", "M", "A")},
			formdef.String("2024-03-07"), nil, []pdferrors.WarningKind{pdferrors.WarningInvalidMapping},
		},
		{"choice", choiceQ, formdef.String("Féminin"), []Mutation{Check("Sexe F")}, nil},
		{"unknown choice", choiceQ, formdef.String("Autre"), nil, []pdferrors.WarningKind{pdferrors.WarningUnknownChoice}},
		{
			"missing field", formdef.Question{ID: "q_m", Mapping: formdef.FieldDescriptor("Absent")},
			formdef.String("x"), nil, []pdferrors.WarningKind{pdferrors.WarningMissingField},
		},
		{
			"choice field accepting text", formdef.Question{ID: "q_l", Mapping: formdef.FieldDescriptor("Liste")},
			formdef.String("Option 2"), []Mutation{SetText("Liste", "Option 2")}, nil,
		},
		{
			"radio group is unsupported", formdef.Question{ID: "q_r", Mapping: formdef.FieldDescriptor("Radio")},
			formdef.String("1"), nil, []pdferrors.WarningKind{pdferrors.WarningUnsupportedField},
		},
		{"unmapped question", formdef.Question{ID: "q_u"}, formdef.String("x"), nil, nil},
		{
			"invalid descriptor", formdef.Question{ID: "q_i", Mapping: formdef.Descriptor{Kind: formdef.DescriptorInvalid}},
			formdef.String("x"), nil, []pdferrors.WarningKind{pdferrors.WarningInvalidMapping},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warnings := Resolve(tt.question, tt.answer, lookup)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mutations mismatch (-want +got):\n%s", diff)
			}

			var kinds []pdferrors.WarningKind
			for _, w := range warnings {
				kinds = append(kinds, w.Kind)
				assert.Equal(t, tt.question.ID, w.Question)
			}
			assert.Equal(t, tt.warnings, kinds)
		})
	}
}

func TestResolve_ChoiceExclusivity(t *testing.T) {
	choices := map[string]string{}
	lookup := StaticLookup{}
	for _, v := range []string{"a", "b", "c", "d"} {
		choices[v] = "Case " + v
		lookup["Case "+v] = KindCheckbox
	}
	q := formdef.Question{ID: "q_c", Type: formdef.TypeRadio, Mapping: formdef.ChoiceDescriptor(choices)}

	for _, answer := range []formdef.Value{
		formdef.String("a"), formdef.String("d"), formdef.String("z"),
		formdef.List("a", "b"), formdef.Bool(true),
	} {
		got, _ := Resolve(q, answer, lookup)
		assert.LessOrEqual(t, len(got), 1, "answer %v", answer)
	}
}

func TestMutation_String(t *testing.T) {
	assert.Equal(t, `set_text "Nom"="Dupont"`, SetText("Nom", "Dupont").String())
	assert.Equal(t, `check "CaseA"`, Check("CaseA").String())
	assert.Equal(t, `uncheck "CaseA"`, Uncheck("CaseA").String())
}
