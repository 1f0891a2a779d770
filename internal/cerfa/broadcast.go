package cerfa

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/abdoul12363/mdph/internal/formdef"
	"github.com/abdoul12363/mdph/internal/mapping"
)

// NamePair names the family and given name fields repeated on one page.
type NamePair struct {
	Family string `json:"family"`
	Given  string `json:"given"`
}

// NameBroadcast copies the applicant's name into the fields that repeat it
// on every page of the form.
type NameBroadcast struct {
	FamilyQuestion string     `json:"family_question"`
	GivenQuestion  string     `json:"given_question"`
	FullNameField  string     `json:"full_name_field"`
	Pairs          []NamePair `json:"pairs"`
}

// DefaultNameBroadcast returns the table of the MDPH request form.
func DefaultNameBroadcast() NameBroadcast {
	b := NameBroadcast{
		FamilyQuestion: "q_nom_naissance",
		GivenQuestion:  "q_prenoms",
		FullNameField:  "Nom et prénom de la personne",
	}
	for page := 3; page <= 9; page++ {
		b.Pairs = append(b.Pairs, NamePair{
			Family: fmt.Sprintf("Nom p%d", page),
			Given:  fmt.Sprintf("Prénom p%d", page),
		})
	}
	return b
}

// LoadNameBroadcast reads a broadcast table from a JSON file.
func LoadNameBroadcast(path string) (NameBroadcast, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return NameBroadcast{}, fmt.Errorf("failed to read name broadcast: %w", err)
	}
	var b NameBroadcast
	if err := json.Unmarshal(data, &b); err != nil {
		return NameBroadcast{}, fmt.Errorf("failed to parse name broadcast: %w", err)
	}
	if b.FamilyQuestion == "" || b.GivenQuestion == "" {
		return NameBroadcast{}, fmt.Errorf("name broadcast needs family_question and given_question")
	}
	return b, nil
}

// Mutations returns the text mutations for answers. Nothing is broadcast
// unless both the family name and the given names are answered.
func (b NameBroadcast) Mutations(answers formdef.Answers) []mapping.Mutation {
	family := answers.Get(b.FamilyQuestion)
	given := answers.Get(b.GivenQuestion)
	if !family.Truthy() || !given.Truthy() {
		return nil
	}

	var out []mapping.Mutation
	if b.FullNameField != "" {
		out = append(out, mapping.SetText(b.FullNameField, given.String()+" "+family.String()))
	}
	for _, p := range b.Pairs {
		if p.Family != "" {
			out = append(out, mapping.SetText(p.Family, family.String()))
		}
		if p.Given != "" {
			out = append(out, mapping.SetText(p.Given, given.String()))
		}
	}
	return out
}
