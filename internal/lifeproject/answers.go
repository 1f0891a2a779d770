package lifeproject

import (
	"strings"

	"github.com/abdoul12363/mdph/internal/formdef"
	"github.com/abdoul12363/mdph/internal/layout"
)

// narrativeSections are the answers of the free document, in print order.
var narrativeSections = []struct {
	question string
	title    string
}{
	{"impact_quotidien", "Comment ces difficultés impactent votre vie quotidienne ?"},
	{"description_impact_travail", "Impact sur le travail"},
	{"explication_demande", "Explication complémentaire"},
	{"projet_vie", "Vos aspirations"},
}

// BlocksFromAnswers returns the four titled blocks of the free
// life-project document. Unanswered questions keep their title over a
// blank body.
func BlocksFromAnswers(answers formdef.Answers) []layout.Block {
	blocks := make([]layout.Block, 0, len(narrativeSections))
	for _, s := range narrativeSections {
		blocks = append(blocks, layout.Block{Title: s.title, Body: answers.Text(s.question)})
	}
	return blocks
}

// NameFromAnswers returns the family and given names of the applicant.
// The wizard has stored both under a bare and a colon-suffixed id; the
// first non-blank one wins.
func NameFromAnswers(answers formdef.Answers) (family, given string) {
	return firstText(answers, "nom", "nom:"), firstText(answers, "prenom", "prenom:")
}

func firstText(answers formdef.Answers, ids ...string) string {
	for _, id := range ids {
		if v := answers.Text(id); strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// HeadingText renders "<family> <given>," from the trimmed name parts,
// skipping empty ones. It is empty when both parts are.
func HeadingText(family, given string) string {
	var parts []string
	for _, p := range []string{family, given} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " ") + ","
}

// FitHeadingSize shrinks the heading from 28pt in 1pt steps until it fits
// maxWidth, stopping at 12pt.
func FitHeadingSize(m layout.Measurer, text string, maxWidth float64) float64 {
	size := float64(headingMaxSize)
	for size > headingMinSize && m.Width(text, size) > maxWidth {
		size--
	}
	return size
}
