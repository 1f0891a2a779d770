package formdef

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	pdferrors "github.com/abdoul12363/mdph/internal/pdf/errors"
)

type document struct {
	Pages     []Page     `json:"pages"`
	Sections  []Section  `json:"sections"`
	Questions []Question `json:"questions"`
}

// Load reads a form definition from path.
//
// The file is either a complete definition, a single page ({"sections": ...}
// or {"questions": ...}) or a page index whose entries name a questionsFile
// in the same directory. Page files that cannot be read are skipped and
// reported as warnings.
func Load(path string) (*Definition, pdferrors.Warnings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read form definition: %w", err)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse decodes a form definition; page files are resolved against dir.
func Parse(data []byte, dir string) (*Definition, pdferrors.Warnings, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("failed to parse form definition: %w", err)
	}

	var warnings pdferrors.Warnings
	def := &Definition{}

	switch {
	case len(doc.Pages) > 0:
		pages := append([]Page(nil), doc.Pages...)
		sort.SliceStable(pages, func(i, j int) bool { return pages[i].Order < pages[j].Order })
		for _, p := range pages {
			if len(p.Sections) == 0 && p.QuestionsFile != "" {
				sections, err := loadPageFile(filepath.Join(dir, p.QuestionsFile))
				if err != nil {
					warnings.Add(pdferrors.WarningDefinition, "", "", "page %s skipped: %v", p.QuestionsFile, err)
					continue
				}
				p.Sections = sections
			}
			def.Pages = append(def.Pages, p)
		}
	case len(doc.Sections) > 0:
		def.Pages = []Page{{ID: "page", Sections: doc.Sections}}
	case len(doc.Questions) > 0:
		def.Pages = []Page{{ID: "page", Sections: []Section{{ID: "section", Questions: doc.Questions}}}}
	}

	warnings.Merge(def.Validate())
	return def, warnings, nil
}

func loadPageFile(path string) ([]Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Sections) > 0 {
		return doc.Sections, nil
	}
	if len(doc.Questions) > 0 {
		return []Section{{ID: filepath.Base(path), Questions: doc.Questions}}, nil
	}
	return nil, nil
}

// Validate reports mapping shapes that cannot be resolved for their question type.
func (d *Definition) Validate() pdferrors.Warnings {
	var warnings pdferrors.Warnings
	seen := map[string]bool{}
	for _, q := range d.Questions() {
		if q.ID == "" {
			warnings.Add(pdferrors.WarningDefinition, "", "", "question without id")
			continue
		}
		if seen[q.ID] {
			warnings.Add(pdferrors.WarningDefinition, q.ID, "", "duplicate question id")
		}
		seen[q.ID] = true

		switch q.Mapping.Kind {
		case DescriptorInvalid:
			warnings.Add(pdferrors.WarningInvalidMapping, q.ID, "", "mapping descriptor has an unsupported shape")
		case DescriptorDate:
			if q.Type != TypeDate {
				warnings.Add(pdferrors.WarningInvalidMapping, q.ID, "", "date triple on a %q question", q.Type)
			}
		case DescriptorField:
			if q.Type == TypeDate {
				warnings.Add(pdferrors.WarningInvalidMapping, q.ID, q.Mapping.Field, "date question mapped to a single field")
			}
		case DescriptorChoice:
			if q.Type == TypeText || q.Type == TypeTextarea {
				warnings.Add(pdferrors.WarningInvalidMapping, q.ID, "", "choice map on a %q question", q.Type)
			}
		}
	}
	return warnings
}
