package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	CerfaFillDescription = `Fill the MDPH request form (CERFA 15692) from wizard answers and return a flattened PDF.

**When to use:** A user finished the questionnaire and needs the official request form completed with their answers.

**Why it's useful:** Applies every question's PDF mapping (single field, day/month/year date triple, or choice checkboxes), copies the applicant's identity to the repeated name fields, and reports every field it could not fill instead of failing.

**Examples:**
• Fill from answers: answers = {"q_nom": "Dupont", "q_date_naissance": "1980-03-05", "q_situation": "celibataire"}
• Use a staged template: pdf = "templates/cerfa-2025.pdf", form_definition = "data/form_pages.json"
• Inspect the result: keep_fields = true leaves the form interactive for proof-reading

**Common workflows:**
1. Submission: cerfa_fill → pdf_read_text on the output → send to the applicant
2. Template upgrade: pdf_form_fields with form_definition → fix mapping → cerfa_fill

**Best practices:** Read the warnings in the response; a missing field or unparseable date never aborts the fill.`

	LifeProjectFillDescription = `Compose the "projet de vie" document: the applicant's name as a heading and the narrative text laid out over the template's text regions.

**When to use:** Producing the free life-project document from the four narrative answers, or the paid version from a rewritten text.

**Why it's useful:** Wraps text to the region width, continues on the overflow region when the first one is full, and reports exactly which lines landed where and how many were dropped.

**Examples:**
• Free document: answers = {"nom": "Dupont", "prenom": "Marie", "impact_quotidien": "...", "projet_vie": "..."}
• Explicit text: family_name = "Dupont", given_names = "Marie", text = "Je souhaite reprendre une formation..."
• Paid document: payment_id = "tr_WDqYK6vllg" with the answers

**Common workflows:**
1. Free flow: life_project_fill with answers → deliver PDF
2. Paid flow: payment confirmed → life_project_fill with payment_id → deliver PDF

**Best practices:** Check dropped in the response; a non-zero value means the text is longer than both regions.`

	PDFFormFieldsDescription = `List every AcroForm field of a PDF with its kind, page and rectangle.

**When to use:** Writing or checking a form definition's PDF mappings against a template.

**Why it's useful:** Shows fully qualified field names, including nested /Kids names, and with a form definition reports which mapped names do not exist in the PDF and which PDF fields are never mapped.

**Examples:**
• Discover fields: path = "Formulaire-de-demande-a-la-MDPH-Document-cerfa_15692-012-combine.pdf"
• Check coverage: path = "...", form_definition = "data/form_pages.json"

**Best practices:** Run after every template update; missing names become missing_field warnings at fill time.`

	PDFReadTextDescription = `Extract the plain text of a PDF page by page.

**When to use:** Proof-reading a generated form or life-project document, or inspecting a template.

**Why it's useful:** Confirms that drawn and flattened text is present in the page content without opening a viewer.

**Examples:**
• Check a generated file: path = "output/life-project-6f1c....pdf"

**Best practices:** Output paths returned by the fill tools can be passed as is.`

	ServerInfoDescription = `Get server configuration, available tools and the PDF templates present in the data directory.

**When to use:** First call in a session, or when a fill tool reports a missing template.

**Why it's useful:** Shows the data and output directories, the configured templates and whether each one exists.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"cerfa_fill":        CerfaFillDescription,
	"life_project_fill": LifeProjectFillDescription,
	"pdf_form_fields":   PDFFormFieldsDescription,
	"pdf_read_text":     PDFReadTextDescription,
	"server_info":       ServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the sorted names of all tools
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
