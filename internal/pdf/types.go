package pdf

import (
	"encoding/json"

	"github.com/abdoul12363/mdph/internal/layout"
)

// FileInfo represents basic information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// WarningInfo is a degraded condition reported by a fill
type WarningInfo struct {
	Kind     string `json:"kind"`
	Question string `json:"question,omitempty"`
	Field    string `json:"field,omitempty"`
	Message  string `json:"message"`
}

// CerfaFillRequest represents a request to fill the MDPH request form
type CerfaFillRequest struct {
	Answers json.RawMessage `json:"answers"`
	// FormDefinition and PDF override the configured files.
	FormDefinition string `json:"form_definition,omitempty"`
	PDF            string `json:"pdf,omitempty"`
	Output         string `json:"output,omitempty"`
	KeepFields     bool   `json:"keep_fields,omitempty"`
}

// CerfaFillResult represents the outcome of filling the request form
type CerfaFillResult struct {
	OutputPath string        `json:"output_path"`
	Size       int64         `json:"size"`
	Applied    []string      `json:"applied"`
	Warnings   []WarningInfo `json:"warnings"`
}

// LifeProjectRequest represents a request to compose a life-project document.
// With a PaymentID the paid flow runs; with Text the text is drawn as one
// untitled block; otherwise the narrative answers are used.
type LifeProjectRequest struct {
	Answers    json.RawMessage `json:"answers,omitempty"`
	FamilyName string          `json:"family_name,omitempty"`
	GivenNames string          `json:"given_names,omitempty"`
	Text       string          `json:"text,omitempty"`
	PaymentID  string          `json:"payment_id,omitempty"`
	PDF        string          `json:"pdf,omitempty"`
	Output     string          `json:"output,omitempty"`
}

// RegionInfo reports the lines drawn into one region
type RegionInfo struct {
	Field     string   `json:"field"`
	PageIndex int      `json:"page_index"`
	Lines     []string `json:"lines"`
}

// LifeProjectResult represents a composed life-project document
type LifeProjectResult struct {
	OutputPath  string        `json:"output_path"`
	Size        int64         `json:"size"`
	Heading     string        `json:"heading"`
	HeadingSize float64       `json:"heading_size"`
	Regions     []RegionInfo  `json:"regions"`
	Dropped     int           `json:"dropped"`
	Offer       string        `json:"offer,omitempty"`
	Warnings    []WarningInfo `json:"warnings"`
}

// FormFieldsRequest represents a request to list the fields of a PDF form
type FormFieldsRequest struct {
	Path           string `json:"path"`
	FormDefinition string `json:"form_definition,omitempty"`
}

// FormFieldInfo describes one terminal AcroForm field
type FormFieldInfo struct {
	Name      string      `json:"name"`
	Kind      string      `json:"kind"`
	Multiline bool        `json:"multiline,omitempty"`
	Widgets   int         `json:"widgets"`
	PageIndex int         `json:"page_index"`
	Box       *layout.Box `json:"box,omitempty"`
	Value     string      `json:"value,omitempty"`
}

// MappingCoverage compares a form definition with the fields of a PDF
type MappingCoverage struct {
	Mapped []string `json:"mapped"`
	// Missing are mapped names absent from the PDF.
	Missing []string `json:"missing"`
	// Unmapped are PDF fields no question writes to.
	Unmapped []string      `json:"unmapped"`
	Warnings []WarningInfo `json:"warnings,omitempty"`
}

// FormFieldsResult represents the fields of a PDF form
type FormFieldsResult struct {
	Path     string           `json:"path"`
	Pages    int              `json:"pages"`
	Fields   []FormFieldInfo  `json:"fields"`
	Coverage *MappingCoverage `json:"coverage,omitempty"`
}

// ReadTextRequest represents a request to extract the text of a PDF
type ReadTextRequest struct {
	Path string `json:"path"`
}

// ReadTextResult represents the extracted text of a PDF
type ReadTextResult struct {
	Path    string `json:"path"`
	Pages   int    `json:"pages"`
	Size    int64  `json:"size"`
	Content string `json:"content"`
}

// ServerInfoResult represents server information and usage guidance
type ServerInfoResult struct {
	ServerName       string         `json:"server_name"`
	Version          string         `json:"version"`
	DataDirectory    string         `json:"data_directory"`
	OutputDirectory  string         `json:"output_directory"`
	MaxFileSize      int64          `json:"max_file_size"`
	Templates        []TemplateInfo `json:"templates"`
	AvailableTools   []ToolInfo     `json:"available_tools"`
	DataDirectoryPDF []FileInfo     `json:"data_directory_pdfs"`
	UsageGuidance    string         `json:"usage_guidance"`

	DefinitionCache DefinitionCacheStats `json:"definition_cache"`
}

// TemplateInfo reports a configured input file
type TemplateInfo struct {
	Role   string `json:"role"`
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}
