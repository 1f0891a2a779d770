package descriptions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetToolDescription(t *testing.T) {
	for _, name := range GetAllToolNames() {
		assert.NotEqual(t, "Tool description not available", GetToolDescription(name), name)
	}
	assert.Equal(t, "Tool description not available", GetToolDescription("pdf_assets_file"))
}

func TestGetAllToolNames(t *testing.T) {
	assert.Equal(t, []string{"cerfa_fill", "life_project_fill", "pdf_form_fields", "pdf_read_text", "server_info"}, GetAllToolNames())
}
