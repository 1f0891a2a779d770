package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdoul12363/mdph/internal/config"
	"github.com/abdoul12363/mdph/internal/descriptions"
	"github.com/abdoul12363/mdph/internal/pdf"
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
	}

	s.registerTools()

	return s, nil
}

type toolHandler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	cerfaFillTool := mcp.NewTool(
		"cerfa_fill",
		mcp.WithDescription(descriptions.GetToolDescription("cerfa_fill")),
		mcp.WithObject("answers",
			mcp.Required(),
			mcp.Description("Wizard answers keyed by question id"),
		),
		mcp.WithString("form_definition",
			mcp.Description("Form definition path relative to the data directory (uses configured file if empty)"),
		),
		mcp.WithString("pdf",
			mcp.Description("Request form template relative to the data directory (uses configured file if empty)"),
		),
		mcp.WithString("output",
			mcp.Description("Output file name inside the output directory (generated if empty)"),
		),
		mcp.WithBoolean("keep_fields",
			mcp.Description("Leave the form interactive instead of flattening it"),
		),
	)
	s.mcpServer.AddTool(cerfaFillTool, s.logged("cerfa_fill", s.handleCerfaFill))

	lifeProjectTool := mcp.NewTool(
		"life_project_fill",
		mcp.WithDescription(descriptions.GetToolDescription("life_project_fill")),
		mcp.WithObject("answers",
			mcp.Description("Wizard answers keyed by question id"),
		),
		mcp.WithString("family_name", mcp.Description("Family name drawn in the heading")),
		mcp.WithString("given_names", mcp.Description("Given names drawn in the heading")),
		mcp.WithString("text", mcp.Description("Narrative drawn as a single block instead of the answers")),
		mcp.WithString("payment_id", mcp.Description("Payment id unlocking the paid document")),
		mcp.WithString("pdf",
			mcp.Description("Life-project template relative to the data directory (uses configured file if empty)"),
		),
		mcp.WithString("output",
			mcp.Description("Output file name inside the output directory (generated if empty)"),
		),
	)
	s.mcpServer.AddTool(lifeProjectTool, s.logged("life_project_fill", s.handleLifeProjectFill))

	formFieldsTool := mcp.NewTool(
		"pdf_form_fields",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_form_fields")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("PDF path relative to the data directory"),
		),
		mcp.WithString("form_definition",
			mcp.Description("Form definition to check the mappings against"),
		),
	)
	s.mcpServer.AddTool(formFieldsTool, s.logged("pdf_form_fields", s.handleFormFields))

	readTextTool := mcp.NewTool(
		"pdf_read_text",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_read_text")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("PDF path relative to the data directory, or an output path"),
		),
	)
	s.mcpServer.AddTool(readTextTool, s.logged("pdf_read_text", s.handleReadText))

	serverInfoTool := mcp.NewTool(
		"server_info",
		mcp.WithDescription(descriptions.GetToolDescription("server_info")),
	)
	s.mcpServer.AddTool(serverInfoTool, s.logged("server_info", s.handleServerInfo))
}

// logged tags each call with a request id in debug logs
func (s *Server) logged(name string, next toolHandler) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !s.config.IsDebug() {
			return next(ctx, request)
		}

		id := uuid.NewString()
		start := time.Now()
		log.Printf("[%s] %s started", id, name)
		result, err := next(ctx, request)
		status := "ok"
		if err != nil || (result != nil && result.IsError) {
			status = "error"
		}
		log.Printf("[%s] %s finished in %s: %s", id, name, time.Since(start).Round(time.Millisecond), status)
		return result, err
	}
}

// Handler functions
func (s *Server) handleCerfaFill(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	answers, err := jsonArgument(args, "answers", true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.CerfaFillRequest{
		Answers:        answers,
		FormDefinition: stringArgument(args, "form_definition"),
		PDF:            stringArgument(args, "pdf"),
		Output:         stringArgument(args, "output"),
		KeepFields:     boolArgument(args, "keep_fields"),
	}
	result, err := s.pdfService.FillCerfa(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatCerfaFillResult(result)), nil
}

func (s *Server) handleLifeProjectFill(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	answers, err := jsonArgument(args, "answers", false)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.LifeProjectRequest{
		Answers:    answers,
		FamilyName: stringArgument(args, "family_name"),
		GivenNames: stringArgument(args, "given_names"),
		Text:       stringArgument(args, "text"),
		PaymentID:  stringArgument(args, "payment_id"),
		PDF:        stringArgument(args, "pdf"),
		Output:     stringArgument(args, "output"),
	}
	result, err := s.pdfService.FillLifeProject(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatLifeProjectResult(result)), nil
}

func (s *Server) handleFormFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.FormFieldsRequest{
		Path:           path,
		FormDefinition: stringArgument(request.GetArguments(), "form_definition"),
	}
	result, err := s.pdfService.FormFields(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatFormFieldsResult(result)), nil
}

func (s *Server) handleReadText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ExtractText(pdf.ReadTextRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Successfully read PDF: %s\n", result.Path)
	responseText += fmt.Sprintf("Pages: %d\n", result.Pages)
	responseText += fmt.Sprintf("Size: %d bytes\n", result.Size)
	if strings.TrimSpace(strings.ReplaceAll(result.Content, strings.TrimSpace(pdf.PageBreak), "")) == "" {
		responseText += "\n⚠️  WARNING: No text could be extracted from this PDF.\n"
	}
	responseText += "\nContent:\n"
	responseText += result.Content

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.pdfService.ServerInfo(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatServerInfoResult(result)), nil
}

// Argument helpers

// jsonArgument returns an object argument as raw JSON. A string holding
// JSON is accepted too.
func jsonArgument(args map[string]interface{}, key string, required bool) (json.RawMessage, error) {
	v, ok := args[key]
	if !ok || v == nil {
		if required {
			return nil, fmt.Errorf("required argument %q not found", key)
		}
		return nil, nil
	}
	if str, ok := v.(string); ok {
		if !json.Valid([]byte(str)) {
			return nil, fmt.Errorf("argument %q is not valid JSON", key)
		}
		return json.RawMessage(str), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("argument %q: %w", key, err)
	}
	return data, nil
}

func stringArgument(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func boolArgument(args map[string]interface{}, key string) bool {
	switch v := args[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

// Formatting methods

func formatWarnings(warnings []pdf.WarningInfo) string {
	if len(warnings) == 0 {
		return ""
	}
	text := fmt.Sprintf("\n⚠️  Warnings (%d):\n", len(warnings))
	for _, w := range warnings {
		text += fmt.Sprintf("  • [%s]", w.Kind)
		if w.Question != "" {
			text += fmt.Sprintf(" question=%s", w.Question)
		}
		if w.Field != "" {
			text += fmt.Sprintf(" field=%q", w.Field)
		}
		text += fmt.Sprintf(" %s\n", w.Message)
	}
	return text
}

func (s *Server) formatCerfaFillResult(result *pdf.CerfaFillResult) string {
	text := fmt.Sprintf("Filled request form: %s\n", result.OutputPath)
	text += fmt.Sprintf("Size: %d bytes\n", result.Size)
	text += fmt.Sprintf("Fields written: %d\n", len(result.Applied))
	for _, a := range result.Applied {
		text += fmt.Sprintf("  • %s\n", a)
	}
	text += formatWarnings(result.Warnings)
	return text
}

func (s *Server) formatLifeProjectResult(result *pdf.LifeProjectResult) string {
	text := fmt.Sprintf("Composed life-project document: %s\n", result.OutputPath)
	text += fmt.Sprintf("Size: %d bytes\n", result.Size)
	if result.Offer != "" {
		text += fmt.Sprintf("Offer: %s\n", result.Offer)
	}
	if result.Heading != "" {
		text += fmt.Sprintf("Heading: %s (%gpt)\n", result.Heading, result.HeadingSize)
	}
	for _, r := range result.Regions {
		text += fmt.Sprintf("Region %s (page %d): %d lines\n", r.Field, r.PageIndex+1, len(r.Lines))
	}
	if result.Dropped > 0 {
		text += fmt.Sprintf("Dropped lines: %d\n", result.Dropped)
	}
	text += formatWarnings(result.Warnings)
	return text
}

func (s *Server) formatFormFieldsResult(result *pdf.FormFieldsResult) string {
	text := fmt.Sprintf("Form fields of %s (%d pages, %d fields)\n\n", result.Path, result.Pages, len(result.Fields))
	for i, f := range result.Fields {
		text += fmt.Sprintf("%d. %s [%s]", i+1, f.Name, f.Kind)
		if f.Box != nil {
			text += fmt.Sprintf(" page %d at (%g, %g) %gx%g", f.PageIndex+1, f.Box.X, f.Box.Y, f.Box.Width, f.Box.Height)
		}
		if f.Value != "" {
			text += fmt.Sprintf(" value=%q", f.Value)
		}
		text += "\n"
	}

	if c := result.Coverage; c != nil {
		text += fmt.Sprintf("\nMapping coverage: %d mapped, %d missing, %d unmapped\n", len(c.Mapped), len(c.Missing), len(c.Unmapped))
		if len(c.Missing) > 0 {
			text += "Missing from the PDF:\n"
			for _, name := range c.Missing {
				text += fmt.Sprintf("  • %s\n", name)
			}
		}
		text += formatWarnings(c.Warnings)
	}
	return text
}

func (s *Server) formatServerInfoResult(result *pdf.ServerInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📁 Data Directory: %s\n", result.DataDirectory)
	text += fmt.Sprintf("📁 Output Directory: %s\n", result.OutputDirectory)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n", result.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("🗂️  Form definitions cached: %d (%d hits, %d misses)\n\n",
		result.DefinitionCache.Size, result.DefinitionCache.Hits, result.DefinitionCache.Misses)

	text += "📄 Templates:\n"
	for _, t := range result.Templates {
		status := "ok"
		if !t.Exists {
			status = "missing"
		}
		text += fmt.Sprintf("   %s: %s (%s)\n", t.Role, t.Path, status)
	}
	text += "\n"

	if len(result.DataDirectoryPDF) > 0 {
		text += fmt.Sprintf("📂 Data Directory Contents (%d PDF files found):\n", len(result.DataDirectoryPDF))
		for i, file := range result.DataDirectoryPDF {
			if i >= 10 {
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DataDirectoryPDF)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "📂 Data Directory Contents: No PDF files found\n\n"
	}

	text += "🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	text += "\n" + result.UsageGuidance

	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting MDPH PDF server in stdio mode")
		log.Printf("Data directory: %s", s.config.DataDir)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves the SSE transport until ctx is done
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MDPH PDF server on %s (SSE)", addr)
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve SSE: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := sse.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down SSE server: %w", err)
		}
		return ctx.Err()
	}
}
