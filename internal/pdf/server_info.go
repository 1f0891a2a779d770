package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/abdoul12363/mdph/internal/descriptions"
)

// DirectoryCache provides TTL-based caching for directory contents
type DirectoryCache struct {
	entries map[string]*CacheEntry
	ttl     time.Duration
	mu      sync.RWMutex
}

// CacheEntry represents a cached directory scan result
type CacheEntry struct {
	files      []FileInfo
	lastUpdate time.Time
}

// NewDirectoryCache creates a new directory cache with specified TTL
func NewDirectoryCache(ttl time.Duration) *DirectoryCache {
	return &DirectoryCache{
		entries: make(map[string]*CacheEntry),
		ttl:     ttl,
	}
}

// Get retrieves cached directory contents if still valid
func (c *DirectoryCache) Get(path string) ([]FileInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[path]
	if !exists || time.Since(entry.lastUpdate) > c.ttl {
		return nil, false
	}
	return entry.files, true
}

// Set stores directory contents in cache
func (c *DirectoryCache) Set(path string, files []FileInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[path] = &CacheEntry{files: files, lastUpdate: time.Now()}
}

// Clear removes expired entries from cache
func (c *DirectoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for path, entry := range c.entries {
		if now.Sub(entry.lastUpdate) > c.ttl {
			delete(c.entries, path)
		}
	}
}

// LazyDirectoryScanner lists PDF files with depth, count and time limits
type LazyDirectoryScanner struct {
	maxDepth  int
	fileLimit int
	timeLimit time.Duration
}

// NewLazyDirectoryScanner creates a new lazy directory scanner
func NewLazyDirectoryScanner(maxDepth, fileLimit int, timeLimit time.Duration) *LazyDirectoryScanner {
	return &LazyDirectoryScanner{
		maxDepth:  maxDepth,
		fileLimit: fileLimit,
		timeLimit: timeLimit,
	}
}

// ScanDirectory walks root and returns the PDF files found. Hidden entries
// and symlinks are skipped.
func (s *LazyDirectoryScanner) ScanDirectory(ctx context.Context, root string) ([]FileInfo, error) {
	start := time.Now()
	var files []FileInfo

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			return nil
		}
		if path == root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || d.Type()&os.ModeSymlink != 0 {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			rel, _ := filepath.Rel(root, path)
			if s.maxDepth > 0 && strings.Count(rel, string(filepath.Separator))+1 >= s.maxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".pdf") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, FileInfo{
			Name:         d.Name(),
			Path:         path,
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})

		if s.fileLimit > 0 && len(files) >= s.fileLimit {
			return filepath.SkipAll
		}
		if s.timeLimit > 0 && time.Since(start) > s.timeLimit {
			return filepath.SkipAll
		}
		return nil
	})
	return files, err
}

// ServerInfo assembles the server_info report
type ServerInfo struct {
	cache   *DirectoryCache
	scanner *LazyDirectoryScanner
	service *Service
}

// NewServerInfo creates a server info handler for service
func NewServerInfo(service *Service) *ServerInfo {
	return &ServerInfo{
		cache:   NewDirectoryCache(5 * time.Minute),
		scanner: NewLazyDirectoryScanner(5, 100, 3*time.Second),
		service: service,
	}
}

// GetServerInfo reports configuration, templates and tools
func (p *ServerInfo) GetServerInfo(ctx context.Context) (*ServerInfoResult, error) {
	cfg := p.service.cfg

	files, ok := p.cache.Get(cfg.DataDir)
	if !ok {
		scanCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		var err error
		files, err = p.scanner.ScanDirectory(scanCtx, cfg.DataDir)
		if err != nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.cache.Set(cfg.DataDir, files)
	}
	if files == nil {
		files = []FileInfo{}
	}

	var templates []TemplateInfo
	for _, t := range []struct{ role, path string }{
		{"cerfa_pdf", cfg.CerfaPDF},
		{"form_definition", cfg.FormDef},
		{"life_project_pdf", cfg.LifeProjectPDF},
		{"name_broadcast", cfg.NameBroadcast},
	} {
		if t.path == "" {
			continue
		}
		templates = append(templates, templateInfo(t.role, cfg.Resolve(t.path)))
	}
	for _, f := range cfg.BrandFontPaths() {
		templates = append(templates, templateInfo("brand_font", f))
	}

	return &ServerInfoResult{
		ServerName:       cfg.ServerName,
		Version:          cfg.Version,
		DataDirectory:    cfg.DataDir,
		OutputDirectory:  cfg.OutputDir,
		MaxFileSize:      cfg.MaxFileSize,
		Templates:        templates,
		AvailableTools:   p.getAvailableTools(),
		DataDirectoryPDF: files,
		UsageGuidance:    p.getUsageGuidance(),
		DefinitionCache:  p.service.definitions.Stats(),
	}, nil
}

func templateInfo(role, path string) TemplateInfo {
	_, err := os.Stat(path)
	return TemplateInfo{Role: role, Path: path, Exists: err == nil}
}

// getAvailableTools returns the list of available tools
func (p *ServerInfo) getAvailableTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "cerfa_fill",
			Description: descriptions.GetToolDescription("cerfa_fill"),
			Usage:       "Fill the MDPH request form from wizard answers; returns the output path and warnings.",
			Parameters: "answers (required): JSON object of answers, form_definition (optional), pdf (optional), " +
				"output (optional), keep_fields (optional)",
		},
		{
			Name:        "life_project_fill",
			Description: descriptions.GetToolDescription("life_project_fill"),
			Usage:       "Compose the life-project document from answers, from an explicit text, or through the paid flow.",
			Parameters: "answers (optional): JSON object, family_name/given_names (optional), text (optional), " +
				"payment_id (optional), pdf (optional), output (optional)",
		},
		{
			Name:        "pdf_form_fields",
			Description: descriptions.GetToolDescription("pdf_form_fields"),
			Usage:       "List AcroForm fields with kind, page and rectangle; add a form definition for mapping coverage.",
			Parameters:  "path (required): PDF path relative to the data directory, form_definition (optional)",
		},
		{
			Name:        "pdf_read_text",
			Description: descriptions.GetToolDescription("pdf_read_text"),
			Usage:       "Extract plain text to proof-read a template or a generated document.",
			Parameters:  "path (required): PDF path relative to the data directory, or an output path",
		},
		{
			Name:        "server_info",
			Description: descriptions.GetToolDescription("server_info"),
			Usage:       "Show configuration, templates and this tool list.",
			Parameters:  "none",
		},
	}
}

func (p *ServerInfo) getUsageGuidance() string {
	maxFileSizeMB := p.service.cfg.MaxFileSize / (1024 * 1024)

	return fmt.Sprintf(`MDPH PDF Server Usage Guide:

1. CHECK THE SETUP:
   - Use 'server_info' to see the data and output directories and whether each template exists

2. PREPARE MAPPINGS:
   - Use 'pdf_form_fields' with 'form_definition' to list mapped names missing from the PDF

3. GENERATE DOCUMENTS:
   - Use 'cerfa_fill' with the wizard answers for the request form
   - Use 'life_project_fill' for the life-project document
   - Both tools write into the output directory and return the file path

4. PROOF-READ:
   - Use 'pdf_read_text' on the returned output path

IMPORTANT NOTES:
- Paths are relative to the data directory; absolute paths must stay inside the data or output directory
- The server can handle files up to %dMB
- Warnings list every answer that could not be written; they never abort a fill`, maxFileSizeMB)
}
