package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerInfo(t *testing.T) {
	svc, cfg := newTestService(t)

	hidden := filepath.Join(cfg.DataDir, ".cache")
	require.NoError(t, os.MkdirAll(hidden, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(hidden, "old.pdf"), []byte("%PDF"), 0o644))

	result, err := svc.ServerInfo(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "mdph-pdf", result.ServerName)
	assert.Equal(t, cfg.DataDir, result.DataDirectory)
	assert.Equal(t, cfg.OutputDir, result.OutputDirectory)
	assert.Len(t, result.AvailableTools, 5)
	assert.Contains(t, result.UsageGuidance, "50MB")

	names := map[string]bool{}
	for _, f := range result.DataDirectoryPDF {
		names[f.Name] = true
	}
	assert.Equal(t, map[string]bool{"cerfa.pdf": true, "projet-de-vie.pdf": true}, names)

	roles := map[string]bool{}
	for _, tpl := range result.Templates {
		roles[tpl.Role] = tpl.Exists
	}
	assert.True(t, roles["cerfa_pdf"])
	assert.True(t, roles["form_definition"])
	assert.True(t, roles["life_project_pdf"])
	assert.False(t, roles["brand_font"])
}

func TestServerInfo_Cache(t *testing.T) {
	svc, cfg := newTestService(t)

	first, err := svc.ServerInfo(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(cfg.DataDir, "new.pdf"), []byte("%PDF"), 0o644))
	second, err := svc.ServerInfo(context.Background())
	require.NoError(t, err)
	assert.Len(t, second.DataDirectoryPDF, len(first.DataDirectoryPDF))
}

func TestDirectoryCache(t *testing.T) {
	cache := NewDirectoryCache(time.Millisecond)
	cache.Set("/data", []FileInfo{{Name: "a.pdf"}})

	files, ok := cache.Get("/data")
	if ok {
		assert.Len(t, files, 1)
	}

	time.Sleep(5 * time.Millisecond)
	_, ok = cache.Get("/data")
	assert.False(t, ok)

	cache.Clear()
	assert.Empty(t, cache.entries)
}

func TestLazyDirectoryScanner_Limits(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(deep, 0o755))
	for _, p := range []string{
		filepath.Join(root, "1.pdf"),
		filepath.Join(root, "2.PDF"),
		filepath.Join(root, "notes.txt"),
		filepath.Join(root, "a", "3.pdf"),
		filepath.Join(deep, "4.pdf"),
	} {
		require.NoError(t, os.WriteFile(p, []byte("%PDF"), 0o644))
	}

	files, err := NewLazyDirectoryScanner(2, 0, 0).ScanDirectory(context.Background(), root)
	require.NoError(t, err)
	assert.Len(t, files, 3)

	files, err = NewLazyDirectoryScanner(0, 2, 0).ScanDirectory(context.Background(), root)
	require.NoError(t, err)
	assert.Len(t, files, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewLazyDirectoryScanner(0, 0, 0).ScanDirectory(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}
