package pdf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDefinition(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefinitionCache_Reuse(t *testing.T) {
	dir := t.TempDir()
	path := writeDefinition(t, dir, "form.json", formDefinition)
	cache := NewDefinitionCache(2)

	first, _, err := cache.Load(path)
	require.NoError(t, err)
	second, _, err := cache.Load(path)
	require.NoError(t, err)

	assert.Same(t, first, second)
	stats := cache.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)
}

func TestDefinitionCache_ReloadsChangedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeDefinition(t, dir, "form.json", formDefinition)
	cache := NewDefinitionCache(2)

	first, _, err := cache.Load(path)
	require.NoError(t, err)

	writeDefinition(t, dir, "form.json", `{"questions":[{"id":"q_seule","type":"text","pdf_mapping":"Seule"}]}`)
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	second, _, err := cache.Load(path)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, []string{"Seule"}, second.MappedFields())
}

func TestDefinitionCache_Evicts(t *testing.T) {
	dir := t.TempDir()
	a := writeDefinition(t, dir, "a.json", formDefinition)
	b := writeDefinition(t, dir, "b.json", formDefinition)
	c := writeDefinition(t, dir, "c.json", formDefinition)
	cache := NewDefinitionCache(2)

	for _, p := range []string{a, b, c} {
		_, _, err := cache.Load(p)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, cache.Stats().Size)

	// a was evicted, so loading it again is a miss
	_, _, err := cache.Load(a)
	require.NoError(t, err)
	assert.Equal(t, int64(4), cache.Stats().Misses)

	cache.Clear()
	assert.Equal(t, 0, cache.Stats().Size)
}

func TestDefinitionCache_Missing(t *testing.T) {
	_, _, err := NewDefinitionCache(0).Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
