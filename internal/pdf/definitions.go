package pdf

import (
	"container/list"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/abdoul12363/mdph/internal/formdef"
	pdferrors "github.com/abdoul12363/mdph/internal/pdf/errors"
)

const defaultDefinitionCacheSize = 8

// DefinitionCache keeps recently loaded form definitions. An entry is
// reused only while the file keeps the size and modification time it had
// when loaded.
type DefinitionCache struct {
	mutex    sync.Mutex
	capacity int
	order    *list.List // front is most recently used
	items    map[string]*list.Element
	hits     int64
	misses   int64
}

type definitionEntry struct {
	path     string
	modTime  time.Time
	size     int64
	def      *formdef.Definition
	warnings pdferrors.Warnings
}

// DefinitionCacheStats describes cache usage
type DefinitionCacheStats struct {
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Size     int   `json:"size"`
	Capacity int   `json:"capacity"`
}

// NewDefinitionCache creates a cache holding up to capacity definitions
func NewDefinitionCache(capacity int) *DefinitionCache {
	if capacity <= 0 {
		capacity = defaultDefinitionCacheSize
	}
	return &DefinitionCache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Load returns the definition at path, reading it only when it is not
// cached or changed on disk. The returned warnings are a copy.
func (c *DefinitionCache) Load(path string) (*formdef.Definition, pdferrors.Warnings, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read form definition: %w", err)
	}

	c.mutex.Lock()
	if el, ok := c.items[path]; ok {
		e := el.Value.(*definitionEntry)
		if e.modTime.Equal(info.ModTime()) && e.size == info.Size() {
			c.order.MoveToFront(el)
			c.hits++
			c.mutex.Unlock()
			return e.def, append(pdferrors.Warnings(nil), e.warnings...), nil
		}
		c.order.Remove(el)
		delete(c.items, path)
	}
	c.misses++
	c.mutex.Unlock()

	def, warnings, err := formdef.Load(path)
	if err != nil {
		return nil, nil, err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if el, ok := c.items[path]; ok {
		c.order.Remove(el)
	}
	c.items[path] = c.order.PushFront(&definitionEntry{
		path:     path,
		modTime:  info.ModTime(),
		size:     info.Size(),
		def:      def,
		warnings: warnings,
	})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*definitionEntry).path)
	}
	return def, append(pdferrors.Warnings(nil), warnings...), nil
}

// Clear drops every cached definition
func (c *DefinitionCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.order.Init()
	c.items = make(map[string]*list.Element)
}

// Stats returns cache statistics
func (c *DefinitionCache) Stats() DefinitionCacheStats {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return DefinitionCacheStats{
		Hits:     c.hits,
		Misses:   c.misses,
		Size:     c.order.Len(),
		Capacity: c.capacity,
	}
}
