package engine

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// PathCache is component C1: a canonical path value plus a memoised stat,
// grounded on original_source/buildtool.py's Path.try_stat()/@cache pattern,
// re-modeled per spec.md §9's "do not use global mutable singletons" note as
// a value owned by a BuildContext rather than a module-level dict.
type PathCache struct {
	mu    sync.Mutex
	stats map[string]statResult
}

type statResult struct {
	info os.FileInfo
	err  error
}

func NewPathCache() *PathCache {
	return &PathCache{stats: make(map[string]statResult, 1024)}
}

// Canonicalize normalises a path the way original_source/buildtool.py's Path
// constructor does (os.path.normpath over a joined path), without resolving
// symlinks — spec.md never requires symlink resolution, only a stable string key.
func Canonicalize(path string) string {
	return filepath.Clean(path)
}

func (c *PathCache) stat(path string) statResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.stats[path]; ok {
		return r
	}
	info, err := os.Stat(path)
	r := statResult{info, err}
	c.stats[path] = r
	return r
}

// Mtime returns the file's modification time, or the zero time if it does not exist.
func (c *PathCache) Mtime(path string) time.Time {
	r := c.stat(path)
	if r.err != nil || r.info == nil {
		return time.Time{}
	}
	return r.info.ModTime()
}

// Exists reports whether path resolves to a stat-able file or directory.
func (c *PathCache) Exists(path string) bool {
	r := c.stat(path)
	return r.err == nil
}

// IsDir reports whether path exists and is a directory.
func (c *PathCache) IsDir(path string) bool {
	r := c.stat(path)
	return r.err == nil && r.info.IsDir()
}

// Invalidate drops a cached stat, used after this process itself wrote path
// (e.g. a freshly compiled .o/.pcm) so a subsequent Mtime call observes it.
func (c *PathCache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.stats, path)
	c.mu.Unlock()
}
