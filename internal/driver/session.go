package driver

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"mend/internal/source"
)

// DefaultSessionSize is the number of analyses a Session keeps.
const DefaultSessionSize = 64

// Session caches single-file analyses by path and content hash. The language
// server and `assist --batch` reuse one Session across requests.
type Session struct {
	opts  Options
	cache *lru.Cache

	mu     sync.Mutex
	hits   int
	misses int
}

type sessionEntry struct {
	hash     [32]byte
	analysis *Analysis
}

// NewSession creates a session holding at most size analyses.
func NewSession(size int, opts Options) (*Session, error) {
	if size <= 0 {
		size = DefaultSessionSize
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}
	return &Session{opts: opts, cache: c}, nil
}

// Analyze returns the analysis of path. With content == nil the file is read
// from disk; otherwise content is analyzed as an in-memory buffer. An entry is
// reused while the content hash is unchanged.
func (s *Session) Analyze(ctx context.Context, path string, content []byte) (*Analysis, error) {
	fs := source.NewFileSet()
	var id source.FileID
	if content == nil {
		loaded, err := fs.Load(path)
		if err != nil {
			return nil, err
		}
		id = loaded
	} else {
		id = fs.AddVirtual(path, content)
	}
	file := fs.Get(id)

	if v, ok := s.cache.Get(file.Path); ok {
		e := v.(sessionEntry)
		if e.hash == file.Hash && isVirtual(e.analysis.File) == isVirtual(file) {
			s.count(true)
			return e.analysis, nil
		}
	}
	s.count(false)
	a, err := AnalyzeSource(ctx, fs, id, s.opts)
	if err != nil {
		return nil, err
	}
	s.cache.Add(file.Path, sessionEntry{hash: file.Hash, analysis: a})
	return a, nil
}

// Forget drops the entry of path, e.g. when an editor closes the document.
func (s *Session) Forget(path string) {
	s.cache.Remove(filepath.ToSlash(filepath.Clean(path)))
}

// Stats returns cache hits and misses so far.
func (s *Session) Stats() (hits, misses int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits, s.misses
}

func (s *Session) Len() int { return s.cache.Len() }

func (s *Session) count(hit bool) {
	s.mu.Lock()
	if hit {
		s.hits++
	} else {
		s.misses++
	}
	s.mu.Unlock()
}

func isVirtual(f *source.File) bool { return f.Flags&source.FileVirtual != 0 }
