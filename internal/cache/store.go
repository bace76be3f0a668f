package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Store is a URL to response body mapping persisted to a JSON file.
//
// The file is loaded once, on the first call to any method, and rewritten in
// full after every Put. A Store is not safe for concurrent use; the crawl is
// sequential and owns the only instance.
type Store struct {
	// path is the cache file location.
	path string

	// entries holds the mapping once loaded.
	entries map[string]string

	// loaded is set after the first successful load.
	loaded bool

	// logger receives the hit/miss trace.
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for the hit/miss trace.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a Store backed by the file at path.
// Nothing is read until the Store is first used.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Path returns the cache file location.
func (s *Store) Path() string {
	return s.path
}

// Get returns the cached body for url. The lookup is an exact string match
// on the full URL, query string included.
func (s *Store) Get(url string) (string, bool, error) {
	if err := s.load(); err != nil {
		return "", false, err
	}

	body, ok := s.entries[url]
	if ok {
		s.logger.Info("cache hit", "url", url)
	} else {
		s.logger.Info("cache miss", "url", url)
	}
	return body, ok, nil
}

// Put stores body for url and immediately rewrites the cache file.
func (s *Store) Put(url, body string) error {
	if err := s.load(); err != nil {
		return err
	}

	s.entries[url] = body
	return s.write()
}

// Len returns the number of cached URLs.
func (s *Store) Len() (int, error) {
	if err := s.load(); err != nil {
		return 0, err
	}
	return len(s.entries), nil
}

// Flush rewrites the cache file with the in-memory mapping.
// It does nothing if the Store was never used.
func (s *Store) Flush() error {
	if !s.loaded {
		return nil
	}
	return s.write()
}

// load reads the cache file on first use. A missing file starts an empty cache.
func (s *Store) load() error {
	if s.loaded {
		return nil
	}

	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.entries = make(map[string]string)
		s.loaded = true
		s.logger.Debug("cache file not found, starting empty", "path", s.path)
		return nil
	case err != nil:
		return &IOError{Op: "read", Path: s.path, Err: err}
	}

	entries := make(map[string]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		return &IOError{Op: "decode", Path: s.path, Err: err}
	}

	s.entries = entries
	s.loaded = true
	s.logger.Debug("cache loaded", "path", s.path, "entries", len(entries))
	return nil
}

// write serializes the whole mapping to a temporary file next to the cache
// and renames it into place, so readers never observe a half-written file.
func (s *Store) write() error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(s.entries); err != nil {
		return &IOError{Op: "encode", Path: s.path, Err: err}
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return &IOError{Op: "write", Path: s.path, Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()        //nolint:errcheck // already failing
		_ = os.Remove(tmpName) //nolint:errcheck // best effort cleanup
		return &IOError{Op: "write", Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck // best effort cleanup
		return &IOError{Op: "write", Path: s.path, Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck // best effort cleanup
		return &IOError{Op: "write", Path: s.path, Err: err}
	}

	return nil
}
