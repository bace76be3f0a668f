package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// discardLogger returns a logger that drops everything.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestStore creates a Store in a fresh temporary directory.
func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "timetable_cache.json")
	return NewStore(path, WithLogger(discardLogger())), path
}

// TestStoreGetPut tests basic lookups.
func TestStoreGetPut(t *testing.T) {
	t.Parallel()

	t.Run("missing file starts empty", func(t *testing.T) {
		t.Parallel()

		store, path := newTestStore(t)
		_, ok, err := store.Get("https://example.com/a")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("expected miss on empty cache")
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("expected Get not to create the cache file")
		}
	})

	t.Run("put then get returns identical body", func(t *testing.T) {
		t.Parallel()

		store, _ := newTestStore(t)
		body := "<html><body>駅 <a href=\"/x?a=1&b=2\">x</a></body></html>"
		if err := store.Put("https://example.com/a", body); err != nil {
			t.Fatalf("put failed: %v", err)
		}

		got, ok, err := store.Get("https://example.com/a")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if !ok || got != body {
			t.Errorf("expected %q, got %q (ok=%v)", body, got, ok)
		}
	})

	t.Run("lookup is exact including query string", func(t *testing.T) {
		t.Parallel()

		store, _ := newTestStore(t)
		if err := store.Put("https://example.com/train?tx=1&sf=2", "body"); err != nil {
			t.Fatalf("put failed: %v", err)
		}

		for _, url := range []string{
			"https://example.com/train?tx=1",
			"https://example.com/train?sf=2&tx=1",
			"https://example.com/train?tx=1&sf=2&",
		} {
			_, ok, err := store.Get(url)
			if err != nil {
				t.Fatalf("get failed: %v", err)
			}
			if ok {
				t.Errorf("expected miss for %s", url)
			}
		}
	})

	t.Run("put overwrites existing entry", func(t *testing.T) {
		t.Parallel()

		store, _ := newTestStore(t)
		_ = store.Put("u", "old") //nolint:errcheck // checked below
		if err := store.Put("u", "new"); err != nil {
			t.Fatalf("put failed: %v", err)
		}
		got, _, _ := store.Get("u") //nolint:errcheck // checked above
		if got != "new" {
			t.Errorf("expected 'new', got %q", got)
		}
		if n, _ := store.Len(); n != 1 { //nolint:errcheck // loaded already
			t.Errorf("expected 1 entry, got %d", n)
		}
	})
}

// TestStorePersistence tests the on-disk format and write-through behavior.
func TestStorePersistence(t *testing.T) {
	t.Parallel()

	t.Run("put writes the whole mapping immediately", func(t *testing.T) {
		t.Parallel()

		store, path := newTestStore(t)
		if err := store.Put("a", "1"); err != nil {
			t.Fatalf("put failed: %v", err)
		}
		if err := store.Put("b", "2"); err != nil {
			t.Fatalf("put failed: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read cache file: %v", err)
		}
		var onDisk map[string]string
		if err := json.Unmarshal(data, &onDisk); err != nil {
			t.Fatalf("cache file is not a JSON object: %v", err)
		}
		if len(onDisk) != 2 || onDisk["a"] != "1" || onDisk["b"] != "2" {
			t.Errorf("unexpected cache file contents: %v", onDisk)
		}
	})

	t.Run("round trip across stores", func(t *testing.T) {
		t.Parallel()

		first, path := newTestStore(t)
		want := map[string]string{
			"https://ekitan.com/timetable/railway/line/1234":                "line page",
			"https://ekitan.com/timetable/railway/train?tx=100&sf=A":        "train page",
			"https://ekitan.com/timetable/railway/line-station/100-0?d=1&x": "<b>&amp;</b>",
		}
		for url, body := range want {
			if err := first.Put(url, body); err != nil {
				t.Fatalf("put failed: %v", err)
			}
		}

		second := NewStore(path, WithLogger(discardLogger()))
		n, err := second.Len()
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if n != len(want) {
			t.Fatalf("expected %d entries, got %d", len(want), n)
		}
		for url, body := range want {
			got, ok, err := second.Get(url)
			if err != nil || !ok || got != body {
				t.Errorf("%s: expected %q, got %q (ok=%v, err=%v)", url, body, got, ok, err)
			}
		}
	})

	t.Run("file is read once on first access", func(t *testing.T) {
		t.Parallel()

		store, path := newTestStore(t)
		if err := os.WriteFile(path, []byte(`{"u":"from disk"}`), 0600); err != nil {
			t.Fatalf("failed to seed cache: %v", err)
		}

		got, ok, err := store.Get("u")
		if err != nil || !ok || got != "from disk" {
			t.Fatalf("expected seeded entry, got %q (ok=%v, err=%v)", got, ok, err)
		}

		// Later changes to the file are not picked up.
		if err := os.WriteFile(path, []byte(`{"u":"changed"}`), 0600); err != nil {
			t.Fatalf("failed to rewrite cache: %v", err)
		}
		got, _, _ = store.Get("u") //nolint:errcheck // loaded already
		if got != "from disk" {
			t.Errorf("expected in-memory value, got %q", got)
		}
	})

	t.Run("reads a cache written by another tool", func(t *testing.T) {
		t.Parallel()

		store, path := newTestStore(t)
		// ASCII-escaped JSON as produced by other encoders.
		if err := os.WriteFile(path, []byte(`{"u": "\u99c5 \u003ca\u003e"}`), 0600); err != nil {
			t.Fatalf("failed to seed cache: %v", err)
		}
		got, ok, err := store.Get("u")
		if err != nil || !ok {
			t.Fatalf("expected hit, ok=%v err=%v", ok, err)
		}
		if got != "駅 <a>" {
			t.Errorf("expected decoded body, got %q", got)
		}
	})
}

// TestStoreFlush tests the final flush.
func TestStoreFlush(t *testing.T) {
	t.Parallel()

	t.Run("unused store does not create a file", func(t *testing.T) {
		t.Parallel()

		store, path := newTestStore(t)
		if err := store.Flush(); err != nil {
			t.Fatalf("flush failed: %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("expected no cache file for an unused store")
		}
	})

	t.Run("loaded store rewrites the file", func(t *testing.T) {
		t.Parallel()

		store, path := newTestStore(t)
		if _, _, err := store.Get("u"); err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if err := store.Flush(); err != nil {
			t.Fatalf("flush failed: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected cache file after flush: %v", err)
		}
		if strings.TrimSpace(string(data)) != "{}" {
			t.Errorf("expected empty object, got %q", data)
		}
	})
}

// TestStoreErrors tests that file problems surface as IOError.
func TestStoreErrors(t *testing.T) {
	t.Parallel()

	t.Run("corrupt file returns decode error", func(t *testing.T) {
		t.Parallel()

		store, path := newTestStore(t)
		if err := os.WriteFile(path, []byte(`{not json`), 0600); err != nil {
			t.Fatalf("failed to seed cache: %v", err)
		}

		_, _, err := store.Get("u")
		if !errors.Is(err, ErrCacheIO) {
			t.Fatalf("expected ErrCacheIO, got %v", err)
		}
		var ioErr *IOError
		if !errors.As(err, &ioErr) || ioErr.Op != "decode" {
			t.Errorf("expected decode IOError, got %#v", err)
		}
	})

	t.Run("unwritable location returns write error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "missing", "dir", "cache.json")
		store := NewStore(path, WithLogger(discardLogger()))

		err := store.Put("u", "body")
		var ioErr *IOError
		if !errors.As(err, &ioErr) || ioErr.Op != "write" {
			t.Fatalf("expected write IOError, got %v", err)
		}
		if ioErr.Path != path {
			t.Errorf("expected path %q, got %q", path, ioErr.Path)
		}
	})
}

// TestStoreTrace tests the hit/miss log lines.
func TestStoreTrace(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	store := NewStore(filepath.Join(t.TempDir(), "c.json"), WithLogger(logger))

	_, _, _ = store.Get("https://example.com/a") //nolint:errcheck // trace only
	_ = store.Put("https://example.com/a", "x")  //nolint:errcheck // trace only
	_, _, _ = store.Get("https://example.com/a") //nolint:errcheck // trace only

	out := buf.String()
	if !strings.Contains(out, "cache miss") {
		t.Errorf("expected a cache miss line, got %q", out)
	}
	if !strings.Contains(out, "cache hit") {
		t.Errorf("expected a cache hit line, got %q", out)
	}
}
