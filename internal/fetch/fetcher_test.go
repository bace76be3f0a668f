package fetch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/nao1215/linetable/internal/cache"
)

// discardLogger returns a logger that drops everything.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingRecorder counts Recorder calls.
type countingRecorder struct {
	hits, downloads, errors, bytes int
}

func (r *countingRecorder) CacheHit()         { r.hits++ }
func (r *countingRecorder) Download(size int) { r.downloads++; r.bytes += size }
func (r *countingRecorder) FetchError()       { r.errors++ }

// newTestServer serves body for every request and counts requests.
func newTestServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body)) //nolint:errcheck // test server
	}))
	t.Cleanup(server.Close)

	return server, &requests
}

// newTestStore creates a cache store in a temporary directory.
func newTestStore(t *testing.T) (*cache.Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "timetable_cache.json")
	return cache.NewStore(path, cache.WithLogger(discardLogger())), path
}

// TestFetch tests cache-first fetching.
func TestFetch(t *testing.T) {
	t.Parallel()

	t.Run("second fetch is served from cache", func(t *testing.T) {
		t.Parallel()

		server, requests := newTestServer(t, http.StatusOK, "<html>路線</html>")
		store, _ := newTestStore(t)
		rec := &countingRecorder{}
		f := New(store, WithLogger(discardLogger()), WithRecorder(rec))

		first, err := f.Fetch(context.Background(), server.URL+"/line/1")
		if err != nil {
			t.Fatalf("first fetch failed: %v", err)
		}
		second, err := f.Fetch(context.Background(), server.URL+"/line/1")
		if err != nil {
			t.Fatalf("second fetch failed: %v", err)
		}

		if first != second || first != "<html>路線</html>" {
			t.Errorf("expected identical bodies, got %q and %q", first, second)
		}
		if requests.Load() != 1 {
			t.Errorf("expected 1 network request, got %d", requests.Load())
		}
		if rec.hits != 1 || rec.downloads != 1 || rec.errors != 0 {
			t.Errorf("unexpected counters %+v", rec)
		}
		if rec.bytes != len(first) {
			t.Errorf("expected %d bytes recorded, got %d", len(first), rec.bytes)
		}
	})

	t.Run("cache survives a new store on the same file", func(t *testing.T) {
		t.Parallel()

		server, requests := newTestServer(t, http.StatusOK, "persisted")
		store, path := newTestStore(t)
		url := server.URL + "/train?tx=100&sf=A"

		if _, err := New(store, WithLogger(discardLogger())).Fetch(context.Background(), url); err != nil {
			t.Fatalf("first fetch failed: %v", err)
		}

		restarted := cache.NewStore(path, cache.WithLogger(discardLogger()))
		body, err := New(restarted, WithLogger(discardLogger())).Fetch(context.Background(), url)
		if err != nil {
			t.Fatalf("fetch after restart failed: %v", err)
		}
		if body != "persisted" {
			t.Errorf("expected cached body, got %q", body)
		}
		if requests.Load() != 1 {
			t.Errorf("expected no request after restart, got %d total", requests.Load())
		}
	})

	t.Run("sends user agent and extra headers", func(t *testing.T) {
		t.Parallel()

		var gotUA, gotLang string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			gotLang = r.Header.Get("Accept-Language")
			_, _ = w.Write([]byte("ok")) //nolint:errcheck // test server
		}))
		defer server.Close()

		store, _ := newTestStore(t)
		f := New(store,
			WithLogger(discardLogger()),
			WithUserAgent("linetable-test/1.0"),
			WithHeaders(map[string]string{"Accept-Language": "ja"}),
		)
		if _, err := f.Fetch(context.Background(), server.URL); err != nil {
			t.Fatalf("fetch failed: %v", err)
		}

		if gotUA != "linetable-test/1.0" {
			t.Errorf("expected custom user agent, got %q", gotUA)
		}
		if gotLang != "ja" {
			t.Errorf("expected Accept-Language header, got %q", gotLang)
		}
	})
}

// TestFetchErrors tests transport failures.
func TestFetchErrors(t *testing.T) {
	t.Parallel()

	t.Run("non-2xx status returns TransportError and caches nothing", func(t *testing.T) {
		t.Parallel()

		server, _ := newTestServer(t, http.StatusNotFound, "not found")
		store, _ := newTestStore(t)
		rec := &countingRecorder{}
		f := New(store, WithLogger(discardLogger()), WithRecorder(rec))

		_, err := f.Fetch(context.Background(), server.URL+"/missing")
		if !errors.Is(err, ErrTransport) {
			t.Fatalf("expected ErrTransport, got %v", err)
		}
		var te *TransportError
		if !errors.As(err, &te) || te.StatusCode != http.StatusNotFound {
			t.Errorf("expected status 404 in error, got %#v", err)
		}
		if n, _ := store.Len(); n != 0 { //nolint:errcheck // loaded by Fetch
			t.Errorf("expected empty cache, got %d entries", n)
		}
		if rec.errors != 1 {
			t.Errorf("expected 1 recorded error, got %d", rec.errors)
		}
	})

	t.Run("server error returns TransportError", func(t *testing.T) {
		t.Parallel()

		server, _ := newTestServer(t, http.StatusInternalServerError, "boom")
		store, _ := newTestStore(t)

		_, err := New(store, WithLogger(discardLogger())).Fetch(context.Background(), server.URL)
		if !errors.Is(err, ErrTransport) {
			t.Fatalf("expected ErrTransport, got %v", err)
		}
	})

	t.Run("connection failure returns TransportError without status", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		store, _ := newTestStore(t)
		_, err := New(store, WithLogger(discardLogger())).Fetch(context.Background(), url)
		var te *TransportError
		if !errors.As(err, &te) {
			t.Fatalf("expected TransportError, got %v", err)
		}
		if te.StatusCode != 0 {
			t.Errorf("expected status 0, got %d", te.StatusCode)
		}
	})

	t.Run("invalid utf-8 body returns TransportError", func(t *testing.T) {
		t.Parallel()

		server, _ := newTestServer(t, http.StatusOK, "\xff\xfe\x00bad")
		store, _ := newTestStore(t)

		_, err := New(store, WithLogger(discardLogger())).Fetch(context.Background(), server.URL)
		if !errors.Is(err, ErrInvalidEncoding) {
			t.Fatalf("expected ErrInvalidEncoding, got %v", err)
		}
		if !errors.Is(err, ErrTransport) {
			t.Errorf("expected ErrTransport, got %v", err)
		}
	})

	t.Run("cached url does not need the network", func(t *testing.T) {
		t.Parallel()

		store, _ := newTestStore(t)
		url := "http://127.0.0.1:1/never-reachable"
		if err := store.Put(url, "cached body"); err != nil {
			t.Fatalf("seed failed: %v", err)
		}

		body, err := New(store, WithLogger(discardLogger())).Fetch(context.Background(), url)
		if err != nil {
			t.Fatalf("expected cache hit, got %v", err)
		}
		if body != "cached body" {
			t.Errorf("unexpected body %q", body)
		}
	})

	t.Run("cancelled context returns TransportError", func(t *testing.T) {
		t.Parallel()

		server, requests := newTestServer(t, http.StatusOK, "ok")
		store, _ := newTestStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := New(store, WithLogger(discardLogger())).Fetch(ctx, server.URL)
		if !errors.Is(err, ErrTransport) || !errors.Is(err, context.Canceled) {
			t.Fatalf("expected cancelled TransportError, got %v", err)
		}
		if requests.Load() != 0 {
			t.Errorf("expected no request, got %d", requests.Load())
		}
	})
}
