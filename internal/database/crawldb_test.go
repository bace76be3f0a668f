package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nao1215/linetable/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// testCrawl returns a finished crawl of lineID started at start.
func testCrawl(lineID int, start time.Time) *model.LineCrawl {
	crawl := model.NewLineCrawl(lineID)
	crawl.StartedAt = start
	crawl.FinishedAt = start.Add(3 * time.Second)
	crawl.Timetables = []model.TimetableRef{
		{ID: "1-0", StationName: "東京", DirectionName: "上り"},
		{ID: "1-1", StationName: "東京", DirectionName: "下り"},
	}
	crawl.AddTrain(model.TrainRef{ID: "100"})
	crawl.AddTrain(model.TrainRef{ID: "100"})
	crawl.Records[0].Stops = []model.TrainStop{{Station: "東京"}, {Station: "神田"}}
	return crawl
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if err == nil {
			t.Fatal("expected error for missing database")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		_ = db.Close()
	})
}

// TestSaveCrawl tests storing and listing crawls.
func TestSaveCrawl(t *testing.T) {
	t.Parallel()

	t.Run("stores counters document and timetables", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
		doc := []byte(`[{"type":null,"destination":null,"stops":[]}]`)

		id, err := db.SaveCrawl(ctx, testCrawl(1234, start), doc)
		if err != nil {
			t.Fatalf("save failed: %v", err)
		}

		list, err := db.ListLineCrawls(ctx, 1234)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("expected 1 crawl, got %d", len(list))
		}

		got := list[0]
		if got.ID != id || got.LineID != 1234 {
			t.Errorf("unexpected identity %+v", got)
		}
		if got.Timetables != 2 || got.Trains != 1 || got.TrainRefs != 2 || got.Stops != 2 {
			t.Errorf("unexpected counters %+v", got)
		}
		if !got.StartedAt.Equal(start) || got.Duration() != 3*time.Second {
			t.Errorf("unexpected times %v %v", got.StartedAt, got.Duration())
		}

		stored, err := db.GetDocument(ctx, id)
		if err != nil {
			t.Fatalf("get document failed: %v", err)
		}
		if string(stored) != string(doc) {
			t.Errorf("expected %s, got %s", doc, stored)
		}

		timetables, err := db.GetTimetables(ctx, id)
		if err != nil {
			t.Fatalf("get timetables failed: %v", err)
		}
		if len(timetables) != 2 || timetables[1].DirectionName != "下り" {
			t.Errorf("unexpected timetables %v", timetables)
		}
	})

	t.Run("lists newest first and filters by line", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

		for i, line := range []int{1, 2, 1} {
			if _, err := db.SaveCrawl(ctx, testCrawl(line, base.Add(time.Duration(i)*time.Hour)), []byte("[]")); err != nil {
				t.Fatalf("save %d failed: %v", i, err)
			}
		}

		line1, err := db.ListLineCrawls(ctx, 1)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(line1) != 2 {
			t.Fatalf("expected 2 crawls of line 1, got %d", len(line1))
		}
		if !line1[0].StartedAt.After(line1[1].StartedAt) {
			t.Errorf("expected newest first, got %v then %v", line1[0].StartedAt, line1[1].StartedAt)
		}

		if _, err := db.SaveCrawl(ctx, testCrawl(0, base.Add(5*time.Hour)), []byte("[]")); err != nil {
			t.Fatalf("save of line 0 failed: %v", err)
		}
		line0, err := db.ListLineCrawls(ctx, 0)
		if err != nil {
			t.Fatalf("list line 0 failed: %v", err)
		}
		if len(line0) != 1 || line0[0].LineID != 0 {
			t.Errorf("expected only the crawl of line 0, got %+v", line0)
		}

		all, err := db.ListCrawls(ctx)
		if err != nil {
			t.Fatalf("list all failed: %v", err)
		}
		if len(all) != 4 {
			t.Errorf("expected 4 crawls, got %d", len(all))
		}
	})

	t.Run("unknown id returns nil document", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		doc, err := db.GetDocument(context.Background(), 42)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc != nil {
			t.Errorf("expected nil, got %s", doc)
		}
	})
}

// TestParseTimestamp tests the accepted timestamp layouts.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for _, s := range []string{"2026-01-02 03:04:05", "2026-01-02T03:04:05Z"} {
		if got := parseTimestamp(s); !got.Equal(want) {
			t.Errorf("%q: expected %v, got %v", s, want, got)
		}
	}
	if !parseTimestamp("yesterday").IsZero() {
		t.Error("expected zero time for unknown layout")
	}
}
