package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/linetable/internal/model"
)

// FileName is the database file created in the database directory.
const FileName = "linetable.db"

// timestampLayout is the layout timestamps are stored with, always in UTC.
const timestampLayout = "2006-01-02 15:04:05"

// HistoryDB provides SQLite-based storage for past crawls.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
// With CreateIfNotExists false, a missing database is an error.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create the file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS crawls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		line_id INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		timetables INTEGER NOT NULL,
		trains INTEGER NOT NULL,
		train_refs INTEGER NOT NULL,
		stops INTEGER NOT NULL,
		document_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_crawls_line ON crawls(line_id);
	CREATE INDEX IF NOT EXISTS idx_crawls_started ON crawls(started_at);

	CREATE TABLE IF NOT EXISTS crawl_timetables (
		crawl_id INTEGER NOT NULL REFERENCES crawls(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		timetable_id TEXT NOT NULL,
		station TEXT NOT NULL,
		direction TEXT NOT NULL,
		PRIMARY KEY (crawl_id, position)
	);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// CrawlSummary describes one stored crawl without its document.
type CrawlSummary struct {
	ID         int64
	LineID     int
	StartedAt  time.Time
	FinishedAt time.Time
	Timetables int
	Trains     int
	TrainRefs  int
	Stops      int
}

// Duration returns how long the stored crawl took.
func (s CrawlSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// SaveCrawl stores a finished crawl together with its output document and
// returns the new row id.
func (hdb *HistoryDB) SaveCrawl(ctx context.Context, crawl *model.LineCrawl, document []byte) (int64, error) {
	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	result, err := tx.ExecContext(ctx, `
	INSERT INTO crawls (line_id, started_at, finished_at, timetables, trains, train_refs, stops, document_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		crawl.LineID,
		formatTimestamp(crawl.StartedAt),
		formatTimestamp(crawl.FinishedAt),
		len(crawl.Timetables),
		len(crawl.Records),
		crawl.TrainRefsSeen,
		crawl.StopCount(),
		string(document),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert crawl: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read crawl id: %w", err)
	}

	for i, tt := range crawl.Timetables {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO crawl_timetables (crawl_id, position, timetable_id, station, direction)
		VALUES (?, ?, ?, ?, ?)
		`, id, i, tt.ID, tt.StationName, tt.DirectionName)
		if err != nil {
			return 0, fmt.Errorf("failed to insert timetable %s: %w", tt.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit crawl: %w", err)
	}
	return id, nil
}

// ListCrawls returns every stored crawl, newest first.
func (hdb *HistoryDB) ListCrawls(ctx context.Context) ([]CrawlSummary, error) {
	return hdb.listCrawls(ctx, "")
}

// ListLineCrawls returns the stored crawls of one line, newest first.
func (hdb *HistoryDB) ListLineCrawls(ctx context.Context, lineID int) ([]CrawlSummary, error) {
	return hdb.listCrawls(ctx, " AND line_id = ?", lineID)
}

func (hdb *HistoryDB) listCrawls(ctx context.Context, filter string, args ...any) ([]CrawlSummary, error) {
	query := `
	SELECT id, line_id, started_at, finished_at, timetables, trains, train_refs, stops
	FROM crawls
	WHERE 1=1
	` + filter + " ORDER BY started_at DESC, id DESC"

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list crawls: %w", err)
	}
	defer rows.Close()

	results := make([]CrawlSummary, 0)
	for rows.Next() {
		var s CrawlSummary
		var started, finished string

		err := rows.Scan(&s.ID, &s.LineID, &started, &finished, &s.Timetables, &s.Trains, &s.TrainRefs, &s.Stops)
		if err != nil {
			return nil, fmt.Errorf("failed to scan crawl: %w", err)
		}

		s.StartedAt = parseTimestamp(started)
		s.FinishedAt = parseTimestamp(finished)
		results = append(results, s)
	}

	return results, rows.Err()
}

// GetDocument returns the output document stored with a crawl, or nil when
// no crawl has that id.
func (hdb *HistoryDB) GetDocument(ctx context.Context, id int64) ([]byte, error) {
	var doc string
	err := hdb.db.QueryRowContext(ctx, `SELECT document_json FROM crawls WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return []byte(doc), nil
}

// GetTimetables returns the station timetables stored with a crawl, in
// line page order.
func (hdb *HistoryDB) GetTimetables(ctx context.Context, id int64) ([]model.TimetableRef, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT timetable_id, station, direction
	FROM crawl_timetables
	WHERE crawl_id = ?
	ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get timetables: %w", err)
	}
	defer rows.Close()

	results := make([]model.TimetableRef, 0)
	for rows.Next() {
		var tt model.TimetableRef
		if err := rows.Scan(&tt.ID, &tt.StationName, &tt.DirectionName); err != nil {
			return nil, fmt.Errorf("failed to scan timetable: %w", err)
		}
		results = append(results, tt)
	}

	return results, rows.Err()
}

// formatTimestamp renders t in UTC with the storage layout.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats that may be stored.
var timestampFormats = []string{
	timestampLayout,
	"2006-01-02T15:04:05Z",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp parses a stored timestamp, or returns the zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
