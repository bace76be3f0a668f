// Package database stores the history of line crawls in SQLite.
//
// Each successful crawl saved with --history becomes one row holding its
// counters and the output document, plus one row per station timetable.
// The database lives in a single file (linetable.db) under the XDG data
// directory and uses the CGO-free modernc.org/sqlite driver.
package database
