// Package main provides the entry point for the linetable CLI.
//
// linetable crawls the railway timetable site for one line and writes every
// train of the line, with its stops, to <line-id>.json. Downloaded pages are
// kept in ./timetable_cache.json so repeated runs do not fetch them again.
//
// Usage:
//
//	linetable <line-id>
//	linetable history [line-id]
//
// See --help for all available options.
package main

// main is the entry point for linetable.
func main() {
	Execute()
}
