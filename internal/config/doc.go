// Package config provides configuration structures and utilities for linetable.
// It defines the options that control where pages are fetched from, how
// responses are cached on disk, and where crawl results are written.
package config
