package config

import (
	"net/url"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "linetable"

	// DefaultBaseURL is the timetable site every page is fetched from.
	DefaultBaseURL = "https://ekitan.com"

	// DefaultUserAgent is sent with every request. The site serves the
	// regular desktop markup to this browser string.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:123.0) Gecko/20100101 Firefox/123.0"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 60 * time.Second

	// DefaultCacheFile is the response cache, relative to the working directory.
	// Existing caches written by earlier runs are picked up as-is.
	DefaultCacheFile = "./timetable_cache.json"

	// DefaultOutputDir is where <line_id>.json is written.
	DefaultOutputDir = "."
)

// Config holds all configuration options for a crawl.
// It is populated from defaults, the optional YAML file and CLI flags,
// in that order, and then passed down explicitly.
type Config struct {
	// LineID is the rail line to crawl. Any integer is accepted.
	LineID int

	// BaseURL is the scheme and host of the timetable site.
	BaseURL string

	// UserAgent is the User-Agent header sent with each request.
	UserAgent string

	// Headers are additional request headers (e.g. Cookie, Accept-Language).
	Headers map[string]string

	// Timeout is the HTTP client timeout for each request.
	Timeout time.Duration

	// CacheFile is the path of the URL-keyed response cache.
	CacheFile string

	// OutputDir is the directory receiving <line_id>.json.
	OutputDir string

	// Verbose enables debug logging.
	Verbose bool

	// PrettyJSON indents the output document.
	PrettyJSON bool

	// MarkdownSummary prints a Markdown summary of the crawl to stdout.
	MarkdownSummary bool

	// MetricsFile, when set, receives the crawl counters in the
	// Prometheus text exposition format.
	MetricsFile string

	// SaveHistory stores the finished crawl in the history database.
	SaveHistory bool

	// DBDir is the directory holding the history database.
	DBDir string

	// ConfigFilePath is the explicitly requested config file, if any.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: DefaultUserAgent,
		Headers:   make(map[string]string),
		Timeout:   DefaultTimeout,
		CacheFile: DefaultCacheFile,
		OutputDir: DefaultOutputDir,
		DBDir:     XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for linetable.
// On Linux: ~/.local/share/linetable
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for linetable.
// On Linux: ~/.config/linetable
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// OutputPath returns the path of the JSON document for the configured line.
func (c *Config) OutputPath() string {
	return filepath.Join(c.OutputDir, OutputFileName(c.LineID))
}

// Apply overlays the non-zero values of a config file onto c.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}
	if f.BaseURL != "" {
		c.BaseURL = f.BaseURL
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.Timeout > 0 {
		c.Timeout = f.Timeout
	}
	if f.CacheFile != "" {
		c.CacheFile = f.CacheFile
	}
	if f.OutputDir != "" {
		c.OutputDir = f.OutputDir
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}
	if f.Pretty {
		c.PrettyJSON = true
	}
	if len(f.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		for k, v := range f.Headers {
			c.Headers[k] = v
		}
	}
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.UserAgent == "" {
		return ErrEmptyUserAgent
	}

	if c.CacheFile == "" {
		return ErrEmptyCacheFile
	}

	if c.SaveHistory && c.DBDir == "" {
		return ErrEmptyDBDir
	}

	return nil
}
