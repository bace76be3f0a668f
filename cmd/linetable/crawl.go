package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/nao1215/linetable/internal/cache"
	"github.com/nao1215/linetable/internal/config"
	"github.com/nao1215/linetable/internal/crawler"
	"github.com/nao1215/linetable/internal/database"
	"github.com/nao1215/linetable/internal/fetch"
	"github.com/nao1215/linetable/internal/metrics"
	"github.com/nao1215/linetable/internal/model"
	"github.com/nao1215/linetable/internal/pipeline"
	"github.com/nao1215/linetable/internal/report"
	"github.com/spf13/cobra"
)

// runCrawlCmd executes the crawl of the line given as argument.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCrawl(ctx, cfg, cmd.OutOrStdout(), logger)
}

// buildConfig creates a Config from defaults, the config file and the flags,
// in that order.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	lineID, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidLineID, args[0])
	}
	cfg.LineID = lineID
	cfg.Verbose = getVerboseFlag(cmd)

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly requested file must exist; the default locations are optional.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.Apply(file)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("cache-file") {
		if cfg.CacheFile, err = flags.GetString("cache-file"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("output-dir") {
		if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
			return nil, err
		}
	}

	if cfg.MarkdownSummary, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if flags.Changed("pretty") {
		if cfg.PrettyJSON, err = flags.GetBool("pretty"); err != nil {
			return nil, err
		}
	}
	if cfg.MetricsFile, err = flags.GetString("metrics-file"); err != nil {
		return nil, err
	}
	if cfg.SaveHistory, err = flags.GetBool("history"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// runCrawl crawls cfg.LineID and writes the document and the optional
// outputs. Summaries go to out.
func runCrawl(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"line", cfg.LineID,
		"site", cfg.BaseURL,
		"cache", cfg.CacheFile,
	)

	store := cache.NewStore(cfg.CacheFile, cache.WithLogger(logger))

	tally := &fetch.Tally{}
	var collector *metrics.Collector
	recorders := []fetch.Recorder{tally}
	if cfg.MetricsFile != "" {
		collector = metrics.New(cfg.LineID)
		recorders = append(recorders, collector)
	}

	fetcher := fetch.New(store,
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithHeaders(cfg.Headers),
		fetch.WithRecorder(fetch.MultiRecorder(recorders...)),
		fetch.WithLogger(logger),
	)
	extractor := crawler.NewExtractor(fetcher,
		crawler.WithBaseURL(cfg.BaseURL),
		crawler.WithLogger(logger),
	)

	crawl, err := pipeline.CrawlLine(ctx, extractor, cfg.LineID, pipeline.WithLogger(logger))
	if err != nil {
		if collector != nil {
			_ = writeMetrics(collector, crawl, cfg.MetricsFile, logger) //nolint:errcheck // logged; the crawl error wins
		}
		return fmt.Errorf("crawl of line %d failed: %w", cfg.LineID, err)
	}

	if err := store.Flush(); err != nil {
		return err
	}

	outputPath := cfg.OutputPath()
	document, err := writeOutputs(cfg, crawl, tally, outputPath, out)
	if err != nil {
		return err
	}
	logger.Info("document written", "path", outputPath, "trains", len(crawl.Records))

	if collector != nil {
		if err := writeMetrics(collector, crawl, cfg.MetricsFile, logger); err != nil {
			return err
		}
	}

	if cfg.SaveHistory {
		if err := saveHistory(ctx, cfg.DBDir, crawl, document, logger); err != nil {
			return err
		}
	}

	return nil
}

// writeOutputs writes the JSON document to path and the summary to out,
// and returns the document bytes.
func writeOutputs(cfg *config.Config, crawl *model.LineCrawl, tally *fetch.Tally, path string, out io.Writer) (_ []byte, err error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644) //nolint:gosec // the document is meant to be shared
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close %s: %w", path, cerr))
		}
	}()

	var jsonOpts []report.JSONWriterOption
	if cfg.PrettyJSON {
		jsonOpts = append(jsonOpts, report.WithPrettyPrint())
	}

	var document bytes.Buffer
	w := report.NewMultiWriter(
		report.NewJSONWriter(io.MultiWriter(file, &document), jsonOpts...),
		summaryWriter(cfg, tally, path, out),
	)
	if _, err := w.Write(crawl); err != nil {
		return nil, fmt.Errorf("failed to write outputs: %w", err)
	}
	return document.Bytes(), nil
}

// summaryWriter returns the Markdown or plain-text summary writer.
func summaryWriter(cfg *config.Config, tally *fetch.Tally, outputPath string, out io.Writer) report.Writer {
	stats := report.Stats{CacheHits: tally.CacheHits, Downloads: tally.Downloads}
	if cfg.MarkdownSummary {
		return report.NewMarkdownWriter(out, report.WithMarkdownStats(stats))
	}
	return report.NewSimpleWriter(out,
		report.WithSimpleStats(stats),
		report.WithOutputPath(outputPath),
	)
}

// writeMetrics exports the collector to path. A failed crawl still exports
// its fetch counters.
func writeMetrics(collector *metrics.Collector, crawl *model.LineCrawl, path string, logger *slog.Logger) error {
	if crawl != nil && !crawl.FinishedAt.IsZero() {
		collector.RecordCrawl(crawl)
	}

	if err := collector.WriteTextfile(path); err != nil {
		logger.Error("failed to write metrics", "path", path, "error", err)
		return fmt.Errorf("failed to write metrics: %w", err)
	}

	logger.Debug("metrics written", "path", path)
	return nil
}

// saveHistory stores the crawl and its document in the history database.
func saveHistory(ctx context.Context, dbDir string, crawl *model.LineCrawl, document []byte, logger *slog.Logger) (err error) {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer func() {
		err = errors.Join(err, db.Close())
	}()

	id, err := db.SaveCrawl(ctx, crawl, document)
	if err != nil {
		return fmt.Errorf("failed to save crawl: %w", err)
	}

	logger.Info("crawl saved to history", "id", id, "line", crawl.LineID, "db", db.Path())
	return nil
}
