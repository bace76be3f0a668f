package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/linetable/internal/config"
	"github.com/nao1215/linetable/internal/database"
	"github.com/spf13/cobra"
	"golang.org/x/text/width"
)

// NewHistoryCmd creates the history command.
// It reads the crawls stored with --history.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [line-id]",
		Short: "List crawls stored in the history database",
		Long: `History lists the crawls saved with 'linetable --history', newest first.

Without a line id every stored crawl is listed. A stored document can be
printed again with --show, and the timetables read by a crawl with
--timetables.

Examples:
  # List all stored crawls
  linetable history

  # List the crawls of line 1234
  linetable history 1234

  # Print the document written by crawl 5
  linetable history --show 5

  # List the timetables read by crawl 5
  linetable history --timetables 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64("show", 0,
		"Print the JSON document of the crawl with this ID")
	cmd.Flags().Int64("timetables", 0,
		"List the timetables read by the crawl with this ID")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	var lineID *int
	if len(args) == 1 {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%w: %q", config.ErrInvalidLineID, args[0])
		}
		lineID = &id
	}

	dbDir, err := historyDBDir(cmd)
	if err != nil {
		return err
	}

	showID, err := cmd.Flags().GetInt64("show")
	if err != nil {
		return err
	}
	timetablesID, err := cmd.Flags().GetInt64("timetables")
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false})
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	switch {
	case showID > 0:
		return showDocument(ctx, db, showID, out)
	case timetablesID > 0:
		return listTimetables(ctx, db, timetablesID, out)
	default:
		return listCrawls(ctx, db, lineID, out)
	}
}

// historyDBDir resolves the database directory from the flag, the config
// file and the XDG default, in that order.
func historyDBDir(cmd *cobra.Command) (string, error) {
	dir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return "", err
	}
	if dir != "" {
		return dir, nil
	}

	if path := config.FindConfigFile(""); path != "" {
		file, err := config.LoadConfigFile(path)
		if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
			return "", fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		if file != nil && file.DBDir != "" {
			return file.DBDir, nil
		}
	}
	return config.XDGDataDir(), nil
}

// listCrawls prints the stored crawls of lineID, or of every line when
// lineID is nil.
func listCrawls(ctx context.Context, db *database.HistoryDB, lineID *int, out io.Writer) error {
	var crawls []database.CrawlSummary
	var err error
	if lineID != nil {
		crawls, err = db.ListLineCrawls(ctx, *lineID)
	} else {
		crawls, err = db.ListCrawls(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to list crawls: %w", err)
	}

	if len(crawls) == 0 {
		if lineID != nil {
			fmt.Fprintf(out, "No crawls stored for line %d\n", *lineID)
		} else {
			fmt.Fprintln(out, "No crawls stored")
		}
		fmt.Fprintln(out, "\nUse 'linetable --history <line-id>' to store a crawl.")
		return nil
	}

	fmt.Fprintf(out, "Crawl history (%d crawls):\n\n", len(crawls))
	fmt.Fprintf(out, "  %-6s  %-8s  %-20s  %-10s  %-10s  %-8s  %s\n",
		"ID", "Line", "Started", "Duration", "Timetables", "Trains", "Stops")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 84))

	for _, c := range crawls {
		fmt.Fprintf(out, "  %-6d  %-8d  %-20s  %-10s  %-10d  %-8d  %d\n",
			c.ID,
			c.LineID,
			c.StartedAt.Local().Format("2006-01-02 15:04:05"),
			c.Duration().Round(100*time.Millisecond),
			c.Timetables,
			c.Trains,
			c.Stops,
		)
	}

	fmt.Fprintln(out, "\nUse 'linetable history --show <id>' to print a stored document.")
	return nil
}

// showDocument prints the document stored with crawl id.
func showDocument(ctx context.Context, db *database.HistoryDB, id int64, out io.Writer) error {
	doc, err := db.GetDocument(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to read crawl %d: %w", id, err)
	}
	if doc == nil {
		return fmt.Errorf("crawl %d not found", id)
	}

	_, err = out.Write(doc)
	return err
}

// listTimetables prints the timetables read by crawl id.
func listTimetables(ctx context.Context, db *database.HistoryDB, id int64, out io.Writer) error {
	timetables, err := db.GetTimetables(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to read crawl %d: %w", id, err)
	}
	if len(timetables) == 0 {
		return fmt.Errorf("crawl %d not found or has no timetables", id)
	}

	nameWidth := 0
	for _, tt := range timetables {
		nameWidth = max(nameWidth, displayWidth(tt.StationName))
	}

	fmt.Fprintf(out, "Timetables of crawl %d (%d):\n\n", id, len(timetables))
	for _, tt := range timetables {
		fmt.Fprintf(out, "  %-12s  %s  %s\n", tt.ID, padRight(tt.StationName, nameWidth), tt.DirectionName)
	}
	return nil
}

// displayWidth returns the number of terminal columns s occupies. Wide and
// fullwidth runes take two columns.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// padRight pads s with spaces to w columns.
func padRight(s string, w int) string {
	if pad := w - displayWidth(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}
