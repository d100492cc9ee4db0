package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"archive-browser/listing"
	"archive-browser/logger"
	"archive-browser/models"
	"archive-browser/storage"

	"github.com/morikuni/failure/v2"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func newScanCommand() *cobra.Command {
	var (
		timeout time.Duration
		limit   int
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "Scan an archive directory once and print what was found",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return failure.New(ErrInvalidArgs, failure.Message("--limit must not be negative"))
			}
			root, err := filepath.Abs(args[0])
			if err != nil {
				return failure.Translate(err, ErrInvalidArgs, failure.Message("Invalid path"))
			}

			level := "warn"
			if verbose {
				level = "debug"
			}
			log, err := logger.New(logger.Config{Level: level})
			if err != nil {
				return failure.Wrap(err)
			}
			defer func() { _ = log.Sync() }()

			catalog, report, err := storage.NewScanner(root, timeout, log).Scan(cmd.Context())
			if err != nil {
				return err
			}
			printCatalog(cmd.OutOrStdout(), catalog, report, limit)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Scan time budget (0 disables it)")
	cmd.Flags().IntVar(&limit, "limit", 3, "Captures to print per URL, newest first")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every skipped entry to stderr")
	return cmd
}

func printCatalog(w io.Writer, catalog models.Catalog, report models.ScanReport, limit int) {
	fmt.Fprintf(w, "Found %d archived URLs (%d snapshots) in %s\n",
		report.Resources, report.Captures, report.Duration.Round(time.Millisecond))
	if report.Partial {
		fmt.Fprintln(w, "Scan budget exceeded: results are partial")
	}
	if report.Skipped > 0 {
		fmt.Fprintf(w, "Skipped %d capture directories with unparseable names\n", report.Skipped)
	}

	for _, r := range listing.Sort(catalog, listing.SortByURL) {
		fmt.Fprintf(w, "\n%s: %s (%d snapshots, %s)\n", r.ID, r.CanonicalURL, r.CaptureCount(), r.DateRange())
		for _, c := range lo.Slice(r.Captures, 0, limit) {
			artifacts := lo.Map(c.Artifacts, func(k models.ArtifactKind, _ int) string { return string(k) })
			fmt.Fprintf(w, "  - %s  %s  [%s]\n", c.ID, c.CapturedAt.Format(time.RFC3339), strings.Join(artifacts, ", "))
		}
		if rest := r.CaptureCount() - limit; rest > 0 {
			fmt.Fprintf(w, "  ... %d more\n", rest)
		}
	}
}
