// Package main is the reportctl command line tool. It runs the same
// fetch-and-reconstruct pipeline as the API server and writes the
// result to a file, for ad hoc exports and scheduled jobs.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/focus-analytics/transcript-insights/internal/cache"
	"github.com/focus-analytics/transcript-insights/internal/config"
	"github.com/focus-analytics/transcript-insights/internal/fetcher"
	"github.com/focus-analytics/transcript-insights/internal/service"
	"github.com/focus-analytics/transcript-insights/internal/token"
	"github.com/focus-analytics/transcript-insights/pkg/logger"
)

const dateLayout = "2006-01-02"

var (
	flagFrom   string
	flagTo     string
	flagFormat string
	flagOut    string
)

var rootCmd = &cobra.Command{
	Use:   "reportctl",
	Short: "Export chat transcript reports",
	Long: `reportctl fetches bot transcripts for a date range, reconstructs
query/response pairs and writes them as CSV or JSON.

Platform credentials come from the environment: BOT_ID, CLIENT_ID,
CLIENT_SECRET and optionally PLATFORM_HOST.`,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	today := time.Now().UTC().Format(dateLayout)
	weekAgo := time.Now().UTC().AddDate(0, 0, -7).Format(dateLayout)

	rootCmd.Flags().StringVar(&flagFrom, "from", weekAgo, "start date (YYYY-MM-DD)")
	rootCmd.Flags().StringVar(&flagTo, "to", today, "end date (YYYY-MM-DD)")
	rootCmd.Flags().StringVar(&flagFormat, "format", "csv", "output format: csv or json")
	rootCmd.Flags().StringVarP(&flagOut, "out", "o", "", "output file (default stdout)")
}

func run(cmd *cobra.Command, args []string) error {
	from, err := time.Parse(dateLayout, flagFrom)
	if err != nil {
		return fmt.Errorf("invalid --from date %q: %w", flagFrom, err)
	}
	to, err := time.Parse(dateLayout, flagTo)
	if err != nil {
		return fmt.Errorf("invalid --to date %q: %w", flagTo, err)
	}
	if to.Before(from) {
		return fmt.Errorf("--to must not be before --from")
	}
	if flagFormat != "csv" && flagFormat != "json" {
		return fmt.Errorf("unknown format %q, want csv or json", flagFormat)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.NewNop()
	if os.Getenv("REPORTCTL_VERBOSE") != "" {
		log, err = logger.NewDevelopment()
		if err != nil {
			return err
		}
		defer log.Sync()
	}

	issuer := token.NewIssuer()
	transcriptFetcher := fetcher.New(cfg.PlatformHost, issuer, log)
	svc := service.NewReportService(cfg.BotID, cfg.Credential(),
		transcriptFetcher, cache.NewMemory(cfg.CacheTTL), log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	progress := func(page, runningCount int) {
		fmt.Fprintf(os.Stderr, "page %d, %d messages kept...\n", page, runningCount)
	}

	var out []byte
	switch flagFormat {
	case "csv":
		out, err = svc.ExportCSV(ctx, from, to, progress)
		if err != nil {
			return err
		}
	case "json":
		rep, err := svc.Generate(ctx, from, to, progress)
		if err != nil {
			return err
		}
		if rep.Warning != "" {
			fmt.Fprintf(os.Stderr, "warning: %s\n", rep.Warning)
		}
		out, err = json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		out = append(out, '\n')
	}

	if flagOut == "" || flagOut == "-" {
		_, err = os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(flagOut, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", flagOut, err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%d bytes)\n", flagOut, len(out))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "reportctl: %v\n", err)
		os.Exit(1)
	}
}
