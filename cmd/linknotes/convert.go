// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/linknotes/internal/bookmarks"
	"github.com/pdiddy/linknotes/internal/fetch"
	"github.com/pdiddy/linknotes/internal/history"
	"github.com/pdiddy/linknotes/internal/note"
	"github.com/pdiddy/linknotes/internal/pipeline"
	"github.com/pdiddy/linknotes/internal/report"
	"github.com/pdiddy/linknotes/pkg/types"
)

const (
	defaultTimeout = 25 * time.Second
	defaultDelay   = 1 * time.Second
)

// flagKeys maps each conversion flag to its viper key. The same keys are
// read from the config file and from LINKNOTES_* environment variables.
var flagKeys = map[string]string{
	"csv":             "csv",
	"out":             "out",
	"delay":           "delay",
	"template":        "template",
	"timeout":         "timeout",
	"user-agent":      "user_agent",
	"accept-language": "accept_language",
	"max-retries":     "max_retries",
	"max-body-bytes":  "max_body_bytes",
	"skip-existing":   "skip_existing",
	"no-archive":      "no_archive",
	"wayback-api":     "wayback_api",
	"zip":             "zip",
	"no-zip":          "no_zip",
	"history":         "history",
}

func init() {
	f := rootCmd.Flags()
	f.String("csv", "", "CSV file with a url column (required)")
	f.String("out", "", "output folder for the notes (required)")
	f.Duration("delay", defaultDelay, "pause between consecutive URLs")
	f.String("template", "", "custom note template (text/template)")
	f.Duration("timeout", defaultTimeout, "HTTP request timeout")
	f.String("user-agent", fetch.DefaultUserAgent, "User-Agent header for page requests")
	f.String("accept-language", fetch.DefaultAcceptLanguage, "Accept-Language header for page requests")
	f.Int("max-retries", 3, "retries on transient HTTP statuses")
	f.Int64("max-body-bytes", 0, "maximum response body size in bytes (default 10 MiB)")
	f.Bool("skip-existing", false, "skip URLs that already have a note in the output folder")
	f.Bool("no-archive", false, "do not fall back to Wayback Machine snapshots")
	f.String("wayback-api", "", "Wayback availability endpoint (default archive.org)")
	f.String("zip", "", "path of the ZIP archive (default ./obsidian_notes_<timestamp>.zip)")
	f.Bool("no-zip", false, "do not create a ZIP archive")
	f.String("history", "", "SQLite file recording each run's outcomes (disabled when empty)")
	_ = f.MarkHidden("wayback-api")

	for name, key := range flagKeys {
		_ = viper.BindPFlag(key, f.Lookup(name))
	}
}

// options are the resolved settings of one conversion run.
type options struct {
	csvPath    string
	cfg        types.PipelineConfig
	waybackAPI string
	zipPath    string
	noZip      bool
	history    string
}

// loadOptions resolves flags, config file and environment from v.
func loadOptions(v *viper.Viper) (options, error) {
	opts := options{
		csvPath:    v.GetString("csv"),
		waybackAPI: v.GetString("wayback_api"),
		zipPath:    v.GetString("zip"),
		noZip:      v.GetBool("no_zip"),
		history:    v.GetString("history"),
		cfg: types.PipelineConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:        v.GetDuration("timeout"),
				UserAgent:      v.GetString("user_agent"),
				AcceptLanguage: v.GetString("accept_language"),
				MaxRetries:     v.GetInt("max_retries"),
				MaxBodyBytes:   v.GetInt64("max_body_bytes"),
			},
			OutDir:         v.GetString("out"),
			Delay:          v.GetDuration("delay"),
			TemplatePath:   v.GetString("template"),
			SkipExisting:   v.GetBool("skip_existing"),
			DisableArchive: v.GetBool("no_archive"),
		},
	}
	if opts.csvPath == "" {
		return options{}, errors.New("--csv is required")
	}
	if opts.cfg.OutDir == "" {
		return options{}, errors.New("--out is required")
	}
	if opts.cfg.Timeout <= 0 {
		opts.cfg.Timeout = defaultTimeout
	}
	if opts.cfg.Delay < 0 {
		return options{}, fmt.Errorf("--delay must not be negative, got %s", opts.cfg.Delay)
	}
	return opts, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions(viper.GetViper())
	if err != nil {
		return err
	}
	return convert(cmd.Context(), opts, logger, cmd.OutOrStdout())
}

// convert runs the whole batch: read the CSV, write the notes and reports,
// then pack the output folder.
func convert(ctx context.Context, opts options, log *zap.Logger, w io.Writer) error {
	items, err := bookmarks.ReadFile(opts.csvPath)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("no URLs found in %s", opts.csvPath)
	}

	renderer, err := note.NewRenderer(opts.cfg.TemplatePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(opts.cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("creating output folder: %w", err)
	}

	client := &http.Client{Timeout: opts.cfg.Timeout}
	fetcher := fetch.New(client, opts.cfg.HTTPConfig, log).WithWaybackAPI(opts.waybackAPI)
	p := pipeline.New(fetcher, renderer, opts.cfg, log)

	log.Info("starting batch",
		zap.String("csv", opts.csvPath),
		zap.String("out", opts.cfg.OutDir),
		zap.Int("urls", len(items)))
	fmt.Fprintf(w, "Processing %d URLs...\n", len(items))

	started := time.Now()
	result := p.ProcessBatch(ctx, items, w)

	now := time.Now()
	files, err := report.Write(opts.cfg.OutDir, result, now)
	if err != nil {
		return err
	}

	if !opts.noZip {
		zipPath := opts.zipPath
		if zipPath == "" {
			zipPath = report.ArchiveName(now)
		}
		n, err := report.Archive(opts.cfg.OutDir, zipPath)
		if err != nil {
			return err
		}
		size := int64(0)
		if info, err := os.Stat(zipPath); err == nil {
			size = info.Size()
		}
		fmt.Fprintf(w, "\nZIP created: %s (%.2f MB, %d files)\n", zipPath, float64(size)/1024/1024, n)
	}

	fmt.Fprintf(w, "\nNotes created: %d of %d URLs\nReports:\n", result.NotesCreated(), result.Total)
	for _, path := range files.All() {
		fmt.Fprintf(w, "  - %s\n", filepath.Base(path))
	}

	// History is recorded after the reports and the archive.
	if opts.history != "" {
		if err := recordHistory(opts, started, result, log); err != nil {
			log.Warn("recording history failed", zap.String("history", opts.history), zap.Error(err))
			return fmt.Errorf("recording history: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("interrupted after %d of %d URLs: %w", len(result.Items), result.Total, err)
	}
	if result.HasFailures() {
		return fmt.Errorf("%d URL(s) failed", result.Count(types.OutcomeFailed))
	}
	return nil
}

// recordHistory appends the run to the history database. It uses a fresh
// context so an interrupted batch is still recorded.
func recordHistory(opts options, started time.Time, result pipeline.BatchResult, log *zap.Logger) error {
	store, err := history.Open(opts.history)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.Record(context.Background(), started, opts.csvPath, opts.cfg.OutDir, result)
	if err != nil {
		return err
	}
	log.Debug("run recorded", zap.String("history", opts.history), zap.Int64("run", id))
	return nil
}
