package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jonathan/submission-fix/internal/config"
	"github.com/jonathan/submission-fix/internal/db"
	"github.com/jonathan/submission-fix/internal/lateness"
	"github.com/jonathan/submission-fix/internal/logging"
	"github.com/jonathan/submission-fix/internal/organize"
	"github.com/jonathan/submission-fix/internal/report"
	"github.com/jonathan/submission-fix/internal/roster"
)

// dbTimeout bounds the optional run persistence.
const dbTimeout = 10 * time.Second

// runFlags are the flags both platform commands accept.
type runFlags struct {
	configPath  string
	path        string
	filter      string
	due         string
	timezone    string
	report      string
	databaseURL string
	assumeYes   bool
	verbose     bool
	jsonLog     bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	// Config file flag (processed first)
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to a YAML/JSON/TOML config file (values can be overridden by other flags)")

	cmd.Flags().StringVarP(&f.path, "path", "p", "", "Destination directory (created if missing; asks before clearing a non-empty one)")
	cmd.Flags().StringVarP(&f.filter, "filter", "c", "", "File listing the students to extract, one ;-delimited record per line")
	cmd.Flags().StringVarP(&f.due, "due", "t", "", `Due date "mm/dd/yy hh:mm"; enables the late-submission check`)
	cmd.Flags().StringVar(&f.timezone, "timezone", "", "Time zone the due date is given in (default America/New_York)")
	cmd.Flags().StringVar(&f.report, "report", "", "Write a run report to this .csv or .json file")
	cmd.Flags().StringVar(&f.databaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	cmd.Flags().BoolVarP(&f.assumeYes, "yes", "y", false, "Clear a non-empty destination without asking")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print detailed debug information")
	cmd.Flags().BoolVar(&f.jsonLog, "json-log", false, "Log JSON lines instead of console output")
}

// resolve loads the config file and environment, then applies the flags the
// user actually set.
func (f *runFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	loaded, err := config.LoadConfig(f.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := *loaded

	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("path") {
		cfg.Path = f.path
	}
	if cmd.Flags().Changed("filter") {
		cfg.Filter = f.filter
	}
	if cmd.Flags().Changed("due") {
		cfg.Due = f.due
	}
	if cmd.Flags().Changed("timezone") {
		cfg.Timezone = f.timezone
	}
	if cmd.Flags().Changed("report") {
		cfg.Report = f.report
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = f.databaseURL
	}
	if cmd.Flags().Changed("yes") {
		cfg.AssumeYes = f.assumeYes
	}
	if cmd.Flags().Changed("verbose") && f.verbose {
		cfg.LogLevel = "debug"
	}
	if cmd.Flags().Changed("json-log") {
		cfg.PrettyLog = !f.jsonLog
	}

	cfg = cfg.MergeWithDefaults(config.Config{
		Timezone: config.DefaultTimezone,
		Flatten:  "none",
		LogLevel: "info",
	})
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg config.Config) zerolog.Logger {
	return logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.PrettyLog)
}

func confirmer(cmd *cobra.Command, cfg config.Config) organize.Confirmer {
	if cfg.AssumeYes {
		return organize.AlwaysConfirm
	}
	return newPromptConfirmer(cmd.InOrStdin(), cmd.ErrOrStderr())
}

func loadFilter(cfg config.Config) (*roster.Filter, error) {
	if cfg.Filter == "" {
		return nil, nil
	}
	return roster.LoadFilter(cfg.Filter)
}

// buildEvaluator returns nil when no due date was given or when the runtime
// has no time zone data, in which case the check is skipped with a warning.
func buildEvaluator(cfg config.Config, log zerolog.Logger) (*lateness.Evaluator, error) {
	if cfg.Due == "" {
		return nil, nil
	}
	loc, err := lateness.LoadZone(cfg.Timezone)
	if err != nil {
		log.Warn().Err(err).Msg("time zone data unavailable; late submissions will not be checked")
		return nil, nil
	}
	due, err := lateness.ParseDue(cfg.Due, loc)
	if err != nil {
		return nil, err
	}
	return lateness.New(due, loc)
}

// execute runs p and reports the result.
func execute(cmd *cobra.Command, cfg config.Config, p organize.Platform, opts organize.Options, log zerolog.Logger) error {
	res, err := organize.NewRunner(p, log).Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	var due time.Time
	if opts.Evaluator != nil {
		due = opts.Evaluator.Due()
	}
	summary := report.New(res, due)
	report.NewPrinter(cmd.OutOrStdout()).PrintSummary(summary)

	if cfg.Report != "" {
		if err := report.Write(cfg.Report, summary); err != nil {
			return err
		}
		log.Info().Str("report", cfg.Report).Msg("report written")
	}

	if cfg.DatabaseURL != "" {
		persist(cmd.Context(), cfg.DatabaseURL, summary, log)
	}
	return nil
}

// persist stores the summary; failures only warn since the folders are
// already on disk.
func persist(ctx context.Context, url string, summary *report.Summary, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	database, err := db.Connect(ctx, url)
	if err != nil {
		log.Warn().Err(err).Msg("continuing without persistence")
		return
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		log.Warn().Err(err).Msg("run not saved")
		return
	}
	id, err := database.SaveRun(ctx, summary)
	if err != nil {
		log.Warn().Err(err).Msg("run not saved")
		return
	}
	log.Info().Str("run_id", id.String()).Msg("run saved")
}
