package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/submission-fix/internal/organize"
	"github.com/jonathan/submission-fix/internal/roster"
)

func newCanvasCmd() *cobra.Command {
	var (
		flags   runFlags
		section string
		flatten string
	)

	cmd := &cobra.Command{
		Use:   "canvas <submissions.zip> <gradebook.csv>",
		Short: "Organize a Canvas bulk download using the course gradebook",
		Long: `Extracts a Canvas bulk download and files every submission under the roster
name of its student, stripping Canvas' name prefix and resubmission suffixes.
Students can be limited to a filter file or to one roster section (-s), and
nested folders can be flattened one level (-m 1) or entirely (-m all).

Configuration can be loaded from a file using --config. Command-line arguments override config file values.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("section") {
				cfg.Section = section
			}
			if cmd.Flags().Changed("flatten") {
				cfg.Flatten = flatten
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			depth, err := organize.ParseFlattenDepth(cfg.Flatten)
			if err != nil {
				return err
			}

			log := newLogger(cmd, cfg)
			ros, err := roster.Load(args[1])
			if err != nil {
				return err
			}
			log.Debug().Int("students", ros.Len()).Str("roster", args[1]).Msg("roster loaded")

			var filter *roster.Filter
			if cfg.Section != "" {
				if cfg.Filter != "" {
					log.Warn().Str("section", cfg.Section).Msg("both a section and a filter file were given; using the section")
				}
				filter = roster.NewFilter(ros.Section(cfg.Section))
			} else if filter, err = loadFilter(cfg); err != nil {
				return err
			}

			ev, err := buildEvaluator(cfg, log)
			if err != nil {
				return err
			}

			platform := organize.Canvas{Roster: ros, Flatten: depth}
			return execute(cmd, cfg, platform, organize.Options{
				Bulk:        args[0],
				Destination: cfg.Path,
				Filter:      filter,
				Evaluator:   ev,
				Confirm:     confirmer(cmd, cfg),
			}, log)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&section, "section", "s", "", "Only extract students of this roster section (wins over --filter)")
	cmd.Flags().StringVarP(&flatten, "flatten", "m", "", "Flatten nested folders: 1 (one level) or all")
	return cmd
}
