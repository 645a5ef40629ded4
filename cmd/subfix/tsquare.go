package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/submission-fix/internal/organize"
)

func newTSquareCmd() *cobra.Command {
	var (
		flags      runFlags
		move       bool
		renderText bool
	)

	cmd := &cobra.Command{
		Use:   "tsquare <bulk_download.zip>",
		Short: "Organize a T-Square bulk download",
		Long: `Extracts a T-Square bulk download, strips the hash from every student folder,
moves timestamps, comments and feedback into Text/, lifts the submission
attachments into the student folder and expands archives found there.

Configuration can be loaded from a file using --config. Command-line arguments override config file values.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("move") {
				cfg.Move = move
			}
			if cmd.Flags().Changed("render-text") {
				cfg.RenderText = renderText
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := newLogger(cmd, cfg)
			filter, err := loadFilter(cfg)
			if err != nil {
				return err
			}
			ev, err := buildEvaluator(cfg, log)
			if err != nil {
				return err
			}

			platform := organize.TSquare{Move: cfg.Move, RenderText: cfg.RenderText}
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
	cmd.Flags().BoolVarP(&move, "move", "m", false, "Move student folders out of the assignment folder and remove it")
	cmd.Flags().BoolVar(&renderText, "render-text", false, "Write a .txt rendering of each HTML submission text")
	return cmd
}
