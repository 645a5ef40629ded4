// Package main provides the subfix command, which turns bulk assignment
// downloads into one folder per student.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "subfix",
		Short: "Organize bulk assignment submissions into per-student folders",
		Long: `subfix extracts a bulk submission download from T-Square or Canvas, gives every
student one folder named "Last, First", expands archives found inside and, given
a due date, lists the submissions that came in late.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newTSquareCmd(), newCanvasCmd())
	return root
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
