// Copyright 2025 The PotholeMap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/xensor/potholemap/reports"
	"github.com/xensor/potholemap/spatial"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Inspect the review log of accepted pothole reports",
}

var reportsListLimit int

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent reports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, repo, err := requireReviewLog(currentOptions())
		if err != nil {
			return err
		}
		defer db.Close()

		all, err := repo.List(cmd.Context(), reportsListLimit, 0)
		if err != nil {
			return fmt.Errorf("listing reports: %w", err)
		}

		out := cmd.OutOrStdout()
		a, b, c, d := strings.Repeat("─", 5), strings.Repeat("─", 20), strings.Repeat("─", 30), strings.Repeat("─", 16)
		fmt.Fprintf(out, "╭─%5s─┬─%-20s─┬─%-30s─┬─%-16s─╮\n", a, b, c, d)
		fmt.Fprintf(out, "│ %5s │ %-20s │ %-30s │ %-16s │\n", "Id", "Suburb", "Location", "Received")
		fmt.Fprintf(out, "├─%5s─┼─%-20s─┼─%-30s─┼─%-16s─┤\n", a, b, c, d)

		for _, r := range all {
			fmt.Fprintf(out, "│ %5d │ %-20s │ %-30s │ %-16s │\n",
				r.ID, truncate(r.Suburb, 20), r.Point().String(), r.CreatedAt.Local().Format("2006-01-02 15:04"))
		}

		fmt.Fprintf(out, "╰─%5s─┴─%-20s─┴─%-30s─┴─%-16s─╯\n", a, b, c, d)

		return nil
	},
}

var reportsExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write every report to a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, repo, err := requireReviewLog(currentOptions())
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := reports.ExportToJSON(cmd.Context(), repo, args[0])
		if err != nil {
			return err
		}

		log.Printf("Exported %d reports to %s", n, args[0])

		return nil
	},
}

var reportsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load reports from a JSON file written by export",
	Long: `Loads reports from a JSON file written by export. Every entry goes through
the same checks as a submission from the Report page, and entries that fail
them are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, err := reports.ReadSeed(args[0])
		if err != nil {
			return err
		}

		db, repo, err := requireReviewLog(currentOptions())
		if err != nil {
			return err
		}
		defer db.Close()

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(len(seed.Reports),
				progressbar.OptionSetDescription("Importing "+args[0]),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		progress := func() {
			if bar != nil {
				_ = bar.Add(1)
			}
		}

		res, err := reports.Import(cmd.Context(), reports.NewIntake(repo), seed, progress)
		if bar != nil {
			_ = bar.Finish()
		}

		if err != nil {
			return err
		}

		log.Printf("Imported %d reports, rejected %d", res.Imported, res.Rejected)

		return nil
	},
}

var reportsDensityStreet bool

var reportsDensityCmd = &cobra.Command{
	Use:   "density",
	Short: "Count reports per H3 cell",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, repo, err := requireReviewLog(currentOptions())
		if err != nil {
			return err
		}
		defer db.Close()

		res := spatial.SuburbResolution
		if reportsDensityStreet {
			res = spatial.StreetResolution
		}

		return printDensity(cmd.Context(), cmd.OutOrStdout(), repo, res)
	},
}

func printDensity(ctx context.Context, w io.Writer, repo reports.Repository, res int) error {
	cells, err := repo.Density(ctx, res)
	if err != nil {
		return fmt.Errorf("computing density: %w", err)
	}

	a, b := strings.Repeat("─", 16), strings.Repeat("─", 7)
	fmt.Fprintf(w, "╭─%-16s─┬─%7s─╮\n", a, b)
	fmt.Fprintf(w, "│ %-16s │ %7s │\n", fmt.Sprintf("H3 cell (res %d)", res), "Reports")
	fmt.Fprintf(w, "├─%-16s─┼─%7s─┤\n", a, b)

	for _, c := range cells {
		fmt.Fprintf(w, "│ %-16s │ %7d │\n", c.Cell, c.Count)
	}

	fmt.Fprintf(w, "╰─%-16s─┴─%7s─╯\n", a, b)

	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}

func init() {
	reportsListCmd.Flags().IntVarP(&reportsListLimit, "limit", "n", 20, "maximum number of reports to show")
	reportsDensityCmd.Flags().BoolVar(&reportsDensityStreet, "street", false, "use street-level cells instead of suburb-level ones")

	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsExportCmd)
	reportsCmd.AddCommand(reportsImportCmd)
	reportsCmd.AddCommand(reportsDensityCmd)
	rootCmd.AddCommand(reportsCmd)
}
