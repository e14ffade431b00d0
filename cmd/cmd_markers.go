// Copyright 2025 The PotholeMap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xensor/potholemap/mapview"
)

var markersCmd = &cobra.Command{
	Use:   "markers",
	Short: "List the sample pothole markers drawn on the map",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		a, b, c := strings.Repeat("─", 14), strings.Repeat("─", 12), strings.Repeat("─", 12)
		fmt.Fprintf(out, "╭─%-14s─┬─%-12s─┬─%-12s─╮\n", a, b, c)
		fmt.Fprintf(out, "│ %-14s │ %12s │ %12s │\n", "Suburb", "Latitude", "Longitude")
		fmt.Fprintf(out, "├─%-14s─┼─%-12s─┼─%-12s─┤\n", a, b, c)

		for _, m := range mapview.Markers() {
			fmt.Fprintf(out, "│ %-14s │ %12.7f │ %12.7f │\n", m.Name, m.Latitude, m.Longitude)
		}

		fmt.Fprintf(out, "╰─%-14s─┴─%-12s─┴─%-12s─╯\n", a, b, c)
	},
}

func init() {
	rootCmd.AddCommand(markersCmd)
}
