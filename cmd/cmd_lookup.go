// Copyright 2025 The PotholeMap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xensor/potholemap/mapview"
	"github.com/xensor/potholemap/suburbs"
)

var lookupJSON bool

var lookupCmd = &cobra.Command{
	Use:   "lookup [suburb]",
	Short: "Search the suburb directory and print the resulting map view",
	Long: `Searches the suburb directory the same way the Map page does: the first
suburb whose name contains the text, ignoring case, wins.

$ potholemap lookup bondi
found	Bondi	-33.8932	151.263
view	latitude=-33.8932 longitude=151.263 zoom=14 pitch=0
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := loadDirectory(currentOptions())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		result := dir.Lookup(strings.Join(args, " "))
		vs, resolveErr := mapview.Resolve(result)

		if lookupJSON {
			doc := struct {
				Status    string            `json:"status"`
				Suburb    *suburbs.Record   `json:"suburb,omitempty"`
				ViewState mapview.ViewState `json:"view_state"`
			}{Status: result.Status.String(), ViewState: vs}
			if result.Status == suburbs.Found {
				doc.Suburb = &result.Record
			}

			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")

			if err := enc.Encode(doc); err != nil {
				return fmt.Errorf("encoding result: %w", err)
			}
		} else {
			if result.Status == suburbs.Found {
				fmt.Fprintf(out, "%s\t%s\t%v\t%v\n", result.Status, result.Record.Name, result.Record.Latitude, result.Record.Longitude)
			} else {
				fmt.Fprintln(out, result.Status)
			}

			fmt.Fprintf(out, "view\tlatitude=%v longitude=%v zoom=%v pitch=%v\n", vs.Latitude, vs.Longitude, vs.Zoom, vs.Pitch)
		}

		return resolveErr
	},
}

func init() {
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(lookupCmd)
}
