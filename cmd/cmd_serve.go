// Copyright 2025 The PotholeMap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/xensor/potholemap/dashboard"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard web server",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		opts := currentOptions()

		dir, err := loadDirectory(opts)
		if err != nil {
			return err
		}

		db, repo, err := openReviewLog(opts)
		if err != nil {
			return err
		}

		if db != nil {
			defer db.Close()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return dashboard.NewServer(dir, repo).Run(ctx, opts.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "localhost:8080", "address to listen on")

	if err := config.BindPFlag("addr", serveCmd.Flags().Lookup("addr")); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(serveCmd)
}
