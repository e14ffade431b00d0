// Copyright 2025 The PotholeMap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xensor/potholemap/reports"
	"github.com/xensor/potholemap/suburbs"
)

// Options are resolved from flags, POTHOLEMAP_* environment variables and an
// optional config file, in that order of precedence.
type Options struct {
	SuburbsPath string
	ReportsDB   string
	Addr        string
}

var config = viper.New()

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (yaml, toml or json)")
	flags.String("suburbs", "data/sydney_suburbs.csv", "CSV file with Suburb, Latitude and Longitude columns")
	flags.String("reports-db", "", "DuckDB file keeping accepted reports for review; empty keeps nothing")

	for _, name := range []string{"config", "suburbs", "reports-db"} {
		if err := config.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	config.SetEnvPrefix("POTHOLEMAP")
	config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	config.AutomaticEnv()
}

func loadConfig(_ *cobra.Command, _ []string) error {
	path := config.GetString("config")
	if path == "" {
		return nil
	}

	config.SetConfigFile(path)

	if err := config.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	log.Printf("Using config file %s", config.ConfigFileUsed())

	return nil
}

func currentOptions() Options {
	return Options{
		SuburbsPath: config.GetString("suburbs"),
		ReportsDB:   config.GetString("reports-db"),
		Addr:        config.GetString("addr"),
	}
}

func loadDirectory(opts Options) (*suburbs.Directory, error) {
	dir, err := suburbs.Load(opts.SuburbsPath)
	if err != nil {
		return nil, fmt.Errorf("loading suburbs: %w", err)
	}

	log.Printf("Loaded %d suburbs from %s", dir.Len(), opts.SuburbsPath)

	return dir, nil
}

// openReviewLog opens the DuckDB review log. It returns a nil repository when
// no path is configured.
func openReviewLog(opts Options) (*sql.DB, reports.Repository, error) {
	if opts.ReportsDB == "" {
		return nil, nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.ReportsDB), 0o750); err != nil {
		return nil, nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("duckdb", opts.ReportsDB)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	repo := reports.NewSQLReportRepository(db)
	if err := repo.CreateSchema(); err != nil {
		db.Close()

		return nil, nil, fmt.Errorf("creating reports schema: %w", err)
	}

	return db, repo, nil
}

// requireReviewLog is openReviewLog for commands that make no sense without one.
func requireReviewLog(opts Options) (*sql.DB, reports.Repository, error) {
	if opts.ReportsDB == "" {
		return nil, nil, errors.New("no review log configured, set --reports-db or POTHOLEMAP_REPORTS_DB")
	}

	return openReviewLog(opts)
}
