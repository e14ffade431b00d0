// Copyright 2025 The PotholeMap Authors
// SPDX-License-Identifier: Apache-2.0

package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"
)

// SeedData is the JSON file format used to move reports between review logs.
type SeedData struct {
	Version     string    `json:"version"`
	LastUpdated time.Time `json:"last_updated"`
	Reports     []*Report `json:"reports"`
}

// ExportToJSON writes every report, oldest first, to filepath.
func ExportToJSON(ctx context.Context, repo Repository, filepath string) (int, error) {
	all, err := repo.GetAllSorted(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing reports: %w", err)
	}

	seed := &SeedData{
		Version:     "1.0",
		LastUpdated: time.Now().UTC(),
		Reports:     all,
	}

	data, err := json.MarshalIndent(seed, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshaling JSON: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0o600); err != nil {
		return 0, fmt.Errorf("writing file: %w", err)
	}

	return len(all), nil
}

// ReadSeed reads a file written by ExportToJSON.
func ReadSeed(filepath string) (*SeedData, error) {
	data, err := os.ReadFile(filepath) // #nosec G304 - filepath is provided by admin
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var seed SeedData
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	return &seed, nil
}

// ImportResult summarizes an import.
type ImportResult struct {
	Imported int
	Rejected int
}

// Import restores every report in seed through the intake, so entries that
// would not be accepted today are skipped. Accepted entries keep their
// CreatedAt. progress, when not nil, is called once per entry.
func Import(ctx context.Context, intake *Intake, seed *SeedData, progress func()) (ImportResult, error) {
	var res ImportResult

	for i, r := range seed.Reports {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		err := errors.New("empty entry")
		if r != nil {
			_, err = intake.Restore(ctx, *r)
		}

		switch {
		case err == nil:
			res.Imported++
		case r == nil || IsValidationError(err):
			log.Printf("Skipping report %d: %v", i, err)

			res.Rejected++
		default:
			return res, fmt.Errorf("importing report %d: %w", i, err)
		}

		if progress != nil {
			progress()
		}
	}

	return res, nil
}
