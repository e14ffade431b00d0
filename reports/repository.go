// Copyright 2025 The PotholeMap Authors
// SPDX-License-Identifier: Apache-2.0

package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uber/h3-go/v4"
	"github.com/xensor/potholemap/spatial"
)

// CellCount is the number of reports falling in one H3 cell.
type CellCount struct {
	Cell  string `json:"cell"`
	Count int    `json:"count"`
}

// Repository is a Store that keeps reports for later review.
type Repository interface {
	Store

	// CreateSchema creates the reports table
	CreateSchema() error

	// List returns reports, newest first
	List(ctx context.Context, limit, offset int) ([]*Report, error)

	// GetAllSorted returns every report, oldest first
	GetAllSorted(ctx context.Context) ([]*Report, error)

	// Count returns the total number of reports
	Count(ctx context.Context) (int, error)

	// Density counts reports per H3 cell at the given resolution, busiest first
	Density(ctx context.Context, resolution int) ([]CellCount, error)

	// DB returns the underlying database connection
	DB() *sql.DB
}

type sqlReportRepository struct {
	db *sql.DB
}

// NewSQLReportRepository creates a repository over a DuckDB connection.
func NewSQLReportRepository(db *sql.DB) Repository {
	return &sqlReportRepository{db: db}
}

func (r *sqlReportRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlReportRepository) CreateSchema() error {
	_, err := r.db.Exec(`
		CREATE SEQUENCE IF NOT EXISTS reports_seq START 1;

		CREATE TABLE IF NOT EXISTS reports (
			id BIGINT PRIMARY KEY DEFAULT nextval('reports_seq'),
			suburb VARCHAR NOT NULL,
			latitude DOUBLE NOT NULL,
			longitude DOUBLE NOT NULL,
			description TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			h3_res6 BIGINT,
			h3_res8 BIGINT
		);
	`)
	if err != nil {
		return fmt.Errorf("creating reports table: %w", err)
	}

	return nil
}

func (r *sqlReportRepository) Save(ctx context.Context, report *Report) error {
	if report == nil {
		return errors.New("report can't be nil")
	}

	if err := report.computeH3(); err != nil {
		return err
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO reports (suburb, latitude, longitude, description, created_at, h3_res6, h3_res8)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`,
		report.Suburb,
		report.Latitude,
		report.Longitude,
		report.Description,
		report.CreatedAt,
		report.H3Suburb,
		report.H3Street,
	).Scan(&report.ID)
	if err != nil {
		return fmt.Errorf("inserting report: %w", err)
	}

	return nil
}

const selectReports = `
	SELECT id, suburb, latitude, longitude, description, created_at, h3_res6, h3_res8
	FROM reports
`

func (r *sqlReportRepository) query(ctx context.Context, query string, args ...any) ([]*Report, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reports: %w", err)
	}
	defer rows.Close()

	var out []*Report

	for rows.Next() {
		var (
			rep            Report
			suburb, street sql.NullInt64
		)

		if err := rows.Scan(
			&rep.ID,
			&rep.Suburb,
			&rep.Latitude,
			&rep.Longitude,
			&rep.Description,
			&rep.CreatedAt,
			&suburb,
			&street,
		); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}

		rep.H3Suburb = suburb.Int64
		rep.H3Street = street.Int64
		rep.CreatedAt = rep.CreatedAt.UTC()

		out = append(out, &rep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reports: %w", err)
	}

	return out, nil
}

func (r *sqlReportRepository) List(ctx context.Context, limit, offset int) ([]*Report, error) {
	if limit <= 0 {
		return r.query(ctx, selectReports+` ORDER BY id DESC OFFSET ?`, offset)
	}

	return r.query(ctx, selectReports+` ORDER BY id DESC LIMIT ? OFFSET ?`, limit, offset)
}

func (r *sqlReportRepository) GetAllSorted(ctx context.Context) ([]*Report, error) {
	return r.query(ctx, selectReports+` ORDER BY created_at, id`)
}

func (r *sqlReportRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting reports: %w", err)
	}

	return n, nil
}

func (r *sqlReportRepository) Density(ctx context.Context, resolution int) ([]CellCount, error) {
	var column string

	switch resolution {
	case spatial.SuburbResolution:
		column = "h3_res6"
	case spatial.StreetResolution:
		column = "h3_res8"
	default:
		return nil, fmt.Errorf("unsupported resolution %d, want %d or %d",
			resolution, spatial.SuburbResolution, spatial.StreetResolution)
	}

	// #nosec G202 - column comes from the switch above
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+column+` AS cell, COUNT(*) AS n
		FROM reports
		WHERE `+column+` IS NOT NULL AND `+column+` != 0
		GROUP BY cell
		ORDER BY n DESC, cell
	`)
	if err != nil {
		return nil, fmt.Errorf("querying density: %w", err)
	}
	defer rows.Close()

	var out []CellCount

	for rows.Next() {
		var (
			cell  int64
			count int
		)

		if err := rows.Scan(&cell, &count); err != nil {
			return nil, fmt.Errorf("scanning density: %w", err)
		}

		out = append(out, CellCount{Cell: h3.Cell(cell).String(), Count: count})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating density: %w", err)
	}

	return out, nil
}
