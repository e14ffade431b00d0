// Copyright 2025 The PotholeMap Authors
// SPDX-License-Identifier: Apache-2.0

package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/xensor/potholemap/spatial"
)

// Report is an accepted submission.
type Report struct {
	ID int64 `json:"id"`
	Submission
	CreatedAt time.Time `json:"created_at"`
	H3Suburb  int64     `json:"-"`
	H3Street  int64     `json:"-"`
}

// Point returns the reported location.
func (r *Report) Point() spatial.Point {
	return spatial.Point{Lat: r.Latitude, Lng: r.Longitude}
}

func (r *Report) computeH3() error {
	p := r.Point()
	if !p.Valid() {
		r.H3Suburb, r.H3Street = 0, 0

		return nil
	}

	suburb, err := p.Cell(spatial.SuburbResolution)
	if err != nil {
		return err
	}

	street, err := p.Cell(spatial.StreetResolution)
	if err != nil {
		return err
	}

	r.H3Suburb = int64(suburb)
	r.H3Street = int64(street)

	return nil
}

// Store receives accepted reports.
type Store interface {
	Save(ctx context.Context, report *Report) error
}

// Discard is a Store that keeps nothing.
type Discard struct{}

// Save implements Store.
func (Discard) Save(_ context.Context, _ *Report) error { return nil }

// Intake gates submissions and hands accepted ones to a Store.
type Intake struct {
	store Store
	now   func() time.Time
}

// NewIntake creates an intake writing to store. A nil store discards.
func NewIntake(store Store) *Intake {
	if store == nil {
		store = Discard{}
	}

	return &Intake{store: store, now: time.Now}
}

// Submit validates s and, when accepted, passes it to the store. Validation
// failures are returned as *ValidationError.
func (in *Intake) Submit(ctx context.Context, s Submission) (*Report, error) {
	return in.accept(ctx, &Report{Submission: s})
}

// Restore is Submit for a report received earlier, such as an entry of an
// exported review log. The report keeps its CreatedAt unless it is zero and is
// given a new ID by the store.
func (in *Intake) Restore(ctx context.Context, r Report) (*Report, error) {
	r.ID = 0

	return in.accept(ctx, &r)
}

func (in *Intake) accept(ctx context.Context, report *Report) (*Report, error) {
	if err := Validate(report.Submission); err != nil {
		return nil, err
	}

	if report.CreatedAt.IsZero() {
		report.CreatedAt = in.now()
	}

	report.CreatedAt = report.CreatedAt.UTC()

	if err := in.store.Save(ctx, report); err != nil {
		return nil, fmt.Errorf("saving report: %w", err)
	}

	return report, nil
}
