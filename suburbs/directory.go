// Copyright 2025 The PotholeMap Authors
// SPDX-License-Identifier: Apache-2.0

// Package suburbs holds the read-only directory of Sydney suburbs and the
// free-text lookup over it.
package suburbs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xensor/potholemap/spatial"
)

// Record is a single row of the suburb directory.
type Record struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Point returns the record's coordinates.
func (r Record) Point() spatial.Point {
	return spatial.Point{Lat: r.Latitude, Lng: r.Longitude}
}

// Directory is an immutable, ordered table of suburbs. It is safe for
// concurrent use by multiple goroutines.
type Directory struct {
	records []Record
	folded  []string // case-folded names, parallel to records
}

// NewDirectory builds a directory from records, keeping their order. The
// slice is copied, later changes to it are not observed.
func NewDirectory(records []Record) *Directory {
	d := &Directory{
		records: make([]Record, len(records)),
		folded:  make([]string, len(records)),
	}

	copy(d.records, records)

	for i, r := range d.records {
		d.folded[i] = fold(r.Name)
	}

	return d
}

// Len returns the number of records.
func (d *Directory) Len() int {
	return len(d.records)
}

// Records returns a copy of the directory contents in stored order.
func (d *Directory) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)

	return out
}

// Load reads a directory from a CSV file.
func Load(path string) (*Directory, error) {
	f, err := os.Open(path) // #nosec G304 - path is provided by the operator
	if err != nil {
		return nil, fmt.Errorf("opening suburbs file: %w", err)
	}
	defer f.Close()

	d, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return d, nil
}

// Read parses CSV with a header row naming the Suburb, Latitude and Longitude
// columns. Header names are matched case-insensitively and may appear in any
// order; extra columns are ignored.
func Read(r io.Reader) (*Directory, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}

	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	nameCol, latCol, lngCol := -1, -1, -1

	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "suburb":
			nameCol = i
		case "latitude":
			latCol = i
		case "longitude":
			lngCol = i
		}
	}

	if nameCol < 0 || latCol < 0 || lngCol < 0 {
		return nil, fmt.Errorf("header must contain Suburb, Latitude and Longitude columns, got %q", header)
	}

	var records []Record

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		line, _ := reader.FieldPos(0)

		if len(row) <= max(nameCol, latCol, lngCol) {
			return nil, fmt.Errorf("line %d: expected at least %d fields, got %d", line, max(nameCol, latCol, lngCol)+1, len(row))
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(row[latCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing latitude: %w", line, err)
		}

		lng, err := strconv.ParseFloat(strings.TrimSpace(row[lngCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing longitude: %w", line, err)
		}

		records = append(records, Record{
			Name:      row[nameCol],
			Latitude:  lat,
			Longitude: lng,
		})
	}

	return NewDirectory(records), nil
}
