// Copyright 2025 The PotholeMap Authors
// SPDX-License-Identifier: Apache-2.0

package suburbs

import (
	"strings"

	"golang.org/x/text/cases"
)

// Status is the outcome of a lookup.
type Status int

const (
	// NoQuery means the query was empty and no search was made.
	NoQuery Status = iota
	// NotFound means no suburb name contains the query.
	NotFound
	// Found means Result.Record holds the first matching suburb.
	Found
)

func (s Status) String() string {
	switch s {
	case NoQuery:
		return "no_query"
	case NotFound:
		return "not_found"
	case Found:
		return "found"
	default:
		return "unknown"
	}
}

// Result is returned by Lookup. Record is only meaningful when Status is Found.
type Result struct {
	Query  string
	Status Status
	Record Record
}

// fold returns s in a form suitable for caseless comparison. Casers carry
// state so a new one is built per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Lookup searches records, in order, for the first name containing query
// regardless of case. The query is used literally.
func Lookup(query string, records []Record) Result {
	return scan(query, records, func(i int) string { return fold(records[i].Name) })
}

// Lookup behaves like the package level Lookup over the directory contents.
func (d *Directory) Lookup(query string) Result {
	return scan(query, d.records, func(i int) string { return d.folded[i] })
}

// scan returns the first of records whose folded name, as given by name(i),
// contains the folded query.
func scan(query string, records []Record, name func(i int) string) Result {
	if query == "" {
		return Result{Query: query, Status: NoQuery}
	}

	q := fold(query)
	for i := range records {
		if strings.Contains(name(i), q) {
			return Result{Query: query, Status: Found, Record: records[i]}
		}
	}

	return Result{Query: query, Status: NotFound}
}
