// Copyright 2025 The PotholeMap Authors
// SPDX-License-Identifier: Apache-2.0

package reports

import (
	"errors"
)

// ErrorType classifies a rejected submission.
type ErrorType int

const (
	// ErrorTypeMissingSuburb the suburb field was empty.
	ErrorTypeMissingSuburb ErrorType = iota + 1
	// ErrorTypeMissingCoordinates latitude or longitude was unset.
	ErrorTypeMissingCoordinates
)

func (t ErrorType) String() string {
	switch t {
	case ErrorTypeMissingSuburb:
		return "missing_suburb"
	case ErrorTypeMissingCoordinates:
		return "missing_coordinates"
	default:
		return "unknown"
	}
}

// ValidationError is returned for a submission that fails the presence checks.
// Message is suitable for showing to the reporter.
type ValidationError struct {
	Type    ErrorType
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	errMissingSuburb = &ValidationError{
		Type:    ErrorTypeMissingSuburb,
		Message: "Please enter the suburb.",
	}
	errMissingCoordinates = &ValidationError{
		Type:    ErrorTypeMissingCoordinates,
		Message: "Please enter both latitude and longitude coordinates.",
	}
)

// IsMissingSuburb reports whether err rejects a submission for lacking a suburb.
func IsMissingSuburb(err error) bool {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Type == ErrorTypeMissingSuburb
	}

	return false
}

// IsMissingCoordinates reports whether err rejects a submission for lacking
// coordinates.
func IsMissingCoordinates(err error) bool {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Type == ErrorTypeMissingCoordinates
	}

	return false
}

// IsValidationError reports whether err is any submission rejection.
func IsValidationError(err error) bool {
	var vErr *ValidationError

	return errors.As(err, &vErr)
}
