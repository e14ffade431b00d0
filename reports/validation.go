// Copyright 2025 The PotholeMap Authors
// SPDX-License-Identifier: Apache-2.0

package reports

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Submission is a pothole report as entered in the form.
//
// A zero latitude or longitude counts as not entered, the same as an empty
// suburb. This matches how the form has always behaved.
type Submission struct {
	Suburb      string  `json:"suburb" form:"suburb" validate:"required"`
	Latitude    float64 `json:"latitude" form:"latitude" validate:"required"`
	Longitude   float64 `json:"longitude" form:"longitude" validate:"required"`
	Description string  `json:"description" form:"description"`
}

// SuccessMessage is shown once a submission has been accepted.
func (s Submission) SuccessMessage() string {
	return fmt.Sprintf("Thank you for reporting! A pothole in %s has been logged for review.", s.Suburb)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the presence of the required fields. The suburb is checked
// before the coordinates. A nil return means the submission is accepted.
func Validate(s Submission) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating submission: %w", err)
	}

	missing := make(map[string]bool, len(fieldErrs))
	for _, fe := range fieldErrs {
		missing[fe.StructField()] = true
	}

	switch {
	case missing["Suburb"]:
		return errMissingSuburb
	case missing["Latitude"], missing["Longitude"]:
		return errMissingCoordinates
	default:
		return fmt.Errorf("validating submission: %w", err)
	}
}
