// Copyright 2025 The PotholeMap Authors
// SPDX-License-Identifier: Apache-2.0

// Package mapview turns suburb lookups into map camera parameters and holds
// the fixed marker layer drawn on top of the map.
package mapview

import (
	"errors"
	"fmt"

	"github.com/xensor/potholemap/suburbs"
)

// Default camera over Sydney CBD.
const (
	DefaultLatitude  = -33.8688
	DefaultLongitude = 151.2093
)

// Zoom levels used for a located suburb and for the city-wide view.
const (
	ZoomedIn  = 14
	ZoomedOut = 9
)

// NotFoundMessage is shown to the user when a search has no match.
const NotFoundMessage = "Suburb not found."

// ErrSuburbNotFound is returned alongside the default view when a search
// matched nothing.
var ErrSuburbNotFound = errors.New("suburb not found")

// ViewState holds the camera parameters handed to the map.
type ViewState struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      float64 `json:"zoom"`
	Pitch     float64 `json:"pitch"`
}

// DefaultViewState returns the zoomed out city view.
func DefaultViewState() ViewState {
	return ViewState{
		Latitude:  DefaultLatitude,
		Longitude: DefaultLongitude,
		Zoom:      ZoomedOut,
	}
}

// Resolve computes the view for a lookup result. A NotFound result yields the
// default view together with ErrSuburbNotFound; NoQuery yields the default
// view and no error.
func Resolve(result suburbs.Result) (ViewState, error) {
	switch result.Status {
	case suburbs.Found:
		return ViewState{
			Latitude:  result.Record.Latitude,
			Longitude: result.Record.Longitude,
			Zoom:      ZoomedIn,
		}, nil
	case suburbs.NotFound:
		return DefaultViewState(), ErrSuburbNotFound
	default:
		return DefaultViewState(), nil
	}
}

// StatusMessage returns the text shown next to the search box, empty when
// there was nothing searched.
func StatusMessage(result suburbs.Result) string {
	switch result.Status {
	case suburbs.Found:
		return fmt.Sprintf("Found %s! Latitude: %v, Longitude: %v",
			result.Query, result.Record.Latitude, result.Record.Longitude)
	case suburbs.NotFound:
		return NotFoundMessage
	default:
		return ""
	}
}
