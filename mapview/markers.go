// Copyright 2025 The PotholeMap Authors
// SPDX-License-Identifier: Apache-2.0

package mapview

import (
	"fmt"
	"sort"

	"github.com/xensor/potholemap/spatial"
)

// Marker is a point of interest drawn on the map regardless of search state.
type Marker struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Tooltip returns the hover text for the marker.
func (m Marker) Tooltip() string {
	return fmt.Sprintf("Suburb: %s, Latitude: %v, Longitude: %v", m.Name, m.Latitude, m.Longitude)
}

// Point returns the marker coordinates.
func (m Marker) Point() spatial.Point {
	return spatial.Point{Lat: m.Latitude, Lng: m.Longitude}
}

// sample defect locations, kept until detections are wired in.
var markers = [...]Marker{
	{Name: "Bondi Beach", Latitude: -33.89388, Longitude: 151.2635},
	{Name: "Dundas", Latitude: -33.800, Longitude: 151.053},
	{Name: "Parramatta", Latitude: -33.7952747, Longitude: 151.0116649},
}

// Markers returns the marker layer. Every call returns a fresh copy of the
// same list in the same order.
func Markers() []Marker {
	out := make([]Marker, len(markers))
	copy(out, markers[:])

	return out
}

// NearbyMarker is a marker annotated with its distance from a view center.
type NearbyMarker struct {
	Marker
	DistanceMeters float64 `json:"distance_meters"`
}

// MarkersNear returns the markers within radius meters of the view center,
// closest first.
func MarkersNear(vs ViewState, radius float64) []NearbyMarker {
	center := &spatial.Point{Lat: vs.Latitude, Lng: vs.Longitude}

	var out []NearbyMarker

	for _, m := range markers {
		p := m.Point()
		if d := center.HaversineDistance(&p); d <= radius {
			out = append(out, NearbyMarker{Marker: m, DistanceMeters: d})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceMeters < out[j].DistanceMeters
	})

	return out
}
