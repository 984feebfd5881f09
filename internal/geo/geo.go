// Package geo models the region lookup capability used to label a selected
// map point. It is a display concern injected by the caller, deliberately
// kept out of the forecast protocol itself.
package geo

import (
	"context"
	"errors"
)

// Resolver errors. Callers branch on these to decide between retrying later
// (rate limited), degrading the label (not found), and reporting an outage.
var (
	ErrNotFound    = errors.New("no region found for point")
	ErrRateLimited = errors.New("geocoder rate limit exceeded")
	ErrNetwork     = errors.New("geocoder unreachable")
)

// Point is a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// Region is a named area containing a resolved point.
type Region struct {
	// Name is the human-readable label, e.g. "Denver, Colorado".
	Name string

	// Boundary is the region outline as a closed polygon. May be empty when
	// the geocoder only returns a label.
	Boundary []Point
}

// Resolver resolves a geographic point into a labeled region.
type Resolver interface {
	Resolve(ctx context.Context, lat, lon float64) (*Region, error)
}
