// internal/geo/geo.go
package geo

import (
	"fmt"
	"math"
	"sort"

	"attendance_backend/internal/models"
)

const earthRadiusMeters = 6371000.0

// Point is one device position sample.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate rejects coordinates outside the valid lat/lng ranges.
func (p Point) Validate() error {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) {
		return fmt.Errorf("coordinates must be numbers")
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", p.Latitude)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", p.Longitude)
	}
	return nil
}

// Distance returns the great-circle (haversine) distance between two points
// in meters.
func Distance(a, b Point) float64 {
	latA := a.Latitude * math.Pi / 180
	latB := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLng := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Ranked is a location annotated with its distance from the user's point.
type Ranked struct {
	Location models.Location
	Distance float64
}

// InRange reports whether the point fell inside the location's geofence.
func (r Ranked) InRange() bool {
	return r.Distance <= r.Location.RadiusMeters
}

// Rank returns every active location annotated with its distance from p,
// sorted ascending. Inactive locations are dropped.
func Rank(p Point, locations []models.Location) ([]Ranked, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	ranked := make([]Ranked, 0, len(locations))
	for _, loc := range locations {
		if !loc.Active {
			continue
		}
		d := Distance(p, Point{Latitude: loc.Latitude, Longitude: loc.Longitude})
		ranked = append(ranked, Ranked{Location: loc, Distance: d})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Distance < ranked[j].Distance
	})
	return ranked, nil
}
