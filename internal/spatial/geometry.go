package spatial

import (
	"math"

	"github.com/paulmach/orb"
)

// Point represents a 2D point with latitude and longitude
type Point struct {
	Lat float64
	Lon float64
}

// Centroid calculates the arithmetic centroid of a set of points.
// Stay clusters span tens of meters, so the planar mean is accurate enough.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}

	var sumLat, sumLon float64
	for _, p := range points {
		sumLat += p.Lat
		sumLon += p.Lon
	}

	return Point{
		Lat: sumLat / float64(len(points)),
		Lon: sumLon / float64(len(points)),
	}
}

// PathLength calculates the total length of a path (sequence of points) in meters
func PathLength(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}

	var totalDist float64
	for i := 1; i < len(points); i++ {
		totalDist += HaversineDistance(points[i-1].Lat, points[i-1].Lon, points[i].Lat, points[i].Lon)
	}

	return totalDist
}

// Area is a lat/lon rectangle, stored as two bounds when it crosses the antimeridian
type Area []orb.Bound

// NewArea builds the rectangle between its south-west and north-east corners.
// Latitudes given in the wrong order are swapped. A west edge east of the
// east edge means the area crosses the antimeridian.
func NewArea(swLat, swLon, neLat, neLon float64) Area {
	minLat, maxLat := math.Min(swLat, neLat), math.Max(swLat, neLat)
	if swLon <= neLon {
		return Area{{Min: orb.Point{swLon, minLat}, Max: orb.Point{neLon, maxLat}}}
	}
	return Area{
		{Min: orb.Point{swLon, minLat}, Max: orb.Point{180, maxLat}},
		{Min: orb.Point{-180, minLat}, Max: orb.Point{neLon, maxLat}},
	}
}

// Contains reports whether the point lies inside the area, edges included
func (a Area) Contains(lat, lon float64) bool {
	p := orb.Point{lon, lat}
	for _, b := range a {
		if b.Contains(p) {
			return true
		}
	}
	return false
}
