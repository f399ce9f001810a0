package models

import "github.com/jengzang/records-timeline/internal/spatial"

// FavoriteArea is a user-defined rectangle treated as a single place
type FavoriteArea struct {
	ID           int64   `json:"id" db:"id"`
	Name         string  `json:"name" db:"name"`
	SouthWestLat float64 `json:"swLat" db:"sw_lat"`
	SouthWestLon float64 `json:"swLon" db:"sw_lon"`
	NorthEastLat float64 `json:"neLat" db:"ne_lat"`
	NorthEastLon float64 `json:"neLon" db:"ne_lon"`
}

// Contains reports whether the coordinate lies inside the area, edges included.
// An area whose west edge is east of its east edge wraps across the antimeridian.
func (a FavoriteArea) Contains(lat, lon float64) bool {
	return spatial.NewArea(a.SouthWestLat, a.SouthWestLon, a.NorthEastLat, a.NorthEastLon).Contains(lat, lon)
}
