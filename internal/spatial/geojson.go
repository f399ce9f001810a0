package spatial

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LineString converts an ordered path into an orb line (lon, lat order)
func LineString(points []Point) orb.LineString {
	ls := make(orb.LineString, 0, len(points))
	for _, p := range points {
		ls = append(ls, orb.Point{p.Lon, p.Lat})
	}
	return ls
}

// EncodePathGeoJSON serializes a path as a GeoJSON LineString geometry
func EncodePathGeoJSON(points []Point) (string, error) {
	if len(points) == 0 {
		return "", nil
	}
	data, err := geojson.NewGeometry(LineString(points)).MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("failed to encode path: %w", err)
	}
	return string(data), nil
}

// DecodePathGeoJSON parses a GeoJSON LineString geometry back into a path
func DecodePathGeoJSON(data string) ([]Point, error) {
	if data == "" {
		return nil, nil
	}
	geom, err := geojson.UnmarshalGeometry([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode path: %w", err)
	}
	ls, ok := geom.Geometry().(orb.LineString)
	if !ok {
		return nil, fmt.Errorf("unexpected geometry type %s", geom.Type)
	}

	points := make([]Point, 0, len(ls))
	for _, p := range ls {
		points = append(points, Point{Lat: p.Lat(), Lon: p.Lon()})
	}
	return points, nil
}

// PathFeature wraps a path and its properties into a GeoJSON feature
func PathFeature(points []Point, properties map[string]interface{}) *geojson.Feature {
	f := geojson.NewFeature(LineString(points))
	for k, v := range properties {
		f.Properties[k] = v
	}
	return f
}
