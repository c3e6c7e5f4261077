package geojson

import (
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

type object struct {
	Type        string                 `json:"type"`
	Features    []object               `json:"features"`
	Geometry    *object                `json:"geometry"`
	Coordinates []interface{}          `json:"coordinates"`
	Properties  map[string]interface{} `json:"properties"`
}

type Point struct {
	Long float64
	Lat  float64
}

func newPointFromCoords(coords []interface{}) (Point, error) {
	p := Point{}
	// ignore z values
	if len(coords) < 2 {
		return p, errors.New("point list length < 2")
	}
	var ok bool
	p.Long, ok = coords[0].(float64)
	if !ok {
		return p, errors.New("invalid lon")
	}
	p.Lat, ok = coords[1].(float64)
	if !ok {
		return p, errors.New("invalid lat")
	}
	return p, nil
}

type LineString struct {
	Points []Point
}

func newLineStringFromCoords(coords []interface{}) (LineString, error) {
	ls := LineString{}

	for _, part := range coords {
		coord, ok := part.([]interface{})
		if !ok {
			return ls, errors.New("point not a list")
		}
		p, err := newPointFromCoords(coord)
		if err != nil {
			return ls, err
		}
		ls.Points = append(ls.Points, p)
	}
	return ls, nil
}

type Polygon struct {
	LineStrings []LineString
}

func newPolygonFromCoords(coords []interface{}) (Polygon, error) {
	poly := Polygon{}

	for _, part := range coords {
		lsCoords, ok := part.([]interface{})
		if !ok {
			return poly, errors.New("polygon linestring not a list")
		}
		ls, err := newLineStringFromCoords(lsCoords)
		if err != nil {
			return poly, err
		}
		poly.LineStrings = append(poly.LineStrings, ls)
	}
	return poly, nil
}

func newMultiPolygonFromCoords(coords []interface{}) ([]Polygon, error) {
	mp := []Polygon{}

	for _, part := range coords {
		polyCoords, ok := part.([]interface{})
		if !ok {
			return mp, errors.New("multipolygon polygon not a list")
		}
		poly, err := newPolygonFromCoords(polyCoords)
		if err != nil {
			return mp, err
		}
		mp = append(mp, poly)
	}
	return mp, nil
}

// ParseGeoJson returns all polygons of a Polygon, MultiPolygon, Feature or
// FeatureCollection document.
func ParseGeoJson(geojson string) ([]Polygon, error) {
	return ParseGeoJsonReader(strings.NewReader(geojson))
}

func ParseGeoJsonReader(r io.Reader) ([]Polygon, error) {
	decoder := json.NewDecoder(r)

	obj := &object{}
	err := decoder.Decode(obj)
	if err != nil {
		return nil, err
	}

	return constructPolygons(obj)
}

func constructPolygons(obj *object) ([]Polygon, error) {
	switch obj.Type {
	case "Point":
		return nil, errors.New("only Polygon or MultiPolygon are supported")
	case "LineString":
		return nil, errors.New("only Polygon or MultiPolygon are supported")
	case "Polygon":
		poly, err := newPolygonFromCoords(obj.Coordinates)
		return []Polygon{poly}, err
	case "MultiPolygon":
		poly, err := newMultiPolygonFromCoords(obj.Coordinates)
		return poly, err
	case "Feature":
		if obj.Geometry == nil {
			return nil, errors.New("feature without geometry")
		}
		geom, err := constructPolygons(obj.Geometry)
		return geom, err
	case "FeatureCollection":
		features := make([]Polygon, 0)

		for _, obj := range obj.Features {
			geom, err := constructPolygons(&obj)
			if err != nil {
				return nil, err
			}
			features = append(features, geom...)
		}
		return features, nil
	default:
		return nil, errors.New("unknown type: " + obj.Type)
	}
}

// Bounds returns the extent (minx, miny, maxx, maxy) of all polygons.
func Bounds(polygons []Polygon) ([4]float64, error) {
	bounds := [4]float64{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
	empty := true
	for _, p := range polygons {
		for _, ls := range p.LineStrings {
			for _, pt := range ls.Points {
				empty = false
				bounds[0] = math.Min(bounds[0], pt.Long)
				bounds[1] = math.Min(bounds[1], pt.Lat)
				bounds[2] = math.Max(bounds[2], pt.Long)
				bounds[3] = math.Max(bounds[3], pt.Lat)
			}
		}
	}
	if empty {
		return bounds, errors.New("no coordinates")
	}
	return bounds, nil
}

// BBox formats bounds as left,bottom,right,top as expected by the
// bbox parameter of the OSM API.
func BBox(bounds [4]float64) string {
	parts := make([]string, 4)
	for i, v := range bounds {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}
