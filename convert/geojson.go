package convert

import "github.com/omniscale/osmapi/geojson"

// ObjectToGeoJSON converts the Object of a /map response to GeoJSON.
func ObjectToGeoJSON(obj Object) (*geojson.FeatureCollection, error) {
	data, err := Decode(obj)
	if err != nil {
		return nil, err
	}
	return geojson.Build(data.Nodes, data.Ways, data.Relations), nil
}
