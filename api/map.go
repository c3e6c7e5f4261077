package api

import (
	"context"

	"github.com/omniscale/osmapi/convert"
	"github.com/omniscale/osmapi/geojson"
)

// GetMap returns all elements inside bbox. bbox is passed as is and
// needs to be formatted as left,bottom,right,top (see geojson.BBox).
func (c *Client) GetMap(ctx context.Context, bbox string) (convert.Object, error) {
	return c.Get(ctx, "/0.6/map?bbox="+bbox, nil)
}

// GetMapGeoJSON returns the result of GetMap as GeoJSON.
func (c *Client) GetMapGeoJSON(ctx context.Context, bbox string) (*geojson.FeatureCollection, error) {
	data, err := c.GetMap(ctx, bbox)
	if err != nil {
		return nil, err
	}
	return convert.ObjectToGeoJSON(data)
}

// GetNotes returns the notes inside bbox (left,bottom,right,top).
func (c *Client) GetNotes(ctx context.Context, bbox string) (convert.Object, error) {
	return c.Get(ctx, "/0.6/notes?bbox="+bbox, nil)
}

func (c *Client) GetCapabilities(ctx context.Context) (convert.Object, error) {
	return c.Get(ctx, "/capabilities", nil)
}
