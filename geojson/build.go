package geojson

import (
	"strconv"

	osm "github.com/omniscale/go-osm"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string            `json:"type"`
	ID         string            `json:"id"`
	Geometry   *Geometry         `json:"geometry"`
	Properties map[string]string `json:"properties"`
}

type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

type coord [2]float64
type ring []coord

// Build converts OSM elements to a FeatureCollection.
//
// Nodes are included as Points if they are tagged or not part of any way.
// Ways become LineStrings, closed ways become Polygons unless tagged with
// area=no. Multipolygon relations become (Multi)Polygons from their closed
// member ways; untagged member ways of multipolygons are not included on
// their own. Ways with missing nodes are skipped, other relation types are
// not converted.
func Build(nodes []osm.Node, ways []osm.Way, relations []osm.Relation) *FeatureCollection {
	fc := &FeatureCollection{Type: "FeatureCollection", Features: []Feature{}}

	coords := make(map[int64]coord, len(nodes))
	for _, n := range nodes {
		coords[n.ID] = coord{n.Long, n.Lat}
	}
	wayNodes := make(map[int64]struct{})
	for _, w := range ways {
		for _, ref := range w.Refs {
			wayNodes[ref] = struct{}{}
		}
	}
	mpWays := make(map[int64]struct{})
	for _, r := range relations {
		if r.Tags["type"] != "multipolygon" {
			continue
		}
		for _, m := range r.Members {
			if m.Type == osm.WayMember {
				mpWays[m.ID] = struct{}{}
			}
		}
	}

	for _, n := range nodes {
		if _, ok := wayNodes[n.ID]; ok && len(n.Tags) == 0 {
			continue
		}
		fc.Features = append(fc.Features, Feature{
			Type:       "Feature",
			ID:         "node/" + strconv.FormatInt(n.ID, 10),
			Geometry:   &Geometry{Type: "Point", Coordinates: coords[n.ID]},
			Properties: properties(n.Tags),
		})
	}

	rings := make(map[int64]ring, len(ways))
	for _, w := range ways {
		r, ok := wayRing(w.Refs, coords)
		if !ok {
			continue
		}
		rings[w.ID] = r
		if _, ok := mpWays[w.ID]; ok && len(w.Tags) == 0 {
			continue
		}
		geom := &Geometry{Type: "LineString", Coordinates: r}
		if w.IsClosed() && w.Tags["area"] != "no" {
			geom = &Geometry{Type: "Polygon", Coordinates: []ring{r}}
		}
		fc.Features = append(fc.Features, Feature{
			Type:       "Feature",
			ID:         "way/" + strconv.FormatInt(w.ID, 10),
			Geometry:   geom,
			Properties: properties(w.Tags),
		})
	}

	for _, r := range relations {
		if r.Tags["type"] != "multipolygon" {
			continue
		}
		geom := multipolygon(r, rings)
		if geom == nil {
			continue
		}
		fc.Features = append(fc.Features, Feature{
			Type:       "Feature",
			ID:         "relation/" + strconv.FormatInt(r.ID, 10),
			Geometry:   geom,
			Properties: properties(r.Tags),
		})
	}
	return fc
}

func properties(tags osm.Tags) map[string]string {
	props := make(map[string]string, len(tags))
	for k, v := range tags {
		props[k] = v
	}
	return props
}

func wayRing(refs []int64, coords map[int64]coord) (ring, bool) {
	if len(refs) < 2 {
		return nil, false
	}
	r := make(ring, 0, len(refs))
	for _, ref := range refs {
		c, ok := coords[ref]
		if !ok {
			return nil, false
		}
		r = append(r, c)
	}
	return r, true
}

func isClosedRing(r ring) bool {
	return len(r) >= 4 && r[0] == r[len(r)-1]
}

func multipolygon(rel osm.Relation, rings map[int64]ring) *Geometry {
	var polygons [][]ring
	var inners []ring
	for _, m := range rel.Members {
		if m.Type != osm.WayMember {
			continue
		}
		r, ok := rings[m.ID]
		if !ok || !isClosedRing(r) {
			continue
		}
		switch m.Role {
		case "inner":
			inners = append(inners, r)
		case "outer", "":
			polygons = append(polygons, []ring{r})
		}
	}
	for _, inner := range inners {
		for i := range polygons {
			if containsPoint(polygons[i][0], inner[0]) {
				polygons[i] = append(polygons[i], inner)
				break
			}
		}
	}
	switch len(polygons) {
	case 0:
		return nil
	case 1:
		return &Geometry{Type: "Polygon", Coordinates: polygons[0]}
	default:
		return &Geometry{Type: "MultiPolygon", Coordinates: polygons}
	}
}

// containsPoint checks whether p is inside of r (ray casting).
func containsPoint(r ring, p coord) bool {
	inside := false
	for i, j := 0, len(r)-1; i < len(r); j, i = i, i+1 {
		a, b := r[i], r[j]
		if (a[1] > p[1]) != (b[1] > p[1]) &&
			p[0] < (b[0]-a[0])*(p[1]-a[1])/(b[1]-a[1])+a[0] {
			inside = !inside
		}
	}
	return inside
}
