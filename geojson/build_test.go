package geojson

import (
	"testing"

	osm "github.com/omniscale/go-osm"
)

func node(id int64, long, lat float64, tags osm.Tags) osm.Node {
	return osm.Node{Element: osm.Element{ID: id, Tags: tags}, Long: long, Lat: lat}
}

func way(id int64, tags osm.Tags, refs ...int64) osm.Way {
	return osm.Way{Element: osm.Element{ID: id, Tags: tags}, Refs: refs}
}

func featureByID(fc *FeatureCollection, id string) *Feature {
	for i := range fc.Features {
		if fc.Features[i].ID == id {
			return &fc.Features[i]
		}
	}
	return nil
}

func TestBuildNodesAndWays(t *testing.T) {
	nodes := []osm.Node{
		node(1, 8, 50, nil),
		node(2, 9, 50, nil),
		node(3, 9, 51, osm.Tags{"amenity": "bench"}),
		node(4, 8, 51, nil),
		node(5, 10, 52, nil),
	}
	ways := []osm.Way{
		way(10, osm.Tags{"building": "yes"}, 1, 2, 3, 4, 1),
		way(11, osm.Tags{"highway": "path"}, 1, 2),
		way(12, osm.Tags{"barrier": "fence", "area": "no"}, 1, 2, 3, 1),
		way(13, osm.Tags{"highway": "path"}, 1, 99),
	}
	fc := Build(nodes, ways, nil)

	if fc.Type != "FeatureCollection" {
		t.Error(fc.Type)
	}
	// 3 tagged, 5 not in any way; 1,2,4 untagged way nodes
	if featureByID(fc, "node/1") != nil || featureByID(fc, "node/4") != nil {
		t.Error("untagged way nodes included")
	}
	if f := featureByID(fc, "node/3"); f == nil || f.Properties["amenity"] != "bench" {
		t.Error("tagged node missing", f)
	}
	if f := featureByID(fc, "node/5"); f == nil || f.Geometry.Type != "Point" {
		t.Error("standalone node missing", f)
	}
	if f := featureByID(fc, "way/10"); f == nil || f.Geometry.Type != "Polygon" {
		t.Error("closed way not a polygon", f)
	}
	if f := featureByID(fc, "way/11"); f == nil || f.Geometry.Type != "LineString" {
		t.Error("open way not a linestring", f)
	}
	if f := featureByID(fc, "way/12"); f == nil || f.Geometry.Type != "LineString" {
		t.Error("area=no way not a linestring", f)
	}
	if f := featureByID(fc, "way/13"); f != nil {
		t.Error("way with missing node included", f)
	}
	if len(fc.Features) != 5 {
		t.Errorf("expected 5 features, got %d", len(fc.Features))
	}
}

func TestBuildMultipolygon(t *testing.T) {
	nodes := []osm.Node{
		node(1, 0, 0, nil), node(2, 10, 0, nil), node(3, 10, 10, nil), node(4, 0, 10, nil),
		node(5, 2, 2, nil), node(6, 4, 2, nil), node(7, 4, 4, nil), node(8, 2, 4, nil),
		node(9, 20, 20, nil), node(10, 30, 20, nil), node(11, 30, 30, nil),
	}
	ways := []osm.Way{
		way(100, nil, 1, 2, 3, 4, 1),
		way(101, nil, 5, 6, 7, 8, 5),
		way(102, osm.Tags{"natural": "water"}, 9, 10, 11, 9),
	}
	rels := []osm.Relation{{
		Element: osm.Element{ID: 1000, Tags: osm.Tags{"type": "multipolygon", "landuse": "forest"}},
		Members: []osm.Member{
			{ID: 100, Type: osm.WayMember, Role: "outer"},
			{ID: 101, Type: osm.WayMember, Role: "inner"},
			{ID: 102, Type: osm.WayMember, Role: "outer"},
		},
	}, {
		Element: osm.Element{ID: 1001, Tags: osm.Tags{"type": "route"}},
		Members: []osm.Member{{ID: 100, Type: osm.WayMember}},
	}}
	fc := Build(nodes, ways, rels)

	if featureByID(fc, "way/100") != nil || featureByID(fc, "way/101") != nil {
		t.Error("untagged multipolygon member ways included")
	}
	if featureByID(fc, "way/102") == nil {
		t.Error("tagged multipolygon member way missing")
	}
	if featureByID(fc, "relation/1001") != nil {
		t.Error("route relation included")
	}
	f := featureByID(fc, "relation/1000")
	if f == nil {
		t.Fatal("multipolygon missing")
	}
	if f.Geometry.Type != "MultiPolygon" {
		t.Fatal(f.Geometry.Type)
	}
	polys := f.Geometry.Coordinates.([][]ring)
	if len(polys) != 2 {
		t.Fatal(polys)
	}
	if len(polys[0]) != 2 {
		t.Error("inner ring not assigned to first outer", polys[0])
	}
	if len(polys[1]) != 1 {
		t.Error("unexpected inner ring in second outer", polys[1])
	}
}
