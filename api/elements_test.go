package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/omniscale/osmapi/convert"

	osm "github.com/omniscale/go-osm"
)

func TestElementPaths(t *testing.T) {
	c, f, _ := newTestClient(t)
	defer f.Close()
	ctx := context.Background()

	c.SetCredentials("olt", "secret")
	for _, path := range []string{"/api/0.6/node/42", "/api/0.6/way/42", "/api/0.6/relation/42"} {
		f.respond("GET "+path, 200, nodeXML)
		f.respond("DELETE "+path, 200, "3")
	}

	for _, tc := range []struct {
		call   func(context.Context, string) (convert.Object, error)
		method string
		path   string
	}{
		{c.GetNode, "GET", "/api/0.6/node/42"},
		{c.GetWay, "GET", "/api/0.6/way/42"},
		{c.GetRelation, "GET", "/api/0.6/relation/42"},
		{c.DeleteNode, "DELETE", "/api/0.6/node/42"},
		{c.DeleteWay, "DELETE", "/api/0.6/way/42"},
		{c.DeleteRelation, "DELETE", "/api/0.6/relation/42"},
	} {
		if _, err := tc.call(ctx, "42"); err != nil {
			t.Fatal(tc.path, err)
		}
		req := f.LastRequest(t)
		if req.Method != tc.method || req.Path != tc.path {
			t.Errorf("expected %s %s, got %s %s", tc.method, tc.path, req.Method, req.Path)
		}
		if tc.method == "GET" && req.Authorization != "" {
			t.Error("GET sent authorization", tc.path)
		}
		if tc.method == "DELETE" && req.Authorization != c.GetAuthorization() {
			t.Error("DELETE without authorization", tc.path)
		}
	}
}

func TestGetNode(t *testing.T) {
	c, f, _ := newTestClient(t)
	defer f.Close()

	f.respond("GET /api/0.6/node/42", 200, nodeXML)
	resp, err := c.GetNode(context.Background(), "42")
	if err != nil {
		t.Fatal(err)
	}
	node := resp.Path("osm", "node")
	if node.Attr("id") != "42" || node.Attr("lat") != "52.5" {
		t.Error("unexpected node", node)
	}
	if tag := node.Child("tag"); tag.Attr("k") != "amenity" || tag.Attr("v") != "bench" {
		t.Error("unexpected tag", tag)
	}

	_, err = c.GetNode(context.Background(), "43")
	if !IsStatus(err, http.StatusNotFound) {
		t.Error("expected 404 StatusError, got", err)
	}
}

func TestCreateElements(t *testing.T) {
	c, f, _ := newTestClient(t)
	defer f.Close()
	ctx := context.Background()

	c.SetCredentials("olt", "secret")
	f.respond("PUT /api/0.6/node/create", 200, "101")
	f.respond("PUT /api/0.6/way/create", 200, "102")
	f.respond("PUT /api/0.6/relation/create", 200, "103")

	node := &osm.Node{Lat: 52.5, Long: 13.4}
	node.Tags = osm.Tags{"amenity": "bench"}
	resp, err := c.CreateNode(ctx, convert.NodeObject(node, "1234"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Text() != "101" {
		t.Error("unexpected response", resp)
	}
	req := f.LastRequest(t)
	if req.ContentType != "text/xml; charset=utf-8" {
		t.Error("unexpected content type", req.ContentType)
	}
	body, err := convert.XMLToObject([]byte(req.Body))
	if err != nil {
		t.Fatal(err)
	}
	n := body.Path("osm", "node")
	if n.Attr("changeset") != "1234" || n.Attr("lat") != "52.5" || n.Attr("lon") != "13.4" {
		t.Error("unexpected node payload", req.Body)
	}

	way := &osm.Way{Refs: []int64{1, 2}}
	if _, err := c.CreateWay(ctx, convert.WayObject(way, "1234")); err != nil {
		t.Fatal(err)
	}
	body, _ = convert.XMLToObject([]byte(f.LastRequest(t).Body))
	if nds := body.Path("osm", "way").Children("nd"); len(nds) != 2 || nds[1].Attr("ref") != "2" {
		t.Error("unexpected way payload", body)
	}

	rel := &osm.Relation{Members: []osm.Member{{ID: 5, Type: osm.WayMember, Role: "outer"}}}
	if _, err := c.CreateRelation(ctx, convert.RelationObject(rel, "1234")); err != nil {
		t.Fatal(err)
	}
	body, _ = convert.XMLToObject([]byte(f.LastRequest(t).Body))
	if m := body.Path("osm", "relation", "member"); m.Attr("type") != "way" || m.Attr("role") != "outer" {
		t.Error("unexpected relation payload", body)
	}

	// raw XML payloads are sent unchanged
	raw := []byte(`<osm><node changeset="1234" lat="1" lon="2"/></osm>`)
	if _, err := c.CreateNode(ctx, raw); err != nil {
		t.Fatal(err)
	}
	if body := f.LastRequest(t).Body; body != string(raw) {
		t.Error("unexpected body", body)
	}

	if _, err := c.CreateNode(ctx, 42); err == nil {
		t.Error("expected error for unsupported payload")
	}
}
