package main

import (
	"bytes"
	"context"
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	osm "github.com/omniscale/go-osm"

	"github.com/omniscale/osmapi/api"
	"github.com/omniscale/osmapi/convert"
	"github.com/omniscale/osmapi/logging"
	"github.com/omniscale/osmapi/session"
)

func TestParseTags(t *testing.T) {
	tags, err := parseTags("amenity=bench,name=a=b")
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 || tags["amenity"] != "bench" || tags["name"] != "a=b" {
		t.Error("unexpected tags", tags)
	}
	if tags, err := parseTags(""); err != nil || len(tags) != 0 {
		t.Error("unexpected result for empty tags", tags, err)
	}
	if _, err := parseTags("amenity"); err == nil {
		t.Error("expected error")
	}
}

func TestParseRefs(t *testing.T) {
	refs, err := parseRefs("1, 2,3")
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 3 || refs[0] != 1 || refs[2] != 3 {
		t.Error("unexpected refs", refs)
	}
	if _, err := parseRefs("1,x"); err == nil {
		t.Error("expected error")
	}
	if _, err := parseRefs(""); err == nil {
		t.Error("expected error")
	}
}

func TestParseMembers(t *testing.T) {
	members, err := parseMembers("way/5:outer,node/1:,relation/7")
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 3 {
		t.Fatal("unexpected members", members)
	}
	if members[0].ID != 5 || members[0].Type != osm.WayMember || members[0].Role != "outer" {
		t.Error("unexpected member", members[0])
	}
	if members[1].Type != osm.NodeMember || members[1].Role != "" {
		t.Error("unexpected member", members[1])
	}
	if members[2].Type != osm.RelationMember || members[2].ID != 7 {
		t.Error("unexpected member", members[2])
	}
	for _, invalid := range []string{"way", "area/1", "way/x:outer"} {
		if _, err := parseMembers(invalid); err == nil {
			t.Error("expected error for", invalid)
		}
	}
}

func TestWriteObject(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := writeObject(buf, convert.Object{"__text": "1234"}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "1234\n" {
		t.Errorf("unexpected output %q", buf.String())
	}

	buf.Reset()
	if err := writeObject(buf, convert.Object{}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected output %q", buf.String())
	}

	buf.Reset()
	obj := convert.Object{"osm": convert.Object{"node": convert.Object{"_id": "1"}}}
	if err := writeObject(buf, obj); err != nil {
		t.Fatal(err)
	}
	back, err := convert.XMLToObject(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if back.Path("osm", "node").Attr("id") != "1" {
		t.Error("unexpected output", buf.String())
	}
}

func TestLimitToBBox(t *testing.T) {
	dir, err := ioutil.TempDir("", "osmapi_test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	fname := filepath.Join(dir, "limitto.geojson")
	err = ioutil.WriteFile(fname, []byte(`{"type": "FeatureCollection", "features": [
		{"type": "Feature", "properties": {}, "geometry": {"type": "Polygon", "coordinates": [[[8, 50], [9.5, 50], [9.5, 51], [8, 50]]]}}
	]}`), 0644)
	if err != nil {
		t.Fatal(err)
	}

	bbox, err := limitToBBox(fname)
	if err != nil {
		t.Fatal(err)
	}
	if bbox != "8,50,9.5,51" {
		t.Error("unexpected bbox", bbox)
	}

	if _, err := limitToBBox(filepath.Join(dir, "missing.geojson")); err == nil {
		t.Error("expected error for missing file")
	}
}

// readonlyStore rejects clearing the credentials.
type readonlyStore struct {
	*session.Memory
}

func (s *readonlyStore) SetCredentials(token string) error {
	if token == "" {
		return errors.New("store is read-only")
	}
	return s.Memory.SetCredentials(token)
}

func TestValidateLogin(t *testing.T) {
	status := http.StatusUnauthorized
	body := "Couldn't authenticate you"
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	defer ts.Close()

	buf := &bytes.Buffer{}
	logging.SetOutput(buf)
	defer logging.SetOutput(os.Stderr)

	store := session.NewMemory()
	client := api.New(ts.URL+"/api", store)
	client.SetCredentials("olt", "wrong")
	if err := validateLogin(context.Background(), client); !api.IsStatus(err, http.StatusUnauthorized) {
		t.Fatal("expected 401 StatusError, got", err)
	}
	if store.Credentials() != "" {
		t.Error("rejected credentials not cleared", store.Credentials())
	}

	status, body = http.StatusOK, "<osm></osm>"
	client.SetCredentials("olt", "wrong")
	if err := validateLogin(context.Background(), client); err == nil {
		t.Fatal("expected error without user details")
	}
	if store.Credentials() != "" {
		t.Error("credentials without user not cleared", store.Credentials())
	}

	status, body = http.StatusUnauthorized, ""
	roStore := &readonlyStore{session.NewMemory()}
	client = api.New(ts.URL+"/api", roStore)
	client.SetCredentials("olt", "wrong")
	if err := validateLogin(context.Background(), client); err == nil {
		t.Fatal("expected error")
	}
	logging.Sync()
	if out := buf.String(); !strings.Contains(out, "rejected credentials are still stored") {
		t.Errorf("missing warning: %q", out)
	}

	status, body = http.StatusOK, `<osm><user id="7"/></osm>`
	client = api.New(ts.URL+"/api", store)
	client.SetCredentials("olt", "secret")
	if err := validateLogin(context.Background(), client); err != nil {
		t.Fatal(err)
	}
	if store.Credentials() == "" || store.UserID() != "7" {
		t.Error("valid login not stored", store.State())
	}
}
