package api

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/omniscale/osmapi/session"
)

type recordedRequest struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	ContentType   string
	Body          string
}

type response struct {
	status int
	body   string
}

// fakeAPI is an OSM API server that answers with fixed responses per
// "METHOD /path" and records all requests.
type fakeAPI struct {
	*httptest.Server
	mu        sync.Mutex
	requests  []recordedRequest
	responses map[string]response
	handler   func(w http.ResponseWriter, r *recordedRequest) bool
}

func newFakeAPI(t *testing.T) *fakeAPI {
	f := &fakeAPI{responses: make(map[string]response)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	return f
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := ioutil.ReadAll(r.Body)
	rec := recordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		RawQuery:      r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		Body:          string(body),
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	handler := f.handler
	resp, ok := f.responses[r.Method+" "+r.URL.Path]
	f.mu.Unlock()

	if handler != nil && handler(w, &rec) {
		return
	}
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if resp.status != 0 {
		w.WriteHeader(resp.status)
	}
	w.Write([]byte(resp.body))
}

func (f *fakeAPI) respond(methodPath string, status int, body string) {
	f.mu.Lock()
	f.responses[methodPath] = response{status, body}
	f.mu.Unlock()
}

func (f *fakeAPI) setHandler(h func(w http.ResponseWriter, r *recordedRequest) bool) {
	f.mu.Lock()
	f.handler = h
	f.mu.Unlock()
}

func (f *fakeAPI) Requests() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func (f *fakeAPI) LastRequest(t *testing.T) recordedRequest {
	reqs := f.Requests()
	if len(reqs) == 0 {
		t.Fatal("no request")
	}
	return reqs[len(reqs)-1]
}

func newTestClient(t *testing.T) (*Client, *fakeAPI, *session.Memory) {
	f := newFakeAPI(t)
	store := session.NewMemory()
	return New(f.URL+"/api", store), f, store
}

// fakeOAuth is an OAuthHandle that answers with fixed responses.
type fakeOAuth struct {
	mu        sync.Mutex
	requests  []OAuthRequest
	responses map[string]string
	err       error

	// noResponse makes Xhr return neither response nor error
	noResponse bool
}

func (o *fakeOAuth) Xhr(ctx context.Context, req OAuthRequest) (*http.Response, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.requests = append(o.requests, req)
	if o.err != nil {
		return nil, o.err
	}
	if o.noResponse {
		return nil, nil
	}
	body, ok := o.responses[req.Method+" "+req.Path]
	status := http.StatusOK
	if !ok {
		status = http.StatusNotFound
		body = "not found"
	}
	return &http.Response{
		Status:     http.StatusText(status),
		StatusCode: status,
		Body:       ioutil.NopCloser(strings.NewReader(body)),
	}, nil
}

const userDetailsXML = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6" generator="OpenStreetMap server">
  <user id="7" display_name="olt" account_created="2010-01-01T00:00:00Z">
    <contributor-terms agreed="true"/>
  </user>
</osm>`

const nodeXML = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
 <node id="42" lat="52.5" lon="13.4" version="2" changeset="1234" user="olt" uid="7">
  <tag k="amenity" v="bench"/>
 </node>
</osm>`
