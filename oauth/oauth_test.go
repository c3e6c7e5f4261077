package oauth

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/omniscale/osmapi/api"
	"github.com/omniscale/osmapi/session"
)

func TestClientXhr(t *testing.T) {
	var gotAuth, gotPath, gotBody, gotType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		body, _ := ioutil.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte("1234"))
	}))
	defer ts.Close()

	c := StaticClient(context.Background(), ts.URL+"/", "secret-token")
	headers := http.Header{}
	headers.Set("Content-Type", "text/xml")
	resp, err := c.Xhr(context.Background(), api.OAuthRequest{
		Method:  "PUT",
		Path:    "/api/0.6/changeset/create",
		Body:    []byte("<osm/>"),
		Headers: headers,
	})
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if gotAuth != "Bearer secret-token" {
		t.Error("unexpected authorization", gotAuth)
	}
	if gotPath != "/api/0.6/changeset/create" {
		t.Error("unexpected path", gotPath)
	}
	if gotBody != "<osm/>" || gotType != "text/xml" {
		t.Error("unexpected body", gotBody, gotType)
	}
}

func TestClientAsHandle(t *testing.T) {
	var requests []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.Method+" "+r.URL.Path+" "+r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/0.6/changeset/create":
			w.Write([]byte("99"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	store := session.NewMemory()
	client := api.New(ts.URL+"/api", store)
	client.SetCredentials("olt", "secret")
	client.SetOauth(StaticClient(context.Background(), ts.URL, "tok"))

	if _, err := client.CreateChangeset(context.Background(), "test"); err != nil {
		t.Fatal(err)
	}
	if store.Changeset() != "99" {
		t.Error("changeset not stored", store.Changeset())
	}
	if _, err := client.GetUserPreferences(context.Background()); !api.IsStatus(err, 404) {
		t.Error("expected 404 StatusError, got", err)
	}
	if len(requests) != 2 || requests[0] != "PUT /api/0.6/changeset/create Bearer tok" {
		t.Error("unexpected requests", requests)
	}
}

func TestConfig(t *testing.T) {
	var form url.Values
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth2/token" {
			http.NotFound(w, r)
			return
		}
		r.ParseForm()
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"abc","token_type":"Bearer","scope":"read_prefs"}`))
	}))
	defer ts.Close()

	conf := NewConfig(ts.URL, "client", "", "urn:ietf:wg:oauth:2.0:oob")
	verifier := GenerateVerifier()

	authURL, err := url.Parse(conf.AuthCodeURL("state", verifier))
	if err != nil {
		t.Fatal(err)
	}
	if authURL.Path != "/oauth2/authorize" {
		t.Error("unexpected auth path", authURL.Path)
	}
	q := authURL.Query()
	if q.Get("code_challenge_method") != "S256" || q.Get("code_challenge") == "" {
		t.Error("missing PKCE challenge", authURL)
	}
	if q.Get("client_id") != "client" || q.Get("state") != "state" {
		t.Error("unexpected query", q)
	}
	if scope := q.Get("scope"); !strings.Contains(scope, "write_api") {
		t.Error("unexpected scope", scope)
	}

	tok, err := conf.Exchange(context.Background(), "code", verifier)
	if err != nil {
		t.Fatal(err)
	}
	if tok.AccessToken != "abc" {
		t.Error("unexpected token", tok)
	}
	if form.Get("code") != "code" || form.Get("code_verifier") != verifier {
		t.Error("unexpected token request", form)
	}
}
