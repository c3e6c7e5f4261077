// Package oauth implements api.OAuthHandle with OAuth 2.0 bearer tokens
// and the authorization code flow with PKCE of the OSM website.
package oauth

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/omniscale/osmapi/api"
	"github.com/omniscale/osmapi/logging"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

var log = logging.NewLogger("oauth")

// DefaultScopes are requested by AuthCodeURL if Config.Scopes is empty.
var DefaultScopes = []string{"read_prefs", "write_prefs", "write_api", "write_notes"}

// Client sends requests relative to root (e.g. https://api.openstreetmap.org)
// and authorizes them with tokens from a TokenSource.
type Client struct {
	root string
	http *http.Client
}

// NewClient returns a Client that uses ts for all requests. The http.Client
// in ctx (oauth2.HTTPClient) is used as base transport if present.
func NewClient(ctx context.Context, root string, ts oauth2.TokenSource) *Client {
	return &Client{
		root: strings.TrimRight(root, "/"),
		http: oauth2.NewClient(ctx, ts),
	}
}

// Xhr implements api.OAuthHandle.
func (c *Client) Xhr(ctx context.Context, req api.OAuthRequest) (*http.Response, error) {
	var body io.Reader = http.NoBody
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	r, err := http.NewRequestWithContext(ctx, req.Method, c.root+req.Path, body)
	if err != nil {
		return nil, err
	}
	for k, v := range req.Headers {
		r.Header[k] = v
	}
	log.Debugf("%s %s", req.Method, r.URL)
	return c.http.Do(r)
}

// Config describes an application registered at the OSM website.
type Config struct {
	oauth2.Config
}

// NewConfig returns a Config for the authorization server at root
// (e.g. https://www.openstreetmap.org).
func NewConfig(root, clientID, clientSecret, redirectURL string) *Config {
	root = strings.TrimRight(root, "/")
	return &Config{oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       DefaultScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  root + "/oauth2/authorize",
			TokenURL: root + "/oauth2/token",
		},
	}}
}

// GenerateVerifier returns a new PKCE code verifier. The verifier needs
// to be passed to AuthCodeURL and Exchange.
func GenerateVerifier() string {
	return oauth2.GenerateVerifier()
}

// AuthCodeURL returns the URL the user needs to visit to authorize the
// application.
func (c *Config) AuthCodeURL(state, verifier string) string {
	return c.Config.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
}

// Exchange converts the authorization code into a token.
func (c *Config) Exchange(ctx context.Context, code, verifier string) (*oauth2.Token, error) {
	tok, err := c.Config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, errors.Wrap(err, "exchanging authorization code")
	}
	return tok, nil
}

// StaticClient returns a Client for a previously obtained access token.
func StaticClient(ctx context.Context, root, accessToken string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	return NewClient(ctx, root, ts)
}
