// Package api is a client for the OpenStreetMap API 0.6.
//
// A Client maps each method to a single request against the API and
// returns the response converted to a convert.Object. Authenticated
// requests use Basic-Auth with the credentials from the session store, or
// an OAuth handle once one is set with SetOauth.
//
// The Client keeps the active changeset and the user id in its
// session.Store. It does not coordinate concurrent calls: two concurrent
// CreateChangeset calls both update the active changeset and the last
// response wins.
package api

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/omniscale/osmapi"
	"github.com/omniscale/osmapi/convert"
	"github.com/omniscale/osmapi/logging"
	"github.com/omniscale/osmapi/session"
)

var log = logging.NewLogger("api")

type Client struct {
	url       string
	store     session.Store
	client    *http.Client
	userAgent string

	limiter  *rate.Limiter
	observer RequestObserver

	// plain is used by Get and never sends credentials
	plain *basicTransport

	mu            sync.RWMutex
	oauth         OAuthHandle
	transport     Transport
	transportName string
}

// RequestObserver is notified after each request. status is 0 if no
// response was received.
type RequestObserver interface {
	ObserveRequest(method, transport string, status int, d time.Duration)
}

type Option func(*Client)

// WithHTTPClient sets the client used for all requests without OAuth.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.client = c
	}
}

func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// WithRateLimit delays requests so that they do not exceed l.
func WithRateLimit(l *rate.Limiter) Option {
	return func(cl *Client) {
		cl.limiter = l
	}
}

func WithRequestObserver(o RequestObserver) Option {
	return func(cl *Client) {
		cl.observer = o
	}
}

// New returns a Client for the API at url, e.g.
// https://api.openstreetmap.org/api
func New(url string, store session.Store, opts ...Option) *Client {
	c := &Client{
		url:       url,
		store:     store,
		userAgent: "osmapi " + osmapi.Version,
	}
	for _, o := range opts {
		o(c)
	}
	if c.client == nil {
		c.client = newHTTPClient()
	}
	c.plain = &basicTransport{
		baseURL:   c.url,
		client:    c.client,
		userAgent: c.userAgent,
	}
	c.transport = c.authTransport()
	c.transportName = "basic"
	return c
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 60 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

func (c *Client) authTransport() *basicTransport {
	return &basicTransport{
		baseURL:       c.url,
		client:        c.client,
		userAgent:     c.userAgent,
		authorization: c.GetAuthorization,
	}
}

func (c *Client) send(ctx context.Context, name string, t Transport, req Request) (convert.Object, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	start := time.Now()
	res, err := t.Send(ctx, req)
	if c.observer != nil {
		c.observer.ObserveRequest(req.Method, name, res.StatusCode, time.Since(start))
	}
	if err != nil {
		return nil, err
	}
	return res.Object, nil
}

// URL returns the API base URL.
func (c *Client) URL() string {
	return c.url
}

// Session returns the session store of the client.
func (c *Client) Session() session.Store {
	return c.store
}
