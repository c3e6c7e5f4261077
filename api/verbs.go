package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/omniscale/osmapi/convert"
)

// Xhr sends an authenticated request, through the OAuth handle if one is
// set, with Basic-Auth otherwise.
func (c *Client) Xhr(ctx context.Context, req Request) (convert.Object, error) {
	c.mu.RLock()
	t, name := c.transport, c.transportName
	c.mu.RUnlock()
	return c.send(ctx, name, t, req)
}

// Get sends an anonymous GET request. It never uses the OAuth handle.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (convert.Object, error) {
	return c.send(ctx, "anonymous", c.plain, Request{Method: http.MethodGet, Path: path, Query: query})
}

// GetAuthenticated sends a GET request through Xhr.
func (c *Client) GetAuthenticated(ctx context.Context, path string) (convert.Object, error) {
	return c.Xhr(ctx, Request{Method: http.MethodGet, Path: path})
}

// Put sends content with a PUT request through Xhr.
func (c *Client) Put(ctx context.Context, path string, content interface{}) (convert.Object, error) {
	return c.Xhr(ctx, Request{Method: http.MethodPut, Path: path, Body: content})
}

// Delete sends a DELETE request through Xhr.
func (c *Client) Delete(ctx context.Context, path string) (convert.Object, error) {
	return c.Xhr(ctx, Request{Method: http.MethodDelete, Path: path})
}
