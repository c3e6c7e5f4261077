package api

import (
	"context"

	"github.com/omniscale/osmapi/convert"
)

func (c *Client) GetUserByID(ctx context.Context, id string) (convert.Object, error) {
	return c.GetAuthenticated(ctx, "/0.6/user/"+id)
}

// GetUserDetails returns the details of the authenticated user.
func (c *Client) GetUserDetails(ctx context.Context) (convert.Object, error) {
	return c.GetAuthenticated(ctx, "/0.6/user/details")
}

func (c *Client) GetUserPreferences(ctx context.Context) (convert.Object, error) {
	return c.GetAuthenticated(ctx, "/0.6/user/preferences")
}

// PutUserPreferences sets a single preference. The value is sent as
// plain text.
func (c *Client) PutUserPreferences(ctx context.Context, key, value string) (convert.Object, error) {
	return c.Put(ctx, "/0.6/user/preferences/"+key, value)
}
