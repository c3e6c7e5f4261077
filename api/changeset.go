package api

import (
	"context"
	"net/url"

	"github.com/omniscale/osmapi/convert"
)

const createdBy = "Angular-OSM"

// CreateChangeset opens a new changeset and makes it the active
// changeset. The response contains the id of the new changeset as text.
func (c *Client) CreateChangeset(ctx context.Context, comment string) (convert.Object, error) {
	changeset := convert.Object{"osm": convert.Object{
		"changeset": convert.Object{
			"tag": []convert.Object{
				{"_k": "created_by", "_v": createdBy},
				{"_k": "comment", "_v": comment},
			},
		},
	}}
	resp, err := c.Put(ctx, "/0.6/changeset/create", changeset)
	if err != nil {
		return nil, err
	}
	if err := c.store.SetChangeset(resp.Text()); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetLastOpenedChangesetID looks up the open changesets of the current
// user and makes the first one the active changeset. It returns an empty
// id and clears the active changeset if the user has no open changeset.
func (c *Client) GetLastOpenedChangesetID(ctx context.Context) (string, error) {
	query := url.Values{}
	query.Set("user", c.store.UserID())
	query.Set("open", "true")
	resp, err := c.Get(ctx, "/0.6/changesets", query)
	if err != nil {
		return "", err
	}
	changesets := resp.Path("osm").Children("changeset")
	if len(changesets) == 0 {
		return "", c.store.SetChangeset("")
	}
	// TODO the API returns the most recently created changeset first, but
	// a user can have more than one open changeset. Let callers choose.
	id := changesets[0].Attr("id")
	if err := c.store.SetChangeset(id); err != nil {
		return "", err
	}
	return id, nil
}

// CloseChangeset closes the active changeset and clears it from the
// session.
func (c *Client) CloseChangeset(ctx context.Context) (convert.Object, error) {
	id := c.store.Changeset()
	resp, err := c.Put(ctx, "/0.6/changeset/"+id+"/close", nil)
	if err != nil {
		return nil, err
	}
	if err := c.store.SetChangeset(""); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) GetChangeset(ctx context.Context, id string) (convert.Object, error) {
	return c.Get(ctx, "/0.6/changeset/"+id, nil)
}

// ActiveChangeset returns the id of the active changeset, or an empty
// string.
func (c *Client) ActiveChangeset() string {
	return c.store.Changeset()
}
