package api

import (
	"context"

	"github.com/omniscale/osmapi/convert"
)

// Payloads for the create methods need to reference an open changeset,
// see convert.NodeObject, convert.WayObject and convert.RelationObject.
// Ids and payloads are not validated.

func (c *Client) CreateNode(ctx context.Context, node interface{}) (convert.Object, error) {
	return c.Put(ctx, "/0.6/node/create", node)
}

func (c *Client) GetNode(ctx context.Context, id string) (convert.Object, error) {
	return c.Get(ctx, "/0.6/node/"+id, nil)
}

func (c *Client) DeleteNode(ctx context.Context, id string) (convert.Object, error) {
	return c.Delete(ctx, "/0.6/node/"+id)
}

func (c *Client) CreateWay(ctx context.Context, way interface{}) (convert.Object, error) {
	return c.Put(ctx, "/0.6/way/create", way)
}

func (c *Client) GetWay(ctx context.Context, id string) (convert.Object, error) {
	return c.Get(ctx, "/0.6/way/"+id, nil)
}

func (c *Client) DeleteWay(ctx context.Context, id string) (convert.Object, error) {
	return c.Delete(ctx, "/0.6/way/"+id)
}

func (c *Client) CreateRelation(ctx context.Context, relation interface{}) (convert.Object, error) {
	return c.Put(ctx, "/0.6/relation/create", relation)
}

func (c *Client) GetRelation(ctx context.Context, id string) (convert.Object, error) {
	return c.Get(ctx, "/0.6/relation/"+id, nil)
}

func (c *Client) DeleteRelation(ctx context.Context, id string) (convert.Object, error) {
	return c.Delete(ctx, "/0.6/relation/"+id)
}
