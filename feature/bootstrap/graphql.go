package bootstrap

import (
	"context"

	"catalog-bootstrapper/core/transport"
)

// query executes one GraphQL document and decodes its data into T.
func query[T any](ctx context.Context, c transport.Caller, document string, variables map[string]any) (T, error) {
	var out T
	resp, err := c.Push(ctx, transport.Request{Query: document, Variables: variables})
	if err != nil {
		return out, err
	}
	if err := resp.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
