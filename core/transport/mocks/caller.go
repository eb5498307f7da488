package mocks

import (
	"context"

	"catalog-bootstrapper/core/transport"

	"github.com/stretchr/testify/mock"
)

// Caller is a mock implementation of transport.Caller
type Caller struct {
	mock.Mock
}

func (m *Caller) Push(ctx context.Context, req transport.Request) (*transport.Response, error) {
	args := m.Called(ctx, req)
	if resp, ok := args.Get(0).(*transport.Response); ok {
		return resp, args.Error(1)
	}
	return nil, args.Error(1)
}

// JSON builds a response whose data member is the given raw JSON document.
func JSON(data string) *transport.Response {
	return &transport.Response{Data: []byte(data)}
}
