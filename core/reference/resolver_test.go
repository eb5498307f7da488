package reference

import (
	"context"
	"errors"
	"strings"
	"testing"

	"catalog-bootstrapper/core/transport"
	"catalog-bootstrapper/core/transport/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func operation(name string) any {
	return mock.MatchedBy(func(req transport.Request) bool {
		return strings.Contains(req.Query, name)
	})
}

const (
	opByRef  = "GET_ID_FROM_EXTERNAL_REFERENCE"
	opByPath = "GET_ID_FROM_PATH"
)

func TestResolve_ExternalReferenceFirst(t *testing.T) {
	management := new(mocks.Caller)
	catalog := new(mocks.Caller)

	management.On("Push", mock.Anything, operation(opByRef)).
		Return(mocks.JSON(`{"item":{"getMany":[{"id":"item-1","shape":{"identifier":"product"},"tree":{"parentId":"root"}}]}}`), nil).
		Once()

	r := New(Options{Management: management, Catalog: catalog})
	res, err := r.Resolve(context.Background(), Lookup{
		ExternalReference: "sku-1",
		CatalogPath:       "/shop/sku-1",
		Language:          "en",
		InstanceID:        "inst",
	})
	require.NoError(t, err)

	assert.Equal(t, Resolution{ItemID: "item-1", ParentID: "root"}, res)
	management.AssertExpectations(t)
	catalog.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)
}

func TestResolve_FallsBackToPathOnlyWhenReferenceIsEmpty(t *testing.T) {
	management := new(mocks.Caller)
	catalog := new(mocks.Caller)

	management.On("Push", mock.Anything, operation(opByRef)).
		Return(mocks.JSON(`{"item":{"getMany":[]}}`), nil).Once()
	catalog.On("Push", mock.Anything, operation(opByPath)).
		Return(mocks.JSON(`{"catalog":{"id":"item-2","parent":{"id":"folder"}}}`), nil).Once()

	r := New(Options{Management: management, Catalog: catalog})
	res, err := r.Resolve(context.Background(), Lookup{
		ExternalReference: "sku-2",
		CatalogPath:       "/shop/sku-2",
		Language:          "en",
	})
	require.NoError(t, err)

	assert.Equal(t, Resolution{ItemID: "item-2", ParentID: "folder"}, res)
	management.AssertExpectations(t)
	catalog.AssertExpectations(t)
}

func TestResolve_ShapeFilter(t *testing.T) {
	management := new(mocks.Caller)
	management.On("Push", mock.Anything, operation(opByRef)).
		Return(mocks.JSON(`{"item":{"getMany":[
			{"id":"doc","shape":{"identifier":"article"}},
			{"id":"prod","shape":{"identifier":"product"},"tree":{"parentId":"p"}}
		]}}`), nil)

	r := New(Options{Management: management})
	res, err := r.Resolve(context.Background(), Lookup{ExternalReference: "ref", ShapeIdentifier: "product"})
	require.NoError(t, err)
	assert.Equal(t, "prod", res.ItemID)

	res, err = r.Resolve(context.Background(), Lookup{ExternalReference: "ref", ShapeIdentifier: "folder"})
	require.NoError(t, err)
	assert.False(t, res.Found())
}

func TestResolve_LocalMapIsLastResort(t *testing.T) {
	catalog := new(mocks.Caller)
	catalog.On("Push", mock.Anything, operation(opByPath)).
		Return(mocks.JSON(`{"catalog":null}`), nil)

	r := New(Options{Catalog: catalog})
	r.Remember("/shop/new", Resolution{ItemID: "created", ParentID: "shop"})

	res, err := r.Resolve(context.Background(), Lookup{CatalogPath: "/shop/new", Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, "created", res.ItemID)

	res, err = r.Resolve(context.Background(), Lookup{CatalogPath: "/shop/unknown", Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, Resolution{}, res)
}

func TestResolve_TransportErrorIsReturned(t *testing.T) {
	management := new(mocks.Caller)
	management.On("Push", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	r := New(Options{Management: management})
	_, err := r.Resolve(context.Background(), Lookup{ExternalReference: "ref"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestResolve_CacheIsOptIn(t *testing.T) {
	tests := []struct {
		name      string
		useCache  bool
		wantCalls int
		wantLen   int
	}{
		{name: "disabled", useCache: false, wantCalls: 2, wantLen: 0},
		{name: "enabled", useCache: true, wantCalls: 1, wantLen: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := new(mocks.Caller)
			catalog.On("Push", mock.Anything, operation(opByPath)).
				Return(mocks.JSON(`{"catalog":{"id":"item"}}`), nil)

			cache := NewCache()
			r := New(Options{Catalog: catalog, Cache: cache, UseCache: tt.useCache})

			for i := 0; i < 2; i++ {
				res, err := r.Resolve(context.Background(), Lookup{CatalogPath: "/a", Language: "en"})
				require.NoError(t, err)
				assert.Equal(t, "item", res.ItemID)
			}

			catalog.AssertNumberOfCalls(t, "Push", tt.wantCalls)
			assert.Equal(t, tt.wantLen, cache.Len())
			if tt.useCache {
				cached, ok := cache.Get(PathKey("/a"))
				require.True(t, ok)
				assert.Equal(t, "item", cached.ItemID)
			}
		})
	}
}

func TestTopics(t *testing.T) {
	r := New(Options{})
	r.RememberTopic("en", "/colors/red/", "t-red")

	id, ok := r.ResolveTopic("en", "colors/red")
	require.True(t, ok)
	assert.Equal(t, "t-red", id)

	_, ok = r.ResolveTopic("no", "/colors/red")
	assert.False(t, ok)

	r.Reset()
	_, ok = r.ResolveTopic("en", "/colors/red")
	assert.False(t, ok)
}

func TestCache(t *testing.T) {
	c := NewCache()
	c.Set(ExternalReferenceKey("a"), Resolution{ItemID: "1"})
	c.Set(ExternalReferenceKey("a"), Resolution{ItemID: "1"})
	c.Set(PathKey("/b"), Resolution{ItemID: "2"})
	assert.Equal(t, 2, c.Len())

	res, ok := c.Get("externalReference:a")
	require.True(t, ok)
	assert.Equal(t, "1", res.ItemID)

	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok = c.Get("path:/b")
	assert.False(t, ok)
}
