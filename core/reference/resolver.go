package reference

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"catalog-bootstrapper/core/transport"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const queryByExternalReference = `query GET_ID_FROM_EXTERNAL_REFERENCE($externalReferences: [String!], $language: String!, $instanceId: ID!) {
  item {
    getMany(externalReferences: $externalReferences, language: $language, instanceId: $instanceId) {
      id
      shape { identifier }
      tree { parentId }
    }
  }
}`

const queryByPath = `query GET_ID_FROM_PATH($path: String, $language: String) {
  catalog(path: $path, language: $language) {
    id
    parent { id }
  }
}`

// ErrNoCaller is returned when a lookup needs a caller that was never configured.
var ErrNoCaller = errors.New("no caller configured")

// Options configures a Resolver.
type Options struct {
	// Management answers external reference lookups.
	Management transport.Caller

	// Catalog answers catalog path lookups.
	Catalog transport.Caller

	// Cache stores resolutions. A fresh cache is created when nil.
	Cache *Cache

	// UseCache enables reading and writing Cache.
	UseCache bool

	Logger *zap.Logger
}

// Resolver turns references into remote ids.
type Resolver struct {
	mu         sync.RWMutex
	management transport.Caller
	catalog    transport.Caller

	cache    *Cache
	useCache bool
	logger   *zap.Logger

	local  sync.Map // catalog path -> Resolution
	topics sync.Map // language + path -> topic id
	group  singleflight.Group
}

// New creates a resolver.
func New(opts Options) *Resolver {
	if opts.Cache == nil {
		opts.Cache = NewCache()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Resolver{
		management: opts.Management,
		catalog:    opts.Catalog,
		cache:      opts.Cache,
		useCache:   opts.UseCache,
		logger:     opts.Logger,
	}
}

// SetCallers replaces the callers. Used once the instance-scoped catalog caller exists.
func (r *Resolver) SetCallers(management, catalog transport.Caller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if management != nil {
		r.management = management
	}
	if catalog != nil {
		r.catalog = catalog
	}
}

// Cache returns the resolver's cache.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// Reset drops every cached, remembered and topic entry.
func (r *Resolver) Reset() {
	r.cache.Clear()
	r.local.Clear()
	r.topics.Clear()
}

// Resolve looks up the item referenced by l.
func (r *Resolver) Resolve(ctx context.Context, l Lookup) (Resolution, error) {
	var res Resolution

	if l.ExternalReference != "" {
		var err error
		res, err = r.byExternalReference(ctx, l)
		if err != nil {
			return Resolution{}, err
		}
	}

	if !res.Found() && l.CatalogPath != "" {
		var err error
		res, err = r.byPath(ctx, l.CatalogPath, l.Language)
		if err != nil {
			return Resolution{}, err
		}

		if !res.Found() {
			if v, ok := r.local.Load(l.CatalogPath); ok {
				res = v.(Resolution)
			}
		}
	}

	return res, nil
}

// Remember records the resolution of an item created in this run.
func (r *Resolver) Remember(path string, res Resolution) {
	if path == "" || !res.Found() {
		return
	}
	r.local.Store(path, res)
}

// Remembered returns the locally remembered resolution of path.
func (r *Resolver) Remembered(path string) (Resolution, bool) {
	v, ok := r.local.Load(path)
	if !ok {
		return Resolution{}, false
	}
	return v.(Resolution), true
}

// RememberTopic records the id of the topic at path.
func (r *Resolver) RememberTopic(language, path, id string) {
	if id == "" {
		return
	}
	r.topics.Store(topicKey(language, path), id)
}

// ResolveTopic returns the id of the topic at path, if known.
func (r *Resolver) ResolveTopic(language, path string) (string, bool) {
	v, ok := r.topics.Load(topicKey(language, path))
	if !ok {
		return "", false
	}
	return v.(string), true
}

func topicKey(language, path string) string {
	return "topic:" + language + ":" + NormalizePath(path)
}

// NormalizePath makes sure path starts with one slash and has no trailing slash.
func NormalizePath(path string) string {
	path = strings.Trim(path, "/")
	return "/" + path
}

func (r *Resolver) byExternalReference(ctx context.Context, l Lookup) (Resolution, error) {
	key := ExternalReferenceKey(l.ExternalReference)
	if r.useCache {
		if res, ok := r.cache.Get(key); ok {
			return res, nil
		}
	}

	flightKey := key + "|" + l.ShapeIdentifier + "|" + l.Language
	v, err, _ := r.group.Do(flightKey, func() (any, error) {
		r.mu.RLock()
		caller := r.management
		r.mu.RUnlock()
		if caller == nil {
			return Resolution{}, fmt.Errorf("resolve external reference %q: %w", l.ExternalReference, ErrNoCaller)
		}

		resp, err := caller.Push(ctx, transport.Request{
			Query: queryByExternalReference,
			Variables: map[string]any{
				"externalReferences": []string{l.ExternalReference},
				"language":           l.Language,
				"instanceId":         l.InstanceID,
			},
		})
		if err != nil {
			return Resolution{}, fmt.Errorf("resolve external reference %q: %w", l.ExternalReference, err)
		}

		var data struct {
			Item struct {
				GetMany []struct {
					ID    string `json:"id"`
					Shape struct {
						Identifier string `json:"identifier"`
					} `json:"shape"`
					Tree *struct {
						ParentID string `json:"parentId"`
					} `json:"tree"`
				} `json:"getMany"`
			} `json:"item"`
		}
		if err := resp.Decode(&data); err != nil {
			return Resolution{}, err
		}

		for _, item := range data.Item.GetMany {
			if l.ShapeIdentifier != "" && item.Shape.Identifier != l.ShapeIdentifier {
				continue
			}
			res := Resolution{ItemID: item.ID}
			if item.Tree != nil {
				res.ParentID = item.Tree.ParentID
			}
			return res, nil
		}
		return Resolution{}, nil
	})
	if err != nil {
		return Resolution{}, err
	}

	res := v.(Resolution)
	if r.useCache && res.Found() {
		r.cache.Set(key, res)
	}
	return res, nil
}

func (r *Resolver) byPath(ctx context.Context, path, language string) (Resolution, error) {
	key := PathKey(path)
	if r.useCache {
		if res, ok := r.cache.Get(key); ok {
			return res, nil
		}
	}

	v, err, _ := r.group.Do(key+"|"+language, func() (any, error) {
		r.mu.RLock()
		caller := r.catalog
		r.mu.RUnlock()
		if caller == nil {
			return Resolution{}, nil
		}

		resp, err := caller.Push(ctx, transport.Request{
			Query: queryByPath,
			Variables: map[string]any{
				"path":     path,
				"language": language,
			},
		})
		if err != nil {
			return Resolution{}, fmt.Errorf("resolve catalog path %q: %w", path, err)
		}

		var data struct {
			Catalog *struct {
				ID     string `json:"id"`
				Parent *struct {
					ID string `json:"id"`
				} `json:"parent"`
			} `json:"catalog"`
		}
		if err := resp.Decode(&data); err != nil {
			return Resolution{}, err
		}
		if data.Catalog == nil {
			return Resolution{}, nil
		}

		res := Resolution{ItemID: data.Catalog.ID}
		if data.Catalog.Parent != nil {
			res.ParentID = data.Catalog.Parent.ID
		}
		return res, nil
	})
	if err != nil {
		return Resolution{}, err
	}

	res := v.(Resolution)
	if r.useCache && res.Found() {
		r.cache.Set(key, res)
	}
	if res.Found() {
		r.logger.Debug("Resolved catalog path", zap.String("path", path), zap.String("item_id", res.ItemID))
	}
	return res, nil
}
