package bootstrap

import (
	"context"
	"fmt"
	"time"

	"catalog-bootstrapper/core/transport"

	"go.uber.org/zap"
)

const queryInstance = `query GET_INSTANCE($identifier: String!) {
  instance {
    get(identifier: $identifier) {
      id
      identifier
      staticAuthToken
      rootItemId
    }
  }
}`

// ResolveInstance looks up the target instance and builds the session. The lookup
// runs once per Bootstrapper: concurrent and later calls share its outcome,
// including a failure.
func (b *Bootstrapper) ResolveInstance(ctx context.Context) (*Session, error) {
	b.mu.Lock()
	first := b.instanceDone == nil
	if first {
		b.instanceDone = make(chan struct{})
		b.state = StateResolvingInstance
	}
	done := b.instanceDone
	b.mu.Unlock()

	if first {
		sess, err := b.resolveInstance(ctx)

		b.mu.Lock()
		b.session, b.instanceErr = sess, err
		if err != nil {
			b.state = StateFailed
		}
		b.mu.Unlock()
		close(done)
	}

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session, b.instanceErr
}

// Session returns the resolved session, or nil before resolution succeeded.
func (b *Bootstrapper) Session() *Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session
}

func (b *Bootstrapper) resolveInstance(ctx context.Context) (*Session, error) {
	// Credentials and identifier may be set in either order shortly after each other.
	timer := time.NewTimer(b.opts.Run.graceWindow())
	defer timer.Stop()
	select {
	case <-b.ready:
	case <-timer.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	b.mu.Lock()
	creds := b.credentials
	identifier := b.identifier
	management := b.management
	b.mu.Unlock()

	if management == nil {
		return nil, ErrMissingCredentials
	}
	if identifier == "" {
		return nil, ErrMissingIdentifier
	}

	data, err := query[struct {
		Instance struct {
			Get *struct {
				ID              string `json:"id"`
				Identifier      string `json:"identifier"`
				StaticAuthToken string `json:"staticAuthToken"`
				RootItemID      string `json:"rootItemId"`
			} `json:"get"`
		} `json:"instance"`
	}](ctx, management, queryInstance, map[string]any{"identifier": identifier})
	if err != nil {
		return nil, fmt.Errorf("resolve instance %q: %w", identifier, err)
	}

	inst := data.Instance.Get
	if inst == nil || inst.ID == "" {
		return nil, fmt.Errorf("%w: %q", ErrInstanceNotFound, identifier)
	}

	catalog := b.opts.NewCaller(b.endpointConfig("catalog", b.opts.API.CatalogURL(identifier), transport.Credentials{
		StaticAuthToken: inst.StaticAuthToken,
	}))
	orders := b.opts.NewCaller(b.endpointConfig("orders", b.opts.API.OrdersURL(identifier), transport.Credentials{
		AccessTokenID:     creds.AccessTokenID,
		AccessTokenSecret: creds.AccessTokenSecret,
		StaticAuthToken:   inst.StaticAuthToken,
	}))
	b.resolver.SetCallers(management, catalog)

	b.logger.Info("Resolved instance",
		zap.String("instance", identifier),
		zap.String("instance_id", inst.ID),
	)

	return &Session{
		InstanceID:         inst.ID,
		InstanceIdentifier: identifier,
		RootItemID:         inst.RootItemID,
		Management:         management,
		Catalog:            catalog,
		Orders:             orders,
		Resolver:           b.resolver,
		Config:             b.opts.Run,
	}, nil
}
