package bootstrap

import (
	"context"
	"fmt"
	"sync"
	"time"

	"catalog-bootstrapper/core/reconcile"
	"catalog-bootstrapper/core/reference"
	"catalog-bootstrapper/core/spec"
	"catalog-bootstrapper/core/status"
	"catalog-bootstrapper/core/transport"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CallerFactory builds the caller of one endpoint.
type CallerFactory func(cfg transport.Config) transport.Caller

// NewManager is the default CallerFactory.
func NewManager(cfg transport.Config) transport.Caller {
	return transport.New(cfg)
}

// Options configures a Bootstrapper.
type Options struct {
	Run Config
	API APIConfig

	Logger *zap.Logger

	// NewCaller builds endpoint callers. Defaults to NewManager.
	NewCaller CallerFactory

	// Cache is the reference cache of the run. A fresh one is created when nil.
	Cache *reference.Cache
}

// State is the lifecycle state of a run.
type State string

const (
	StateUninitialized     State = "uninitialized"
	StateResolvingInstance State = "resolving_instance"
	StateRunning           State = "running"
	StateDone              State = "done"
	StateFailed            State = "failed"
)

// Bootstrapper runs one reconciliation of a spec against an instance.
type Bootstrapper struct {
	opts     Options
	logger   *zap.Logger
	status   *status.Aggregator
	events   *broker
	resolver *reference.Resolver

	topicFlight singleflight.Group

	mu          sync.Mutex
	spec        *spec.Spec
	credentials transport.Credentials
	identifier  string
	management  transport.Caller
	ready       chan struct{}
	readyClosed bool
	state       State

	instanceDone chan struct{}
	session      *Session
	instanceErr  error
}

// New creates a Bootstrapper. Credentials and instance identifier present in opts.API
// are applied right away.
func New(opts Options) *Bootstrapper {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.NewCaller == nil {
		opts.NewCaller = NewManager
	}
	if opts.Run.MaxWorkers <= 0 {
		opts.Run.MaxWorkers = transport.DefaultMaxWorkers
	}
	if opts.Run.ItemTopics == "" {
		opts.Run.ItemTopics = ItemTopicsAmend
	}
	if opts.Run.ItemPublish == "" {
		opts.Run.ItemPublish = ItemPublishAuto
	}
	if opts.Cache == nil {
		opts.Cache = reference.NewCache()
	}
	opts.Cache.Clear()

	b := &Bootstrapper{
		opts:   opts,
		logger: opts.Logger,
		status: status.NewAggregator(),
		events: newBroker(),
		resolver: reference.New(reference.Options{
			Cache:    opts.Cache,
			UseCache: opts.Run.UseReferenceCache,
			Logger:   opts.Logger,
		}),
		ready: make(chan struct{}),
		state: StateUninitialized,
	}

	if opts.API.AccessTokenID != "" || opts.API.AccessTokenSecret != "" {
		b.SetAccessToken(opts.API.AccessTokenID, opts.API.AccessTokenSecret)
	}
	if opts.API.Instance != "" {
		b.SetInstanceIdentifier(opts.API.Instance)
	}
	return b
}

// SetAccessToken sets the management API token pair.
func (b *Bootstrapper) SetAccessToken(id, secret string) {
	creds := transport.Credentials{AccessTokenID: id, AccessTokenSecret: secret}
	management := b.opts.NewCaller(b.endpointConfig("management", b.opts.API.ManagementURL, creds))

	b.mu.Lock()
	b.credentials = creds
	b.management = management
	b.markReadyLocked()
	b.mu.Unlock()

	b.resolver.SetCallers(management, nil)
}

// SetInstanceIdentifier sets the target instance.
func (b *Bootstrapper) SetInstanceIdentifier(identifier string) {
	b.mu.Lock()
	b.identifier = identifier
	b.markReadyLocked()
	b.mu.Unlock()
}

// SetSpec sets the desired state. A nil spec leaves every area unmanaged.
func (b *Bootstrapper) SetSpec(s *spec.Spec) {
	b.mu.Lock()
	b.spec = s
	b.mu.Unlock()
}

func (b *Bootstrapper) markReadyLocked() {
	if b.readyClosed || b.management == nil || b.identifier == "" {
		return
	}
	close(b.ready)
	b.readyClosed = true
}

func (b *Bootstrapper) currentSpec() *spec.Spec {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.spec == nil {
		return &spec.Spec{}
	}
	return b.spec
}

// Subscribe returns a channel of events and a function cancelling the subscription.
func (b *Bootstrapper) Subscribe(buffer int) (<-chan Event, func()) {
	return b.events.subscribe(buffer)
}

// SubscribeStatus returns a coalescing channel of status snapshots.
func (b *Bootstrapper) SubscribeStatus(buffer int) (<-chan status.Snapshot, func()) {
	return b.status.Subscribe(buffer)
}

// Status returns the current status snapshot.
func (b *Bootstrapper) Status() status.Snapshot {
	return b.status.Snapshot()
}

// State returns the lifecycle state.
func (b *Bootstrapper) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Bootstrapper) setState(s State) {
	b.mu.Lock()
	b.state = s
	b.mu.Unlock()
}

// Resolver returns the reference resolver of the run.
func (b *Bootstrapper) Resolver() *reference.Resolver {
	return b.resolver
}

type step struct {
	area status.Area
	run  func(ctx context.Context) error
}

func (b *Bootstrapper) steps() []step {
	return []step{
		{status.Languages, func(ctx context.Context) error { _, err := b.SetLanguages(ctx); return err }},
		{status.PriceVariants, func(ctx context.Context) error { _, err := b.SetPriceVariants(ctx); return err }},
		{status.StockLocations, func(ctx context.Context) error { _, err := b.SetStockLocations(ctx); return err }},
		{status.SubscriptionPlans, func(ctx context.Context) error { _, err := b.SetSubscriptionPlans(ctx); return err }},
		{status.VatTypes, func(ctx context.Context) error { _, err := b.SetVatTypes(ctx); return err }},
		{status.Shapes, func(ctx context.Context) error { _, err := b.SetShapes(ctx); return err }},
		{status.Topics, b.SetTopics},
		{status.Grids, b.SetGrids},
		{status.Items, b.SetItems},
		{status.Customers, b.SetCustomers},
		{status.Orders, b.SetOrders},
		{status.Grids, b.UpdateGrids},
	}
}

// Start runs every area in dependency order and emits "done" with the run duration.
// Per-entity failures are warnings; area failures emit "error" and the run goes on;
// instance and language failures abort the run.
func (b *Bootstrapper) Start(ctx context.Context) error {
	start := time.Now()

	if _, err := b.ResolveInstance(ctx); err != nil {
		return b.fail(err)
	}
	b.setState(StateRunning)

	for _, s := range b.steps() {
		err := s.run(ctx)
		if err == nil {
			continue
		}
		if IsFatal(err) || ctx.Err() != nil {
			return b.fail(err)
		}
		b.logger.Error("Area failed", zap.String("area", string(s.area)), zap.Error(err))
		b.events.publish(Event{Type: EventError, Area: s.area, Err: err, Message: err.Error()})
	}

	end := time.Now()
	b.setState(StateDone)
	snap := b.status.Snapshot()
	b.logger.Info("Bootstrap finished",
		zap.Duration("duration", end.Sub(start)),
		zap.Int("warnings", snap.WarningCount()),
	)
	b.events.publish(Event{Type: EventDone, Status: &snap, Start: start, End: end, Duration: end.Sub(start)})
	return nil
}

func (b *Bootstrapper) fail(err error) error {
	b.setState(StateFailed)
	b.logger.Error("Bootstrap failed", zap.Error(err))
	b.events.publish(Event{Type: EventError, Err: err, Message: err.Error()})
	return err
}

// runArea resolves the instance, runs fn and emits the area done event.
func (b *Bootstrapper) runArea(ctx context.Context, area status.Area, fn func(ctx context.Context, sess *Session, rep *areaReporter) error) error {
	sess, err := b.ResolveInstance(ctx)
	if err != nil {
		return err
	}

	if area != status.Languages && sess.DefaultLanguage.Code == "" {
		if err := loadLanguages(ctx, sess); err != nil {
			return fmt.Errorf("%s: %w", area, err)
		}
	}

	started := time.Now()
	b.logger.Debug("Reconciling area", zap.String("area", string(area)))
	if err := fn(ctx, sess, b.reporter(area)); err != nil {
		return fmt.Errorf("%s: %w", area, err)
	}
	b.logger.Info("Area reconciled", zap.String("area", string(area)), zap.Duration("duration", time.Since(started)))

	b.events.publish(Event{Type: DoneEvent(area), Area: area})
	return nil
}

// Plan fetches the flat areas and reports what a run would create, without writing.
func (b *Bootstrapper) Plan(ctx context.Context) ([]reconcile.PlanSummary, error) {
	sess, err := b.ResolveInstance(ctx)
	if err != nil {
		return nil, err
	}
	if sess.DefaultLanguage.Code == "" {
		if err := loadLanguages(ctx, sess); err != nil {
			return nil, err
		}
	}
	doc := b.currentSpec()

	summaries := make([]reconcile.PlanSummary, 0, 9)
	add := func(s reconcile.PlanSummary, err error) error {
		if err != nil {
			return err
		}
		summaries = append(summaries, s)
		return nil
	}

	if err := add(planArea(ctx, languageArea(sess), doc.Languages)); err != nil {
		return nil, err
	}
	if err := add(planArea(ctx, priceVariantArea(sess), doc.PriceVariants)); err != nil {
		return nil, err
	}
	if err := add(planArea(ctx, stockLocationArea(sess), doc.StockLocations)); err != nil {
		return nil, err
	}
	if err := add(planArea(ctx, subscriptionPlanArea(sess), doc.SubscriptionPlans)); err != nil {
		return nil, err
	}
	if err := add(planArea(ctx, vatTypeArea(sess), doc.VatTypes)); err != nil {
		return nil, err
	}
	if err := add(planArea(ctx, shapeArea(sess), doc.Shapes)); err != nil {
		return nil, err
	}
	if err := add(planArea(ctx, gridArea(sess, nil), doc.Grids)); err != nil {
		return nil, err
	}
	if err := add(planArea(ctx, customerArea(sess), doc.Customers)); err != nil {
		return nil, err
	}
	if err := add(planArea(ctx, orderArea(sess), doc.Orders)); err != nil {
		return nil, err
	}
	return summaries, nil
}

func planArea[T any](ctx context.Context, area reconcile.Area[T], desired *[]T) (reconcile.PlanSummary, error) {
	plan, err := reconcile.BuildPlan(ctx, area, desired)
	if err != nil {
		return reconcile.PlanSummary{}, err
	}
	return plan.Summary(area), nil
}

func (b *Bootstrapper) endpointConfig(name, url string, creds transport.Credentials) transport.Config {
	workers := b.opts.Run.MaxWorkers
	if b.opts.Run.Multilingual {
		// Per-language writes on one parent race when parallelized.
		workers = 1
	}
	retries := b.opts.API.MaxRetries
	if retries == 0 {
		retries = -1
	}
	return transport.Config{
		Name:        name,
		URL:         url,
		Credentials: creds,
		MaxWorkers:  workers,
		RateLimit:   b.opts.API.RateLimit,
		Timeout:     time.Duration(b.opts.API.TimeoutSeconds) * time.Second,
		MaxRetries:  retries,
		Logger:      b.logger,
		OnError: func(err error) {
			b.logger.Debug("Remote call failed", zap.String("endpoint", name), zap.Error(err))
		},
	}
}
