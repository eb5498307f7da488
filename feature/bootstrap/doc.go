// Package bootstrap reconciles a catalog instance with a spec document.
//
// A Bootstrapper owns one run. It resolves the target instance once, then walks the
// areas in a fixed dependency order:
//
//	languages, price variants, stock locations, subscription plans, vat types,
//	shapes, topics, grids, items, customers, orders, grids (second pass)
//
// The second grid pass fills grid rows with items created earlier in the same run.
//
// Flat areas go through reconcile.Reconcile. Topics, items and grids are trees or
// carry references, and are walked level by level with the reference resolver.
//
// # Events
//
// Progress is published as Events on subscriber channels. Area updates and status
// updates are dropped for subscribers that fall behind; lifecycle events
// ("<area>-done", "error", "done") block until delivered or the subscription is
// cancelled.
//
//	b := bootstrap.New(bootstrap.Options{Run: cfg.Run, API: cfg.API, Logger: log})
//	events, cancel := b.Subscribe(64)
//	defer cancel()
//	b.SetAccessToken(id, secret)
//	b.SetInstanceIdentifier("my-shop")
//	b.SetSpec(doc)
//	go b.Start(ctx)
package bootstrap
