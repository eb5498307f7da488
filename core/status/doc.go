// Package status aggregates per-area progress of a bootstrap run.
//
// Every area (languages, price variants, items, ...) owns an AreaStatus holding a
// progress fraction in [0,1] and an ordered list of warnings. The Aggregator never
// mutates state in place: each update builds a fresh Snapshot that shares the
// untouched areas with the previous one. A Snapshot handed to a consumer therefore
// never changes afterwards, which lets slow consumers (progress bars, loggers, the
// run journal) read it without racing the engine.
//
// # Subscribing
//
//	agg := status.NewAggregator()
//	ch, cancel := agg.Subscribe(8)
//	defer cancel()
//	for snap := range ch {
//	    fmt.Println(snap.Area(status.Items).Progress)
//	}
//
// Subscriptions coalesce: when a subscriber falls behind, the oldest queued snapshot
// is dropped in favour of the newest one. Since every snapshot is complete, nothing
// but intermediate frames is lost.
package status
