// Package reconcile provides the generic fetch / diff / create algorithm shared by
// every catalog area.
//
// An area (languages, price variants, vat types, ...) is described by an Area value:
// how to fetch what already exists remotely, how to create one missing entity, and
// which identity key decides that an entity "already exists". The package never
// updates or deletes remote state.
//
// # Architecture
//
// 1. BuildPlan fetches existing entities and diffs them against the desired list.
// The resulting Plan can be inspected (dry run) without touching the remote.
//
// 2. Apply creates every missing entity concurrently. Concurrency is bounded by the
// transport worker budget, not by this package. A failed create is reported as a
// warning and never aborts the batch.
//
// 3. Reconcile chains both steps and is what the orchestrator calls for flat areas.
//
// # Progress
//
// A Tracker counts finished tasks and reports finished/total after each completion
// followed by a final 1. For N missing entities the reporter therefore sees exactly
// N+1 non-decreasing values ending at 1; an area with nothing to create reports 1
// exactly once.
//
// # Usage Example
//
//	area := reconcile.Area[PriceVariant]{
//	    Name:   "priceVariants",
//	    Fetch:  fetchPriceVariants,
//	    Create: createPriceVariant,
//	    Key:    func(v PriceVariant) string { return v.Identifier },
//	    Label:  func(v PriceVariant) string { return v.Name },
//	}
//	all, err := reconcile.Reconcile(ctx, area, spec.PriceVariants, reporter)
package reconcile
