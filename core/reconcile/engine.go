package reconcile

import (
	"context"
	"fmt"
	"sync"
)

// Reconcile brings one area in line with desired: existing entities are kept,
// missing ones are created. It returns every entity of the area after the run.
//
// Only a failure to fetch existing entities is returned as an error. A nil desired
// list leaves the area unmanaged: existing entities are returned, progress 1 is
// reported and nothing is written.
func Reconcile[T any](ctx context.Context, area Area[T], desired *[]T, rep Reporter) ([]T, error) {
	if rep == nil {
		rep = Discard
	}

	plan, err := BuildPlan(ctx, area, desired)
	if err != nil {
		return nil, err
	}

	return Apply(ctx, area, plan, rep), nil
}

// Apply creates the missing entities of a plan concurrently and reports progress.
// Failed creations become warnings; the remaining entities are still attempted.
func Apply[T any](ctx context.Context, area Area[T], plan Plan[T], rep Reporter) []T {
	if rep == nil {
		rep = Discard
	}

	tracker := NewTracker(len(plan.Missing), rep)
	if !plan.Managed {
		tracker.Complete()
		return plan.Existing
	}
	if len(plan.Missing) == 0 {
		all := plan.Existing
		if area.Finalize != nil {
			all = area.Finalize(ctx, all, rep)
		}
		tracker.Complete()
		return all
	}

	created := make([]*T, len(plan.Missing))
	var wg sync.WaitGroup
	for i, item := range plan.Missing {
		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()
			result, err := area.Create(ctx, item)
			if err == nil {
				created[i] = &result
			}
			tracker.Done(area.label(item), err)
		}(i, item)
	}
	wg.Wait()

	all := make([]T, 0, len(plan.Existing)+len(plan.Missing))
	all = append(all, plan.Existing...)
	for _, c := range created {
		if c != nil {
			all = append(all, *c)
		}
	}

	if area.Refetch && tracker.Succeeded() > 0 {
		fresh, err := area.Fetch(ctx)
		if err != nil {
			rep.Warn(fmt.Sprintf("%s: refetch failed", area.Name), err)
		} else {
			all = fresh
		}
	}

	if area.Finalize != nil {
		all = area.Finalize(ctx, all, rep)
	}

	tracker.Complete()
	return all
}
