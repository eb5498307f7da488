package reconcile

import (
	"context"
	"fmt"
)

// BuildPlan fetches existing entities and diffs them against desired.
// It does NOT create anything; use Apply for that.
func BuildPlan[T any](ctx context.Context, area Area[T], desired *[]T) (Plan[T], error) {
	existing, err := area.Fetch(ctx)
	if err != nil {
		return Plan[T]{Area: area.Name}, fmt.Errorf("%s: fetch existing: %w", area.Name, err)
	}
	return Diff(area, existing, desired), nil
}

// Diff computes the entities of desired whose identity key is absent from existing.
// A nil desired list yields an unmanaged plan. Duplicate keys in desired collapse to
// their first occurrence.
func Diff[T any](area Area[T], existing []T, desired *[]T) Plan[T] {
	plan := Plan[T]{
		Area:     area.Name,
		Managed:  desired != nil,
		Existing: existing,
	}
	if desired == nil {
		return plan
	}

	known := make(map[string]struct{}, len(existing)+len(*desired))
	for _, item := range existing {
		if key := area.Key(item); key != "" {
			known[key] = struct{}{}
		}
	}

	for _, item := range *desired {
		key := area.Key(item)
		if key == "" {
			plan.Missing = append(plan.Missing, item)
			continue
		}
		if _, ok := known[key]; ok {
			continue
		}
		known[key] = struct{}{}
		plan.Missing = append(plan.Missing, item)
	}

	return plan
}
