package reconcile

import (
	"context"
)

// Reporter receives progress and warnings of one area.
// Implementations must be safe for concurrent use.
type Reporter interface {
	// Progress reports a fraction in [0,1] and a human-readable message.
	Progress(progress float64, message string)

	// Warn records a recoverable failure.
	Warn(message string, cause error)
}

// Area parameterizes the algorithm for one entity type.
type Area[T any] struct {
	// Name identifies the area in logs and errors (e.g. "priceVariants").
	Name string

	// Fetch returns every entity that already exists remotely.
	Fetch func(ctx context.Context) ([]T, error)

	// Create creates one entity and returns it as known by the remote.
	Create func(ctx context.Context, item T) (T, error)

	// Key returns the identity key. An empty key means the entity has no
	// identity and is always created.
	Key func(item T) string

	// Label returns the name used in progress messages. Defaults to Key.
	Label func(item T) string

	// Refetch re-reads the area after creation instead of concatenating
	// existing and created entities.
	Refetch bool

	// Finalize runs once creations have settled, before the final progress
	// report. It is skipped for unmanaged plans.
	Finalize func(ctx context.Context, all []T, rep Reporter) []T
}

func (a Area[T]) label(item T) string {
	if a.Label != nil {
		if l := a.Label(item); l != "" {
			return l
		}
	}
	return a.Key(item)
}

// Plan is the outcome of diffing desired against existing entities.
type Plan[T any] struct {
	// Area is the area name.
	Area string

	// Managed is false when no desired list was given.
	Managed bool

	// Existing holds the entities found remotely.
	Existing []T

	// Missing holds the desired entities to create, in desired order.
	Missing []T
}

// PlanSummary is the serializable view of a Plan.
type PlanSummary struct {
	// Area is the area name.
	Area string `json:"area"`

	// Managed is false when the area is left untouched.
	Managed bool `json:"managed"`

	// Existing counts the remote entities.
	Existing int `json:"existing"`

	// Missing lists the labels of entities that would be created.
	Missing []string `json:"missing"`
}

// Summary builds the serializable view of the plan.
func (p Plan[T]) Summary(area Area[T]) PlanSummary {
	missing := make([]string, 0, len(p.Missing))
	for _, item := range p.Missing {
		missing = append(missing, area.label(item))
	}
	return PlanSummary{
		Area:     p.Area,
		Managed:  p.Managed,
		Existing: len(p.Existing),
		Missing:  missing,
	}
}

// Discard is a Reporter that drops everything.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Progress(float64, string) {}
func (discard) Warn(string, error)       {}
