package export

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalog-bootstrapper/core/spec"
	"catalog-bootstrapper/core/status"
	"catalog-bootstrapper/feature/bootstrap"

	"go.uber.org/zap"
)

var (
	// ErrUnknownArea is returned for an area that cannot be exported.
	ErrUnknownArea = errors.New("area cannot be exported")
	// ErrNoDocuments is returned when a storage key is given but no document store is configured.
	ErrNoDocuments = errors.New("document store not configured")
)

// Exportable lists the areas Export reads, in export order.
var Exportable = []status.Area{
	status.Languages,
	status.VatTypes,
	status.SubscriptionPlans,
	status.PriceVariants,
	status.Topics,
	status.Shapes,
	status.Grids,
	status.StockLocations,
}

// Source resolves the session of the exported instance. *bootstrap.Bootstrapper implements it.
type Source interface {
	ResolveInstance(ctx context.Context) (*bootstrap.Session, error)
}

// Documents stores exported specs. *storage.Documents implements it.
type Documents interface {
	WriteSpec(ctx context.Context, key string, s *spec.Spec) error
}

// Request selects what to export.
type Request struct {
	// Instance overrides the configured instance identifier.
	Instance string `json:"instance"`
	// Language of topics and grids. Defaults to the instance default language.
	Language string `json:"language"`
	// Areas to export. Empty means every exportable area.
	Areas []string `json:"areas"`
}

func (r Request) selection() (map[status.Area]bool, error) {
	sel := make(map[status.Area]bool, len(Exportable))
	if len(r.Areas) == 0 {
		for _, a := range Exportable {
			sel[a] = true
		}
		return sel, nil
	}
	for _, name := range r.Areas {
		area := status.Area(strings.TrimSpace(name))
		if !exportable(area) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownArea, name)
		}
		sel[area] = true
	}
	return sel, nil
}

func exportable(a status.Area) bool {
	for _, e := range Exportable {
		if e == a {
			return true
		}
	}
	return false
}

// Export reads the selected areas of a live instance into a spec document.
// Remote ids are dropped so the document can seed another instance.
func Export(ctx context.Context, src Source, req Request) (*spec.Spec, error) {
	sel, err := req.selection()
	if err != nil {
		return nil, err
	}

	sess, err := src.ResolveInstance(ctx)
	if err != nil {
		return nil, err
	}

	settings, err := sess.FetchLanguages(ctx)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", status.Languages, err)
	}

	language := req.Language
	if language == "" {
		language = settings.Default
	}
	if language == "" {
		language = "en"
	}

	out := &spec.Spec{}
	if sel[status.Languages] {
		out.Languages = nonNil(settings.Available)
	}

	if sel[status.VatTypes] {
		vatTypes, err := sess.FetchVatTypes(ctx)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", status.VatTypes, err)
		}
		for i := range vatTypes {
			vatTypes[i].ID = ""
		}
		out.VatTypes = nonNil(vatTypes)
	}

	if sel[status.SubscriptionPlans] {
		plans, err := sess.FetchSubscriptionPlans(ctx)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", status.SubscriptionPlans, err)
		}
		out.SubscriptionPlans = nonNil(plans)
	}

	if sel[status.PriceVariants] {
		variants, err := sess.FetchPriceVariants(ctx)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", status.PriceVariants, err)
		}
		out.PriceVariants = nonNil(variants)
	}

	if sel[status.Topics] {
		topics, err := sess.FetchTopics(ctx, language)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", status.Topics, err)
		}
		out.Topics = nonNil(bootstrap.TopicTree(topics))
	}

	if sel[status.Shapes] {
		shapes, err := sess.FetchShapes(ctx)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", status.Shapes, err)
		}
		out.Shapes = nonNil(shapes)
	}

	if sel[status.Grids] {
		remote, err := sess.FetchGrids(ctx, language)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", status.Grids, err)
		}
		grids := make([]spec.Grid, 0, len(remote))
		for _, g := range remote {
			grids = append(grids, g.Grid())
		}
		out.Grids = &grids
	}

	if sel[status.StockLocations] {
		locations, err := sess.FetchStockLocations(ctx)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", status.StockLocations, err)
		}
		out.StockLocations = nonNil(locations)
	}

	return out, nil
}

func nonNil[T any](v []T) *[]T {
	if v == nil {
		v = []T{}
	}
	return &v
}

// Service exports instances with the configured API settings.
type Service struct {
	opts   bootstrap.Options
	docs   Documents
	logger *zap.Logger
}

// NewService creates an export service. docs may be nil.
func NewService(opts bootstrap.Options, docs Documents, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{opts: opts, docs: docs, logger: logger}
}

// Export exports one instance.
func (s *Service) Export(ctx context.Context, req Request) (*spec.Spec, error) {
	opts := s.opts
	if req.Instance != "" {
		opts.API.Instance = req.Instance
	}
	opts.Logger = s.logger
	opts.Cache = nil

	doc, err := Export(ctx, bootstrap.New(opts), req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Instance exported", zap.String("instance", opts.API.Instance), zap.String("language", req.Language))
	return doc, nil
}

// ExportTo exports one instance and stores the document under key.
func (s *Service) ExportTo(ctx context.Context, req Request, key string) (*spec.Spec, error) {
	if s.docs == nil {
		return nil, ErrNoDocuments
	}
	doc, err := s.Export(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.docs.WriteSpec(ctx, key, doc); err != nil {
		return nil, err
	}
	return doc, nil
}
