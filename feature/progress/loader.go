package progress

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the run progress feature.
func NewFeature(service *Service, logger *zap.Logger) *Feature {
	return &Feature{
		service: service,
		handler: NewHandler(service, logger),
	}
}

// Name returns the feature name.
func (f *Feature) Name() string {
	return "progress"
}

// IsEnabled returns true.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers metrics and routes.
func (f *Feature) Load(app fiber.Router) error {
	RegisterMetrics()
	f.handler.RegisterRoutes(app)
	return nil
}

// Service returns the run service.
func (f *Feature) Service() *Service {
	return f.service
}
