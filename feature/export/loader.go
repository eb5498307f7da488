package export

import "github.com/gofiber/fiber/v2"

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
	enabled bool
}

// NewFeature creates the export feature. It is disabled without management credentials.
func NewFeature(service *Service) *Feature {
	api := service.opts.API
	return &Feature{
		service: service,
		handler: NewHandler(service),
		enabled: api.AccessTokenID != "" && api.AccessTokenSecret != "",
	}
}

// Name returns the feature name.
func (f *Feature) Name() string {
	return "export"
}

// IsEnabled reports whether management credentials are configured.
func (f *Feature) IsEnabled() bool {
	return f.enabled
}

// Load registers routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
