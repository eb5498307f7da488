package export

import (
	"errors"
	"strings"

	"catalog-bootstrapper/core/logger"
	"catalog-bootstrapper/feature/bootstrap"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for spec exports.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the export routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/export")
	group.Get("/", h.HandleExport)
	group.Post("/", h.HandleExportToStorage)
}

// StoreRequest exports an instance into the storage bucket.
type StoreRequest struct {
	Request
	// Key is the document key. Its extension selects JSON or YAML.
	Key string `json:"key"`
}

// HandleExport returns the spec of a live instance.
// @Summary Export Spec
// @Description Reads languages, VAT types, subscription plans, price variants, topics, shapes, grids and stock locations of an instance into a spec document.
// @Tags export
// @Produce json
// @Param instance query string false "Instance identifier"
// @Param language query string false "Language of topics and grids"
// @Param areas query string false "Comma separated areas"
// @Success 200 {object} map[string]interface{} "Spec"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Instance Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /export [get]
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	req := Request{
		Instance: c.Query("instance"),
		Language: c.Query("language"),
	}
	if areas := c.Query("areas"); areas != "" {
		req.Areas = strings.Split(areas, ",")
	}

	doc, err := h.service.Export(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(doc)
}

// HandleExportToStorage exports an instance and stores the spec document.
// @Summary Export Spec To Storage
// @Description Exports an instance and writes the spec document to the storage bucket.
// @Tags export
// @Accept json
// @Produce json
// @Param request body StoreRequest true "Export request"
// @Success 201 {object} map[string]string "Stored key"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Instance Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /export [post]
func (h *Handler) HandleExportToStorage(c *fiber.Ctx) error {
	var req StoreRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "key is required"})
	}

	if _, err := h.service.ExportTo(c.UserContext(), req.Request, req.Key); err != nil {
		return h.fail(c, err)
	}

	logger.WithRayID(h.service.logger, c).Info("Spec stored", zap.String("key", req.Key))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"key": req.Key})
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrUnknownArea), errors.Is(err, ErrNoDocuments),
		errors.Is(err, bootstrap.ErrMissingIdentifier), errors.Is(err, bootstrap.ErrMissingCredentials):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, bootstrap.ErrInstanceNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		logger.WithRayID(h.service.logger, c).Error("Export failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
