package progress

import (
	"errors"

	"catalog-bootstrapper/core/database"
	"catalog-bootstrapper/core/logger"
	"catalog-bootstrapper/core/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for bootstrap runs.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the run routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/runs")
	group.Get("/", h.HandleListRuns)
	group.Post("/", h.HandleStartRun)
	group.Get("/:id", h.HandleGetRun)

	app.Get("/specs", h.HandleListSpecs)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

// HandleStartRun starts a bootstrap run.
// @Summary Start Run
// @Description Starts a bootstrap run of an inline spec or a stored spec document. The run executes in the background.
// @Tags runs
// @Accept json
// @Produce json
// @Param request body RunRequest true "Run request"
// @Success 202 {object} RunView
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Spec Not Found"
// @Failure 429 {object} map[string]string "Too Many Runs"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /runs [post]
func (h *Handler) HandleStartRun(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var req RunRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	view, err := h.service.Start(c.UserContext(), req)
	switch {
	case err == nil:
		l.Info("Run accepted", zap.String("run_id", view.ID), zap.String("instance", view.Instance))
		return c.Status(fiber.StatusAccepted).JSON(view)
	case errors.Is(err, ErrNoSpec), errors.Is(err, ErrNoInstance), errors.Is(err, ErrNoDocuments):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, storage.ErrDocumentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrTooManyRuns):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": err.Error()})
	default:
		l.Error("Failed to start run", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

// HandleListRuns lists the latest runs.
// @Summary List Runs
// @Description Lists the latest bootstrap runs, newest first.
// @Tags runs
// @Produce json
// @Param limit query int false "Maximum number of runs" default(50)
// @Success 200 {array} RunView
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /runs [get]
func (h *Handler) HandleListRuns(c *fiber.Ctx) error {
	runs, err := h.service.List(c.UserContext(), c.QueryInt("limit", 50))
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Failed to list runs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(runs)
}

// HandleGetRun returns one run with the progress and warnings of every area.
// @Summary Get Run
// @Description Returns the status of a bootstrap run. Poll it while the run executes.
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} RunView
// @Failure 404 {object} map[string]string "Run Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /runs/{id} [get]
func (h *Handler) HandleGetRun(c *fiber.Ctx) error {
	view, err := h.service.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, database.ErrRunNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "run not found"})
	}
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Failed to get run", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(view)
}

// HandleListSpecs lists stored spec documents.
// @Summary List Specs
// @Description Lists the spec documents of the storage bucket.
// @Tags specs
// @Produce json
// @Param prefix query string false "Key prefix"
// @Success 200 {array} string
// @Failure 400 {object} map[string]string "Storage Not Configured"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /specs [get]
func (h *Handler) HandleListSpecs(c *fiber.Ctx) error {
	keys, err := h.service.Specs(c.UserContext(), c.Query("prefix"))
	if errors.Is(err, ErrNoDocuments) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if keys == nil {
		keys = []string{}
	}
	return c.JSON(keys)
}
