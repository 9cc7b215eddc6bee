package http

import (
	"net/http"

	"golang-news-signal/internal/pipeline/dto"
	"golang-news-signal/internal/pipeline/service"
	"golang-news-signal/pkg/logger"
	"golang-news-signal/pkg/utils"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports liveness and the coordinator state.
type HealthHandler struct {
	pipelineService service.PipelineService
	runService      service.PipelineRunService
	sectors         []string
	logger          *logger.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(pipelineService service.PipelineService, runService service.PipelineRunService, sectors []string, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{pipelineService: pipelineService, runService: runService, sectors: sectors, logger: logger}
}

// RegisterRoutes registers the health route.
func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce  json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	resp := dto.HealthResponse{
		OK:      true,
		UTC:     utils.TimeNowUTC(),
		Sectors: h.sectors,
		State:   string(h.pipelineService.State()),
	}

	// A failing history lookup must not fail the health check.
	last, err := h.runService.GetLastRun(c.Request().Context())
	if err != nil {
		h.logger.Warn("Failed to load last pipeline run", logger.ErrorField(err))
	}
	resp.LastRun = last

	return c.JSON(http.StatusOK, resp)
}
