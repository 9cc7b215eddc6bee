package http

import (
	"net/http"
	"strconv"

	"golang-news-signal/internal/pipeline/dto"
	"golang-news-signal/internal/pipeline/service"
	"golang-news-signal/pkg/common"
	"golang-news-signal/pkg/logger"
	"golang-news-signal/pkg/utils"

	"github.com/labstack/echo/v4"
)

// PipelineHandler handles HTTP requests that trigger and inspect pipeline runs.
type PipelineHandler struct {
	pipelineService service.PipelineService
	runService      service.PipelineRunService
	logger          *logger.Logger
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(pipelineService service.PipelineService, runService service.PipelineRunService, logger *logger.Logger) *PipelineHandler {
	return &PipelineHandler{pipelineService: pipelineService, runService: runService, logger: logger}
}

// RegisterRoutes registers the pipeline routes to the Echo group.
func (h *PipelineHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/run", h.RunPipeline)
	g.GET("/runs", h.GetRuns)
	g.GET("/runs/:id", h.GetRunByID)
}

// RunPipeline godoc
// @Summary Run the pipeline
// @Description Run one collect, reconcile and analyze cycle. Waits for any run already in progress.
// @Tags pipeline
// @Produce  json
// @Param   sectors  query  string  false  "Comma separated sectors (default: configured sectors)"
// @Success 200 {object} dto.RunResult
// @Failure 500 {object} dto.ErrorResponse
// @Router /pipeline/run [post]
func (h *PipelineHandler) RunPipeline(c echo.Context) error {
	result, err := h.pipelineService.Run(c.Request().Context(), dto.RunRequest{
		Trigger: common.TriggerAPI,
		Sectors: utils.SplitCSV(c.QueryParam("sectors")),
	})
	if err != nil {
		h.logger.Error("Failed to run pipeline", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

// GetRuns godoc
// @Summary List pipeline runs
// @Description List the most recent pipeline runs
// @Tags pipeline
// @Produce  json
// @Param   limit  query  int  false  "Max rows (default 20)"
// @Success 200 {array} dto.PipelineRunResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /pipeline/runs [get]
func (h *PipelineHandler) GetRuns(c echo.Context) error {
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid limit parameter"})
		}
		limit = n
	}

	runs, err := h.runService.GetRecentRuns(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("Failed to get pipeline runs", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get pipeline runs"})
	}
	return c.JSON(http.StatusOK, runs)
}

// GetRunByID godoc
// @Summary Get a pipeline run by ID
// @Tags pipeline
// @Produce  json
// @Param   id  path  string  true  "Run ID"
// @Success 200 {object} dto.PipelineRunResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /pipeline/runs/{id} [get]
func (h *PipelineHandler) GetRunByID(c echo.Context) error {
	run, err := h.runService.GetRunByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if service.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Pipeline run not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, run)
}
