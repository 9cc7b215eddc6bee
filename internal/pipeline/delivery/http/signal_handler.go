package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang-news-signal/internal/pipeline/dto"
	"golang-news-signal/internal/pipeline/service"
	"golang-news-signal/pkg/logger"
	"golang-news-signal/pkg/utils"

	"github.com/labstack/echo/v4"
)

// SignalHandler handles HTTP requests for signals.
type SignalHandler struct {
	signalService service.SignalService
	logger        *logger.Logger
}

// NewSignalHandler creates a new SignalHandler.
func NewSignalHandler(signalService service.SignalService, logger *logger.Logger) *SignalHandler {
	return &SignalHandler{signalService: signalService, logger: logger}
}

// RegisterRoutes registers the signal routes to the Echo group.
func (h *SignalHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetSignals)
	g.GET("/:id", h.GetSignalByID)
	g.PUT("/:id/curation", h.CurateSignal)
}

// RegisterStatsRoutes registers the aggregate stats route.
func (h *SignalHandler) RegisterStatsRoutes(g *echo.Group) {
	g.GET("/stats", h.GetStats)
}

// GetSignals godoc
// @Summary List signals
// @Description List analyzed signals, newest first
// @Tags signals
// @Produce  json
// @Param   limit          query  int     false  "Max rows (default 50, max 500)"
// @Param   label          query  string  false  "Event label"
// @Param   sector         query  string  false  "Sector"
// @Param   region         query  string  false  "Region code"
// @Param   min_impact     query  int     false  "Minimum impact"
// @Param   min_confidence query  int     false  "Minimum confidence"
// @Param   ticker         query  string  false  "Comma separated tickers, any of"
// @Param   sentiment      query  int     false  "-1, 0 or 1"
// @Param   starred_only   query  bool    false  "Only starred signals"
// @Param   hide_test      query  bool    false  "Hide test sources (default true)"
// @Param   date_from      query  string  false  "YYYY-MM-DD, inclusive"
// @Param   date_to        query  string  false  "YYYY-MM-DD, inclusive"
// @Success 200 {array} dto.SignalResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /signals [get]
func (h *SignalHandler) GetSignals(c echo.Context) error {
	filter, err := parseSignalFilter(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	signals, err := h.signalService.GetSignals(c.Request().Context(), filter)
	if err != nil {
		h.logger.Error("Failed to get signals", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get signals"})
	}
	return c.JSON(http.StatusOK, signals)
}

// GetSignalByID godoc
// @Summary Get a signal by ID
// @Description Get a single signal with its curation
// @Tags signals
// @Produce  json
// @Param   id  path  string  true  "Signal ID"
// @Success 200 {object} dto.SignalResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /signals/{id} [get]
func (h *SignalHandler) GetSignalByID(c echo.Context) error {
	signal, err := h.signalService.GetSignalByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if service.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Signal not found"})
		}
		h.logger.Error("Failed to get signal", logger.ErrorField(err), logger.StringField("id", c.Param("id")))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get signal"})
	}
	return c.JSON(http.StatusOK, signal)
}

// CurateSignal godoc
// @Summary Curate a signal
// @Description Star, annotate or tag a signal
// @Tags signals
// @Accept  json
// @Produce  json
// @Param   id       path  string               true  "Signal ID"
// @Param   curation body  dto.CurationRequest  true  "Curation"
// @Success 200 {object} dto.SignalResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /signals/{id}/curation [put]
func (h *SignalHandler) CurateSignal(c echo.Context) error {
	var req dto.CurationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body"})
	}

	signal, err := h.signalService.Curate(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		if service.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Signal not found"})
		}
		h.logger.Error("Failed to curate signal", logger.ErrorField(err), logger.StringField("id", c.Param("id")))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to curate signal"})
	}
	return c.JSON(http.StatusOK, signal)
}

// GetStats godoc
// @Summary Signal statistics
// @Description Aggregate counts over non-test signals
// @Tags signals
// @Produce  json
// @Success 200 {object} dto.SignalStats
// @Failure 500 {object} dto.ErrorResponse
// @Router /stats [get]
func (h *SignalHandler) GetStats(c echo.Context) error {
	stats, err := h.signalService.GetStats(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get stats", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get stats"})
	}
	return c.JSON(http.StatusOK, stats)
}

func parseSignalFilter(c echo.Context) (dto.SignalFilter, error) {
	filter := dto.SignalFilter{
		Label:    strings.TrimSpace(c.QueryParam("label")),
		Sector:   strings.TrimSpace(c.QueryParam("sector")),
		Region:   strings.TrimSpace(c.QueryParam("region")),
		Tickers:  utils.SplitCSV(c.QueryParam("ticker")),
		HideTest: true,
	}

	ints := map[string]*int{
		"limit":          &filter.Limit,
		"min_impact":     &filter.MinImpact,
		"min_confidence": &filter.MinConfidence,
	}
	for name, dst := range ints {
		if v := c.QueryParam(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return filter, &paramError{name: name}
			}
			*dst = n
		}
	}

	if v := c.QueryParam("sentiment"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < -1 || n > 1 {
			return filter, &paramError{name: "sentiment"}
		}
		filter.Sentiment = &n
	}

	bools := map[string]*bool{
		"starred_only": &filter.StarredOnly,
		"hide_test":    &filter.HideTest,
	}
	for name, dst := range bools {
		if v := c.QueryParam(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return filter, &paramError{name: name}
			}
			*dst = b
		}
	}

	for name, dst := range map[string]**time.Time{"date_from": &filter.DateFrom, "date_to": &filter.DateTo} {
		if v := c.QueryParam(name); v != "" {
			day, err := utils.ParseDayUTC(v)
			if err != nil {
				return filter, &paramError{name: name}
			}
			*dst = &day
		}
	}
	return filter, nil
}

type paramError struct {
	name string
}

func (e *paramError) Error() string {
	return "Invalid " + e.name + " parameter"
}
