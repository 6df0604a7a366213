package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	"EquityLens/internal/domain/models"
	"EquityLens/internal/usecase"
	xhttp "EquityLens/pkg/http"
	xlogger "EquityLens/pkg/logger"
)

// AnalysisHandler exposes the analysis engine over Echo.
type AnalysisHandler struct {
	logger   *xlogger.Logger
	analyzer *usecase.AnalyzerUseCase
}

func NewAnalysisHandler(logger *xlogger.Logger, analyzer *usecase.AnalyzerUseCase) *AnalysisHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &AnalysisHandler{logger: logger, analyzer: analyzer}
}

func (h *AnalysisHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/analysis", h.Analysis)
	g.GET("/indicators", h.Indicators)
	g.GET("/predictions", h.Predictions)
	e.GET("/healthz", h.Healthz)
}

func (h *AnalysisHandler) Analysis(c echo.Context) error {
	req := &models.AnalysisRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report, err := h.analyzer.GetAnalysis(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "analysis", req.Symbol, err)
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *AnalysisHandler) Indicators(c echo.Context) error {
	req := &models.IndicatorsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	set, err := h.analyzer.GetIndicators(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "indicators", req.Symbol, err)
	}
	return xhttp.SuccessResponse(c, set)
}

func (h *AnalysisHandler) Predictions(c echo.Context) error {
	req := &models.PredictionsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.analyzer.GetPredictions(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "predictions", req.Symbol, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) Healthz(c echo.Context) error {
	if err := h.analyzer.Health(c.Request().Context()); err != nil {
		h.logger.Error("health check failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("storage unreachable").WithError(err))
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *AnalysisHandler) fail(c echo.Context, op, symbol string, err error) error {
	var conflict *models.ConflictingInputError
	switch {
	case errors.Is(err, usecase.ErrNoData):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no price data for %s", symbol))
	case errors.As(err, &conflict):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(conflict.Error()).WithError(err))
	default:
		h.logger.Error(op+" usecase error", xlogger.String("symbol", symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
}
