package api

import (
	"time"

	models "YieldPull/internal/domain/models"
	domrepo "YieldPull/internal/domain/repository"
	"YieldPull/internal/usecase"
	xhttp "YieldPull/pkg/http"
	xlogger "YieldPull/pkg/logger"
	xutil "YieldPull/pkg/util"

	"github.com/labstack/echo/v4"
)

// CurvesEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type CurvesEchoHandler struct {
	logger  *xlogger.Logger
	curves  *usecase.CurveUseCase
	history *usecase.HistoryUseCase
	futures *usecase.FuturesUseCase
}

func NewCurvesEchoHandler(logger *xlogger.Logger, curves *usecase.CurveUseCase, history *usecase.HistoryUseCase) *CurvesEchoHandler {
	return &CurvesEchoHandler{logger: logger, curves: curves, history: history}
}

// SetFutures enables the futures endpoint.
func (h *CurvesEchoHandler) SetFutures(f *usecase.FuturesUseCase) { h.futures = f }

func (h *CurvesEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/curve", h.Curve)
	g.GET("/curves", h.Curves)
	g.POST("/bootstrap", h.Bootstrap)
	g.GET("/maturities", h.Maturities)
	g.GET("/history", h.History)
	g.GET("/futures", h.Futures)
}

func (h *CurvesEchoHandler) Curve(c echo.Context) error {
	req := &models.CurveRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	method := domrepo.NormalizeMethod(req.Method)

	res, err := h.curves.GetCurve(c.Request().Context(), usecase.GetCurveParams{
		Country: req.Country,
		Method:  method,
	})
	if err != nil {
		h.logger.Error("curve usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

func (h *CurvesEchoHandler) Curves(c echo.Context) error {
	req := &models.CurvesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	method := domrepo.NormalizeMethod(req.Method)

	res, err := h.curves.GetAllCurves(c.Request().Context(), method)
	if err != nil {
		h.logger.Error("curves usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, res, int64(len(res)))
}

func (h *CurvesEchoHandler) Bootstrap(c echo.Context) error {
	req := &models.BootstrapRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res := h.curves.BootstrapSupplied(req)
	return xhttp.SuccessResponse(c, res)
}

func (h *CurvesEchoHandler) Maturities(c echo.Context) error {
	labels, err := h.curves.Maturities(c.Request().Context())
	if err != nil {
		h.logger.Error("maturities usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, labels)
}

func (h *CurvesEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	now := time.Now()
	res, err := h.history.GetHistory(c.Request().Context(), usecase.GetHistoryParams{
		Country: req.Country,
		From:    xutil.ParseTimeDefault(req.From, time.Time{}),
		To:      xutil.ParseTimeDefault(req.To, now),
		Limit:   req.Limit,
	})
	if err != nil {
		h.logger.Error("history usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *CurvesEchoHandler) Futures(c echo.Context) error {
	if h.futures == nil {
		return xhttp.NotFoundResponse(c, "futures feed not configured")
	}
	quotes, err := h.futures.Quotes(c.Request().Context())
	if err != nil {
		h.logger.Error("futures usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, quotes, int64(len(quotes)))
}
