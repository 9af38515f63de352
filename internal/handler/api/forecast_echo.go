package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
	"StockCast/internal/service/metrics"
	"StockCast/internal/usecase"
	xhttp "StockCast/pkg/http"
	xlogger "StockCast/pkg/logger"
	"StockCast/pkg/util"

	"github.com/labstack/echo/v4"
)

// Predictor is implemented by usecase.PredictUseCase.
type Predictor interface {
	Predict(ctx context.Context, symbol string) (*models.PredictionResponse, error)
}

// Limiter is implemented by ratelimit.Limiter.
type Limiter interface {
	Allow(key string) bool
}

// ForecastEchoHandler serves the forecasting API.
type ForecastEchoHandler struct {
	logger  *xlogger.Logger
	predict Predictor
	search  *usecase.SearchUseCase
	candles *usecase.CandlesUseCase
	rl      Limiter
}

func NewForecastEchoHandler(
	logger *xlogger.Logger,
	predict Predictor,
	search *usecase.SearchUseCase,
	candles *usecase.CandlesUseCase,
	rl Limiter,
) *ForecastEchoHandler {
	metrics.Register()
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &ForecastEchoHandler{logger: logger, predict: predict, search: search, candles: candles, rl: rl}
}

func (h *ForecastEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)

	g := e.Group("/api")
	g.GET("/predict/:symbol", h.Predict)
	g.GET("/search", h.Search)
	g.GET("/candles/:symbol", h.Candles)
}

func (h *ForecastEchoHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message":       "StockCast prediction API is running",
		"documentation": "/api/predict/{symbol}, /api/search?query=, /api/candles/{symbol}",
	})
}

func (h *ForecastEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *ForecastEchoHandler) Predict(c echo.Context) error {
	const endpoint = "predict"
	defer observe(endpoint, time.Now())

	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.APIErrors.WithLabelValues(endpoint, "ERR_VALIDATION").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.rl != nil && !h.rl.Allow(c.RealIP()) {
		h.logger.Warn("predict rate_limited", xlogger.String("remote", c.RealIP()))
		return h.fail(c, endpoint, xhttp.TooManyRequestsError("too many forecast requests, retry shortly"))
	}

	res, err := h.predict.Predict(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastEchoHandler) Search(c echo.Context) error {
	const endpoint = "search"
	defer observe(endpoint, time.Now())

	req := &models.SearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.APIErrors.WithLabelValues(endpoint, "ERR_VALIDATION").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.search.Search(c.Request().Context(), req.Query, req.Limit))
}

func (h *ForecastEchoHandler) Candles(c echo.Context) error {
	const endpoint = "candles"
	defer observe(endpoint, time.Now())

	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		metrics.APIErrors.WithLabelValues(endpoint, "ERR_VALIDATION").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}
	var from time.Time
	if req.From != "" {
		t, ok := util.ParseTime(req.From)
		if !ok {
			metrics.APIErrors.WithLabelValues(endpoint, "ERR_VALIDATION").Inc()
			return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
				Code:    "ERR_TIME",
				Field:   "from",
				Message: "from must be RFC3339, YYYY-MM-DD or unix seconds",
			}})
		}
		from = t
	}

	res, err := h.candles.GetCandles(c.Request().Context(), usecase.GetCandlesParams{
		Symbol: req.Symbol,
		From:   from,
		Limit:  req.N,
	})
	if err != nil {
		return h.fail(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ForecastEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	appErr := ToAppError(err)
	metrics.APIErrors.WithLabelValues(endpoint, appErr.Code).Inc()
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(endpoint+" usecase error", xlogger.String("code", appErr.Code), xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

// ToAppError maps use-case errors onto API errors.
func ToAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var fe *models.ForecastError
	switch {
	case errors.Is(err, domrepo.ErrSymbolNotFound):
		return xhttp.NotFoundError("no data found for symbol").WithError(err)
	case errors.As(err, &fe):
		e := xhttp.NewAppError(forecastCode(fe.Kind), "", fe.Message, forecastStatus(fe.Kind))
		return e.WithParam("kind", string(fe.Kind)).WithError(err)
	default:
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
}

func forecastCode(k models.ErrorKind) string {
	switch k {
	case models.KindEmptyInput:
		return "ERR_EMPTY_INPUT"
	case models.KindInsufficientHistory:
		return "ERR_INSUFFICIENT_HISTORY"
	case models.KindModelNotReady:
		return "ERR_MODEL_NOT_READY"
	case models.KindTrainingFailed:
		return "ERR_TRAINING_FAILED"
	default:
		return "ERR_INTERNAL"
	}
}

func forecastStatus(k models.ErrorKind) int {
	switch k {
	case models.KindEmptyInput:
		return http.StatusNotFound
	case models.KindInsufficientHistory:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func observe(endpoint string, start time.Time) {
	metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
