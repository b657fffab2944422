package reporting

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ehr/artreports/internal/platform/auth"
	"github.com/ehr/artreports/internal/platform/db"
	"github.com/ehr/artreports/pkg/pagination"
)

// CohortSource pages through the patient register.
type CohortSource interface {
	Page(ctx context.Context, limit, offset int) ([]uuid.UUID, int, error)
}

// Handler provides HTTP handlers for the reporting API.
type Handler struct {
	registry *Registry
	patients CohortSource
	logger   zerolog.Logger
}

func NewHandler(registry *Registry, patients CohortSource, logger zerolog.Logger) *Handler {
	return &Handler{registry: registry, patients: patients, logger: logger}
}

// RegisterRoutes registers the reporting API routes.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/reports", auth.RequireRole("admin", "physician"))
	g.GET("/calculations", h.ListCalculations)
	g.POST("/calculations/:name/evaluate", h.EvaluateCohort)
	g.GET("/calculations/:name/patients", h.EvaluatePatients)
}

type evaluateRequest struct {
	Cohort     []uuid.UUID       `json:"cohort"`
	Parameters map[string]string `json:"parameters"`
}

func (h *Handler) ListCalculations(c echo.Context) error {
	return c.JSON(http.StatusOK, h.registry.List())
}

// EvaluateCohort runs a calculation over the cohort named in the request body.
func (h *Handler) EvaluateCohort(c echo.Context) error {
	var req evaluateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	for _, id := range req.Cohort {
		if id == uuid.Nil {
			return echo.NewHTTPError(http.StatusBadRequest, "cohort contains a nil patient id")
		}
	}

	report, err := h.run(c.Request().Context(), c.Param("name"), req.Cohort, req.Parameters)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// EvaluatePatients runs a calculation over one page of the patient register.
// Calculation parameters are read from the query string.
func (h *Handler) EvaluatePatients(c echo.Context) error {
	calc, err := h.registry.Lookup(c.Param("name"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	params := map[string]string{}
	for _, p := range calc.Parameters() {
		if v := c.QueryParam(p); v != "" {
			params[p] = v
		}
	}

	pg := pagination.FromContext(c)
	ctx := c.Request().Context()
	ids, total, err := h.patients.Page(ctx, pg.Limit, pg.Offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("list patients failed")
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list patients")
	}

	report, err := h.run(ctx, calc.Name(), ids, params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(report, total, pg.Limit, pg.Offset))
}

// run evaluates inside a read-only snapshot when the request carries a
// tenant connection, so all lookups see the same data.
func (h *Handler) run(ctx context.Context, name string, cohort []uuid.UUID, params map[string]string) (*CalculationReport, error) {
	if db.ConnFromContext(ctx) != nil {
		txCtx, tx, err := db.WithTx(ctx)
		if err != nil {
			h.logger.Error().Err(err).Msg("begin snapshot failed")
			return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
		}
		defer tx.Rollback(ctx) //nolint:errcheck
		ctx = txCtx
	}

	report, err := h.registry.Run(ctx, name, cohort, params)
	switch {
	case err == nil:
		return report, nil
	case errors.Is(err, ErrCalculationNotFound):
		return nil, echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidParameter):
		return nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Str("calculation", name).Int("cohort_size", len(cohort)).Msg("calculation failed")
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "calculation failed")
	}
}
