package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"farm-yield/internal/history"
	"farm-yield/internal/logger"
	"farm-yield/internal/yield"
)

type errorResponse struct {
	Error string `json:"error"`
}

type periodsResponse struct {
	Default string         `json:"default"`
	Periods []yield.Period `json:"periods"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePeriods(c echo.Context) error {
	return c.JSON(http.StatusOK, periodsResponse{
		Default: s.cfg.Yield.DefaultPeriod,
		Periods: s.history.Periods(),
	})
}

func (s *Server) handleTreeHistory(c echo.Context) error {
	treeID := c.Param("treeId")
	if _, err := uuid.Parse(treeID); err != nil {
		logger.Warn(c.Request().Context(), "Invalid tree id", "tree_id", treeID)
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "treeId must be a UUID"})
	}

	r, err := s.parseRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	h, err := s.history.TreeHistory(c.Request().Context(), treeID, r)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, h)
}

func (s *Server) handleYieldSummary(c echo.Context) error {
	var ids []string
	for _, raw := range c.QueryParams()["trees"] {
		for _, id := range strings.Split(raw, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, err := uuid.Parse(id); err != nil {
				return c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("tree id %q must be a UUID", id)})
			}
			ids = append(ids, id)
		}
	}

	r, err := s.parseRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	summary, err := s.history.PlotSummary(c.Request().Context(), ids, r)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// parseRange reads period, or start and end as calendar days in the
// configured location.
func (s *Server) parseRange(c echo.Context) (history.Range, error) {
	period := c.QueryParam("period")
	start, end := c.QueryParam("start"), c.QueryParam("end")
	if start == "" && end == "" {
		return history.PresetRange(period), nil
	}
	if period != "" {
		return history.Range{}, errors.New("use either period or start/end, not both")
	}
	return history.DayRange(start, end, s.loc)
}

func (s *Server) fail(c echo.Context, err error) error {
	ctx := c.Request().Context()
	var srcErr *history.SourceError

	switch {
	case errors.Is(err, yield.ErrUnknownPeriod),
		errors.Is(err, yield.ErrInvalidRange),
		errors.Is(err, history.ErrNoTrees),
		errors.Is(err, history.ErrTooManyTrees):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})

	case errors.As(err, &srcErr):
		logger.ErrorWithErr(ctx, "Activity log source failed", err,
			"source", srcErr.Source,
			"tree_id", srcErr.TreeID,
		)
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "failed to fetch activity logs"})

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "request cancelled"})

	default:
		logger.ErrorWithErr(ctx, "Yield history request failed", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
