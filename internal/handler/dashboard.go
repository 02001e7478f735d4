package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/dareyes/restaurant-management/internal/repository"
)

const summaryCacheKey = "dashboard:summary"

// DashboardHandler serves aggregate counts for the dashboard.  Results are
// cached in Redis for a short TTL; without Redis every request hits the
// database, which is fine at this volume.
type DashboardHandler struct {
	Reports  *repository.ReportRepo
	Redis    *redis.Client
	CacheTTL time.Duration
}

func NewDashboardHandler(reports *repository.ReportRepo, rdb *redis.Client, ttl time.Duration) *DashboardHandler {
	return &DashboardHandler{Reports: reports, Redis: rdb, CacheTTL: ttl}
}

func (h *DashboardHandler) Summary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if h.Redis != nil {
		if cached, err := h.Redis.Get(ctx, summaryCacheKey).Bytes(); err == nil {
			var s repository.Summary
			if json.Unmarshal(cached, &s) == nil {
				return c.JSON(http.StatusOK, echo.Map{"success": true, "summary": s, "cached": true})
			}
		}
	}

	s, err := h.Reports.Summary(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "could not build summary"})
	}

	if h.Redis != nil {
		if body, err := json.Marshal(s); err == nil {
			if err := h.Redis.Set(ctx, summaryCacheKey, body, h.CacheTTL).Err(); err != nil {
				c.Logger().Warnf("dashboard cache set: %v", err)
			}
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "summary": s, "cached": false})
}
