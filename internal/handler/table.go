package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dareyes/restaurant-management/internal/model"
	"github.com/dareyes/restaurant-management/internal/repository"
)

// TableHandler exposes dining table state to staff.
type TableHandler struct {
	Tables *repository.TableRepo
}

func NewTableHandler(t *repository.TableRepo) *TableHandler {
	return &TableHandler{Tables: t}
}

func (h *TableHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	tables, err := h.Tables.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "could not list tables"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "tables": tables})
}

func (h *TableHandler) Create(c echo.Context) error {
	var req struct {
		Number   int `json:"number"`
		Capacity int `json:"capacity"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}
	if req.Number <= 0 || req.Capacity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "number and capacity must be positive"})
	}
	t := model.Table{Number: req.Number, Capacity: req.Capacity, Status: model.TableAvailable}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Tables.Create(ctx, &t); err != nil {
		if err == repository.ErrDuplicate {
			return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": "table number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "could not create table"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "table": t})
}

// UpdateStatus moves a table between available, occupied and reserved.
func (h *TableHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if !model.ValidTableStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "status must be available, occupied or reserved"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Tables.UpdateStatus(ctx, id, status); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "table not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "could not update table"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
