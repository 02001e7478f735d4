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

// ProductHandler exposes CRUD over menu items.  Reads are open to all staff;
// writes are gated to admin/supervisor by the router.
type ProductHandler struct {
	Products *repository.ProductRepo
}

func NewProductHandler(p *repository.ProductRepo) *ProductHandler {
	return &ProductHandler{Products: p}
}

type productReq struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	PriceCents int64  `json:"priceCents"`
	Available  *bool  `json:"available"`
}

func (h *ProductHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	items, err := h.Products.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "could not list products"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "products": items})
}

func (h *ProductHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "could not load product"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "product": p})
}

func (h *ProductHandler) Create(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.PriceCents < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "name and a non-negative price are required"})
	}
	available := true
	if req.Available != nil {
		available = *req.Available
	}
	p := model.Product{
		Name:       req.Name,
		Category:   strings.TrimSpace(req.Category),
		PriceCents: req.PriceCents,
		Available:  available,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Products.Create(ctx, &p); err != nil {
		if err == repository.ErrDuplicate {
			return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": "product name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "could not create product"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "product": p})
}

func (h *ProductHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "could not load product"})
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		p.Name = name
	}
	if cat := strings.TrimSpace(req.Category); cat != "" {
		p.Category = cat
	}
	if req.PriceCents > 0 {
		p.PriceCents = req.PriceCents
	}
	if req.Available != nil {
		p.Available = *req.Available
	}

	if err := h.Products.Update(ctx, p); err != nil {
		if err == repository.ErrDuplicate {
			return c.JSON(http.StatusConflict, echo.Map{"success": false, "message": "product name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "could not update product"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "product": p})
}

func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Products.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "product not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "could not delete product"})
	}
	return c.NoContent(http.StatusNoContent)
}
