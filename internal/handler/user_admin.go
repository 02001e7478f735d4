package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dareyes/restaurant-management/internal/middleware"
	"github.com/dareyes/restaurant-management/internal/model"
	"github.com/dareyes/restaurant-management/internal/repository"
)

// UserAdminHandler exposes user management to admins.  Role changes and
// deletions also revoke the target's refresh tokens so the change takes
// effect at the next token rotation rather than days later.
type UserAdminHandler struct {
	Users    *repository.UserRepo
	Sessions sessionRevoker
}

// sessionRevoker is the slice of the session manager user administration
// needs.
type sessionRevoker interface {
	LogoutAll(ctx context.Context, userID uint64) error
}

func NewUserAdminHandler(users *repository.UserRepo, sessions sessionRevoker) *UserAdminHandler {
	return &UserAdminHandler{Users: users, Sessions: sessions}
}

func (h *UserAdminHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "could not list users"})
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, toUserPart(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "users": out})
}

func (h *UserAdminHandler) UpdateRole(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid body"})
	}
	role, ok := model.ParseRole(req.Role)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid role"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.UpdateRole(ctx, id, role); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "could not update role"})
	}
	// Force the new role onto the next access token.
	if err := h.Sessions.LogoutAll(ctx, id); err != nil {
		c.Logger().Errorf("revoke sessions after role change for user %d: %v", id, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func (h *UserAdminHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "invalid id"})
	}
	if self, ok := middleware.CurrentIdentity(c); ok && self.UserID == id {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "cannot delete your own account"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Sessions.LogoutAll(ctx, id); err != nil {
		c.Logger().Errorf("revoke sessions before delete for user %d: %v", id, err)
	}
	if err := h.Users.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "could not delete user"})
	}
	return c.NoContent(http.StatusNoContent)
}
