package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dareyes/restaurant-management/internal/auth"
	"github.com/dareyes/restaurant-management/internal/model"
)

// RequireRole returns a middleware enforcing that the authenticated identity
// holds one of the given roles, compared case-insensitively.  A missing
// identity means the route was wired without the Authenticator; that is a
// server-side bug but still degrades to 401 instead of letting the request
// through.  Rejections carry the required-roles list for client diagnostics.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	required := make([]string, len(roles))
	for i, r := range roles {
		required[i] = r.String()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := CurrentIdentity(c)
			if !ok {
				e := auth.ErrUnauthenticated
				return c.JSON(e.Status, echo.Map{"success": false, "code": e.Code, "message": e.Message})
			}
			for _, r := range roles {
				if id.Role.Equal(r) {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, echo.Map{
				"success":       false,
				"code":          "UNAUTHORIZED_ROLE",
				"message":       "role '" + id.Role.String() + "' is not allowed here",
				"requiredRoles": required,
			})
		}
	}
}

// Named role gates.  Compositions of RequireRole, not separate logic.
var (
	AdminOnly   = RequireRole(model.RoleAdmin)
	Supervisors = RequireRole(model.RoleAdmin, model.RoleSupervisor)
	Waitstaff   = RequireRole(model.RoleAdmin, model.RoleSupervisor, model.RoleWaiter)
	Kitchen     = RequireRole(model.RoleAdmin, model.RoleSupervisor, model.RoleCook)
	Staff       = RequireRole(model.RoleAdmin, model.RoleSupervisor, model.RoleWaiter, model.RoleCook)
)
