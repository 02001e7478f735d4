package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dareyes/restaurant-management/internal/auth"
	"github.com/dareyes/restaurant-management/internal/config"
	"github.com/dareyes/restaurant-management/internal/repository"
)

// identityKey is the echo context key the authenticated identity lives under.
const identityKey = "identity"

// AccessTokenHeader is the response header carrying a freshly rotated access
// token when the middleware transparently refreshed an expired one.  Clients
// must watch for it and swap their stored token.
const AccessTokenHeader = "X-Access-Token"

// Authenticator is the per-request gate: it verifies the access token,
// falls back to the refresh flow when the token is merely expired, checks
// the session marker and attaches the identity to the request.
type Authenticator struct {
	Codec    *auth.Codec
	Users    repository.UserStore
	Sessions *auth.SessionManager
	Cfg      config.Config
}

func NewAuthenticator(codec *auth.Codec, users repository.UserStore, sessions *auth.SessionManager, cfg config.Config) *Authenticator {
	return &Authenticator{Codec: codec, Users: users, Sessions: sessions, Cfg: cfg}
}

// CurrentIdentity returns the identity attached by the Authenticator.
func CurrentIdentity(c echo.Context) (auth.Identity, bool) {
	id, ok := c.Get(identityKey).(auth.Identity)
	return id, ok
}

// bearerToken extracts the token from the Authorization header.  A bare
// token and the "Bearer <token>" form are both accepted.
func bearerToken(c echo.Context) (string, *auth.Error) {
	header := strings.TrimSpace(c.Request().Header.Get("Authorization"))
	if header == "" {
		return "", auth.ErrMissingToken
	}
	parts := strings.Fields(header)
	switch {
	case len(parts) == 2 && strings.EqualFold(parts[0], "bearer"):
		return parts[1], nil
	case len(parts) == 1 && !strings.EqualFold(parts[0], "bearer"):
		return parts[0], nil
	case len(parts) == 1:
		return "", auth.ErrEmptyToken
	default:
		return "", auth.ErrInvalidTokenFormat
	}
}

// authenticate runs the non-recovering part of the per-request procedure
// and reports the tagged outcome.  The refresh recovery is driven by the
// middleware, not here, so the single-hop rule stays visible at the caller.
func (a *Authenticator) authenticate(c echo.Context) auth.Result {
	token, aerr := bearerToken(c)
	if aerr != nil {
		return auth.Rejected(aerr)
	}

	claims, err := a.Codec.VerifyAccess(token)
	if err != nil {
		if err == auth.ErrAccessExpired {
			return auth.NeedsRefresh()
		}
		return auth.Rejected(auth.AsError(err))
	}

	u, err := a.Users.GetByID(c.Request().Context(), claims.UserID)
	if err != nil {
		if err == repository.ErrNotFound {
			return auth.Rejected(auth.ErrUserNotFound)
		}
		c.Logger().Errorf("authenticate: load user %d: %v", claims.UserID, err)
		return auth.Rejected(auth.ErrServer)
	}

	// Token cryptographically valid but minted under a superseded session:
	// the user logged in elsewhere since.
	if u.SessionID != claims.SessionID {
		return auth.Rejected(auth.ErrInvalidSession)
	}

	return auth.Authenticated(auth.Identity{
		UserID:    u.ID,
		Role:      u.Role,
		Name:      u.Name,
		Email:     u.Email,
		SessionID: u.SessionID,
	})
}

// Middleware returns the echo middleware enforcing authentication.  On an
// expired access token it performs exactly one refresh attempt using the
// refresh cookie; success rotates the cookie, exposes the new access token
// via AccessTokenHeader and lets the original request proceed.  Any failure
// during that recovery is terminal for the request and clears the cookie.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res := a.authenticate(c)
			switch res.Kind {
			case auth.ResultAuthenticated:
				c.Set(identityKey, res.Identity)
				return next(c)

			case auth.ResultNeedsRefresh:
				raw, ok := ReadRefreshCookie(c)
				if !ok {
					ClearRefreshCookie(c, a.Cfg)
					e := auth.ErrNoRefreshToken
					return c.JSON(e.Status, echo.Map{"success": false, "code": e.Code, "message": e.Message})
				}
				pair, u, err := a.Sessions.Refresh(c.Request().Context(), raw)
				if err != nil {
					ClearRefreshCookie(c, a.Cfg)
					e := auth.AsError(err)
					return c.JSON(e.Status, echo.Map{"success": false, "code": e.Code, "message": e.Message})
				}
				SetRefreshCookie(c, a.Cfg, pair.RefreshToken, pair.RefreshExpires)
				c.Response().Header().Set(AccessTokenHeader, pair.AccessToken)
				c.Set(identityKey, auth.Identity{
					UserID:    u.ID,
					Role:      u.Role,
					Name:      u.Name,
					Email:     u.Email,
					SessionID: u.SessionID,
				})
				return next(c)

			default:
				e := res.Err
				return c.JSON(e.Status, echo.Map{"success": false, "code": e.Code, "message": e.Message})
			}
		}
	}
}
