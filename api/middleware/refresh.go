package middleware

import (
	"net/http"
	"time"

	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/service"
	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/session"

	"github.com/labstack/echo/v4"
)

// RefreshGate is the request admission decision. In order: allow-listed routes
// pass untouched, a session with a bound identity passes, a request with no
// refresh credential is rejected, and everything else goes through token
// rotation. Any rotation failure clears the credential and rejects; the
// client never learns which step failed.
type RefreshGate struct {
	Service   *service.AuthService
	Sessions  *session.Manager
	Cookies   CookieConfig
	AllowList []string
}

func (g RefreshGate) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if g.allowed(c.Path()) {
			return next(c)
		}

		s, ok := SessionFromContext(c)
		if !ok {
			return rejectExpired(c)
		}
		if _, authed := s.CurrentIdentity(); authed {
			return next(c)
		}

		presented := ReadCookie(c, RefreshCookieName)
		if presented == "" {
			return rejectExpired(c)
		}

		ctx := c.Request().Context()
		result, err := g.Service.RefreshSession(ctx, presented)
		if err != nil {
			g.Cookies.ClearRefresh(c)
			return rejectExpired(c)
		}

		// The new credential goes out before the session save, matching the
		// issue-then-save ordering of the login path.
		g.Cookies.SetRefresh(c, result.RefreshToken.Token, time.Until(result.RefreshToken.Expire))

		if err := g.Sessions.Bind(ctx, s, result.Identity); err != nil {
			return rejectExpired(c)
		}
		g.Cookies.SetSession(c, s.SID(), g.Sessions.MaxAge())

		return next(c)
	}
}

func (g RefreshGate) allowed(path string) bool {
	for _, route := range g.AllowList {
		if route == path {
			return true
		}
	}
	return false
}

func rejectExpired(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{
		"message":    "Session expired",
		"redirectTo": "/",
	})
}
