package middleware

import (
	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/session"

	"github.com/labstack/echo/v4"
)

// SessionLoader resolves the sid cookie to a server-side session and attaches
// it to the request context. Authenticated sessions get their deadline pushed
// forward and the cookie re-issued on every request (rolling expiration).
type SessionLoader struct {
	Manager *session.Manager
	Cookies CookieConfig
}

func (m SessionLoader) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		s := m.Manager.Load(ctx, ReadCookie(c, SessionCookieName))
		SetSession(c, s)

		if _, ok := s.CurrentIdentity(); ok {
			m.Manager.Touch(ctx, s)
			m.Cookies.SetSession(c, s.SID(), m.Manager.MaxAge())
		}
		return next(c)
	}
}
