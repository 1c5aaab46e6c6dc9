package middleware

import (
	"net/http"
	"time"

	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/session"

	"github.com/labstack/echo/v4"
)

const contextSessionKey = "auth_session"

const (
	SessionCookieName = "sid"
	RefreshCookieName = "rToken"
)

func SetSession(c echo.Context, s *session.Session) {
	c.Set(contextSessionKey, s)
}

func SessionFromContext(c echo.Context) (*session.Session, bool) {
	value, ok := c.Get(contextSessionKey).(*session.Session)
	return value, ok
}

// CookieConfig centralizes the attributes shared by the session and refresh
// cookies. Both are httpOnly; values are opaque ids, never claims.
type CookieConfig struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

func (cc CookieConfig) SetSession(c echo.Context, sid string, maxAge time.Duration) {
	cc.set(c, SessionCookieName, sid, maxAge)
}

func (cc CookieConfig) ClearSession(c echo.Context) {
	cc.clear(c, SessionCookieName)
}

func (cc CookieConfig) SetRefresh(c echo.Context, token string, maxAge time.Duration) {
	cc.set(c, RefreshCookieName, token, maxAge)
}

func (cc CookieConfig) ClearRefresh(c echo.Context) {
	cc.clear(c, RefreshCookieName)
}

func (cc CookieConfig) set(c echo.Context, name string, value string, maxAge time.Duration) {
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cc.Domain,
		MaxAge:   int(maxAge.Seconds()),
		Expires:  time.Now().Add(maxAge),
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: cc.sameSite(),
	})
}

func (cc CookieConfig) clear(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   cc.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: cc.sameSite(),
	})
}

func (cc CookieConfig) sameSite() http.SameSite {
	if cc.SameSite == 0 {
		return http.SameSiteLaxMode
	}
	return cc.SameSite
}

func ReadCookie(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
