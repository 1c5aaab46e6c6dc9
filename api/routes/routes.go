package routes

import (
	"net/http"

	"github.com/Dhinesh-M-7/BlogApplicationBackend/api/handler"
	"github.com/Dhinesh-M-7/BlogApplicationBackend/api/middleware"

	"github.com/labstack/echo/v4"
)

// AllowList names the routes reachable without any prior credential. Matched
// against the registered route pattern, not the raw URL.
var AllowList = []string{
	"/api/users/signup",
	"/api/users/verifyemail/:token",
	"/api/users/login",
	"/api/users/forgotpassword",
	"/api/users/resetpassword",
}

type Router struct {
	Echo    *echo.Echo
	Auth    *handler.AuthHandler
	Session middleware.SessionLoader
	Gate    middleware.RefreshGate
}

func NewRouter(e *echo.Echo, auth *handler.AuthHandler, sessionLoader middleware.SessionLoader, gate middleware.RefreshGate) *Router {
	return &Router{
		Echo:    e,
		Auth:    auth,
		Session: sessionLoader,
		Gate:    gate,
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Application is running successfully!")
	})

	// Every API route passes the session loader and the refresh gate; the
	// gate itself lets allow-listed routes through.
	api := e.Group("/api", r.Session.Handle, r.Gate.Handle)

	api.GET("/session", r.Auth.SessionInfo)

	users := api.Group("/users")
	users.POST("/signup", r.Auth.SignUp)
	users.GET("/verifyemail/:token", r.Auth.VerifyEmail)
	users.POST("/login", r.Auth.Login)
	users.POST("/logout", r.Auth.Logout)
	users.PATCH("/changepassword", r.Auth.ChangePassword)
	users.POST("/forgotpassword", r.Auth.ForgotPassword)
	users.POST("/resetpassword", r.Auth.ResetPassword)
	users.GET("/detail", r.Auth.Detail)
}
