package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/Dhinesh-M-7/BlogApplicationBackend/api/middleware"
	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/dto"
	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/service"
	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	Service  *service.AuthService
	Sessions *session.Manager
	Validate *validator.Validate
	Cookies  middleware.CookieConfig
	Log      *logrus.Logger
}

func NewAuthHandler(svc *service.AuthService, sessions *session.Manager, validate *validator.Validate, cookies middleware.CookieConfig, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		Service:  svc,
		Sessions: sessions,
		Validate: validate,
		Cookies:  cookies,
		Log:      log,
	}
}

func (h *AuthHandler) SignUp(c echo.Context) error {
	var req dto.SignUpRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, service.ErrMissingFields)
	}

	input := service.SignUpInput{Name: req.Name, Email: req.Email, Password: req.Password}
	user, err := h.Service.SignUp(c.Request().Context(), input, requestOrigin(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.SignUpResponse{
		Message: "User created successfully",
		User:    dto.UserResponseFromEntity(user),
	})
}

func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	user, err := h.Service.VerifyEmail(c.Request().Context(), c.Param("token"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "User email verified successfully",
		"userData": dto.SessionResponse{Name: user.Name, Email: user.Email},
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, errors.New("Email and password are required"))
	}

	ctx := c.Request().Context()
	result, err := h.Service.Login(ctx, service.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return writeServiceError(c, err)
	}

	s, ok := middleware.SessionFromContext(c)
	if !ok {
		return writeError(c, http.StatusInternalServerError, errors.New("Session initialization failed"))
	}

	h.Cookies.SetRefresh(c, result.RefreshToken.Token, time.Until(result.RefreshToken.Expire))

	// The session save has to land before the response counts as logged in;
	// the userid link piggybacks behind it inside Bind.
	if err := h.Sessions.Bind(ctx, s, result.Identity); err != nil {
		h.Log.WithError(err).Error("session save failed on login")
		return writeError(c, http.StatusInternalServerError, errors.New("Session initialization failed"))
	}
	h.Cookies.SetSession(c, s.SID(), h.Sessions.MaxAge())

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Login Successful"})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	rToken := middleware.ReadCookie(c, middleware.RefreshCookieName)

	h.Service.Logout(ctx, rToken)

	var req dto.LogoutRequest
	// The body is optional; an absent or malformed one means a plain logout.
	_ = decodeJSON(c, &req)

	if s, ok := middleware.SessionFromContext(c); ok {
		if identity, authed := s.CurrentIdentity(); authed && req.LogoutOthers {
			if err := h.Service.LogoutOthers(ctx, identity.ID, s.SID(), rToken); err != nil {
				h.Log.WithError(err).Error("logout others failed")
			}
		}
		h.Sessions.Destroy(ctx, s)
	}

	h.Cookies.ClearSession(c)
	h.Cookies.ClearRefresh(c)
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "User logged out successfully"})
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	identity, s, err := h.requireIdentity(c)
	if err != nil {
		return err
	}

	var req dto.ChangePasswordRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, service.ErrInvalidData)
	}

	ctx := c.Request().Context()
	input := service.ChangePasswordInput{OldPassword: req.OldPassword, NewPassword: req.NewPassword}
	if err := h.Service.ChangePassword(ctx, identity.ID, input); err != nil {
		return writeServiceError(c, err)
	}

	if req.LogoutOthers {
		rToken := middleware.ReadCookie(c, middleware.RefreshCookieName)
		if err := h.Service.LogoutOthers(ctx, identity.ID, s.SID(), rToken); err != nil {
			return writeServiceError(c, err)
		}
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "User password updated successfully"})
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req dto.ForgotPasswordRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, service.ErrEmailRequired)
	}

	if err := h.Service.ForgotPassword(c.Request().Context(), req.Email, requestOrigin(c)); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "A reset link has been sent to the email address."})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req dto.ResetPasswordRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, service.ErrInvalidData)
	}

	if err := h.Service.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "User password updated successfully"})
}

func (h *AuthHandler) Detail(c echo.Context) error {
	identity, _, err := h.requireIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.Service.GetUser(c.Request().Context(), identity.ID)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.DetailResponse{
		Message:  "User details retrieved successfully",
		UserData: dto.SessionResponse{Name: user.Name, Email: user.Email},
	})
}

// SessionInfo mirrors the session payload back to the client, minus the id.
func (h *AuthHandler) SessionInfo(c echo.Context) error {
	s, ok := middleware.SessionFromContext(c)
	if !ok {
		return rejectExpired(c)
	}
	identity, authed := s.CurrentIdentity()
	if !authed {
		return rejectExpired(c)
	}
	return c.JSON(http.StatusOK, dto.SessionResponse{Name: identity.Name, Email: identity.Email})
}

func (h *AuthHandler) requireIdentity(c echo.Context) (session.Identity, *session.Session, error) {
	s, ok := middleware.SessionFromContext(c)
	if !ok {
		return session.Identity{}, nil, rejectExpired(c)
	}
	identity, authed := s.CurrentIdentity()
	if !authed {
		return session.Identity{}, nil, rejectExpired(c)
	}
	return identity, s, nil
}

func (h *AuthHandler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}

func decodeJSON(c echo.Context, target any) error {
	decoder := json.NewDecoder(c.Request().Body)
	return decoder.Decode(target)
}

func writeError(c echo.Context, status int, err error) error {
	return c.JSON(status, dto.MessageResponse{Message: err.Error()})
}

func rejectExpired(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{
		"message":    "Session expired",
		"redirectTo": "/",
	})
}

func writeServiceError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrMissingFields),
		errors.Is(err, service.ErrInvalidData),
		errors.Is(err, service.ErrEmailRequired),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrUserExists),
		errors.Is(err, service.ErrInvalidMailToken),
		errors.Is(err, service.ErrAlreadyVerified),
		errors.Is(err, service.ErrSamePassword),
		errors.Is(err, service.ErrPasswordReused):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrWrongOldPassword),
		errors.Is(err, service.ErrSessionExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrEmailNotVerified):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrUserNotFound):
		status = http.StatusNotFound
	}
	return writeError(c, status, err)
}

// requestOrigin recovers the frontend origin for links embedded in outgoing
// mail, preferring the Origin header and falling back to the Referer.
func requestOrigin(c echo.Context) string {
	if origin := c.Request().Header.Get("Origin"); origin != "" {
		return origin
	}
	referer := c.Request().Referer()
	if referer == "" {
		return ""
	}
	parsed, err := url.Parse(referer)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}
