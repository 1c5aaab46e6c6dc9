package main

import (
	"net/http"
	"os"
	"time"

	"github.com/Dhinesh-M-7/BlogApplicationBackend/api/handler"
	apiMiddleware "github.com/Dhinesh-M-7/BlogApplicationBackend/api/middleware"
	"github.com/Dhinesh-M-7/BlogApplicationBackend/api/routes"
	"github.com/Dhinesh-M-7/BlogApplicationBackend/config"
	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/entity"
	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/repository"
	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/service"
	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/session"
	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg := config.Load(logger)
	if cfg.MailTokenSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		logger.WithError(err).Fatal("database connection failed")
	}
	if err := db.AutoMigrate(&entity.User{}, &entity.RefreshToken{}, &entity.SessionRecord{}); err != nil {
		logger.WithError(err).Fatal("database migration failed")
	}

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	sessionRepo := repository.NewSessionRepository(db)

	signer := utils.MailTokenSigner{
		Secret: []byte(cfg.MailTokenSecret),
		TTL:    cfg.MailTokenTTL,
	}

	var mailer service.EmailSender
	if sender := service.NewResendEmailSender(cfg.ResendAPIKey, cfg.MailFrom, cfg.AppBaseURL); sender != nil {
		mailer = sender
	} else {
		logger.Warn("mailer not configured, verification and reset mails disabled")
	}

	sessions := session.NewManager(sessionRepo, logger, cfg.SessionTTL)

	authService := service.NewAuthService(
		userRepo,
		tokenRepo,
		sessionRepo,
		mailer,
		service.BcryptPasswordHasher{Cost: 12},
		signer,
		service.RealClock{},
		service.AuthConfig{
			RefreshTokenTTL: cfg.RefreshTokenTTL,
			MailTokenTTL:    cfg.MailTokenTTL,
		},
		logger,
	)

	cookies := apiMiddleware.CookieConfig{
		Domain: cfg.CookieDomain,
		Secure: cfg.SecureCookies,
	}
	authHandler := handler.NewAuthHandler(authService, sessions, validator.New(), cookies, logger)

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
	}))
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status": v.Status,
				"method": v.Method,
				"uri":    v.URI,
				"ip":     v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	sessionLoader := apiMiddleware.SessionLoader{Manager: sessions, Cookies: cookies}
	gate := apiMiddleware.RefreshGate{
		Service:   authService,
		Sessions:  sessions,
		Cookies:   cookies,
		AllowList: routes.AllowList,
	}

	router := routes.NewRouter(app, authHandler, sessionLoader, gate)
	router.RegisterRoutes()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithField("addr", cfg.HTTPAddr).Info("server started")
	if err := app.StartServer(server); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
