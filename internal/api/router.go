package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/99minutos/storefront-accounts/docs"
	"github.com/99minutos/storefront-accounts/internal/api/handler"
	"github.com/99minutos/storefront-accounts/internal/api/middleware"
	"github.com/99minutos/storefront-accounts/internal/core/ports"
)

// Deps are the collaborators the HTTP layer needs. Mongo and Redis are only
// used by the readiness probe and may be nil.
type Deps struct {
	Accounts  ports.AccountService
	Auth      ports.AuthService
	Addresses ports.AddressService

	Mongo *mongo.Database
	Redis *redis.Client

	// Registry receives the HTTP metrics. Defaults to the global registry.
	Registry *prometheus.Registry
	Logger   zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(metricsMiddleware(deps.Registry))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	accountHandler := handler.NewAccountHandler(deps.Accounts)
	addressHandler := handler.NewAddressHandler(deps.Addresses)
	adminHandler := handler.NewAdminHandler(deps.Accounts)
	requireSession := middleware.Auth(deps.Auth)

	v1 := e.Group("/v1")

	// --- Public routes ---
	v1.POST("/accounts/register", accountHandler.Register)
	v1.POST("/auth/login", authHandler.Login)
	v1.POST("/password-reset", accountHandler.RequestPasswordReset)
	v1.POST("/password-reset/confirm", accountHandler.ConfirmPasswordReset)

	// --- Session routes ---
	v1.POST("/auth/logout", authHandler.Logout, requireSession)

	me := v1.Group("/me", requireSession)
	me.GET("", accountHandler.Profile)
	me.PATCH("", accountHandler.EditProfile)
	me.GET("/addresses", addressHandler.List)
	me.POST("/addresses", addressHandler.Create)
	me.PUT("/addresses/:id", addressHandler.Update)
	me.DELETE("/addresses/:id", addressHandler.Delete)

	// --- Staff routes ---
	admin := v1.Group("/admin", requireSession, middleware.RequireStaff())
	admin.GET("/accounts", adminHandler.ListAccounts)
	admin.PATCH("/accounts/:id/active", adminHandler.SetActive)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness

	// --- Operations ---
	e.GET("/metrics", metricsHandler(deps.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

func metricsMiddleware(reg *prometheus.Registry) echo.MiddlewareFunc {
	cfg := echoprometheus.MiddlewareConfig{
		Subsystem: "accounts",
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}
	if reg != nil {
		cfg.Registerer = reg
	}
	return echoprometheus.NewMiddlewareWithConfig(cfg)
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}
