package router // package router defines how HTTP routes are registered for the API

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/iliyamo/login-service/internal/handler"
	"github.com/iliyamo/login-service/internal/middleware"
)

// Deps carries everything the routes need.  Metrics is optional; a nil
// gatherer leaves /metrics unregistered.
type Deps struct {
	Auth           *handler.AuthHandler
	Store          handler.Pinger
	Log            *zap.Logger
	Metrics        prometheus.Gatherer
	LoginPath      string
	AllowedOrigins []string
}

// New builds an Echo instance with the shared middleware stack and all
// routes registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = d.Auth.ErrorHandler(d.LoginPath, d.Log, e.DefaultHTTPErrorHandler)

	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			d.Log.Error("panic recovered", zap.Error(err), zap.ByteString("stack", stack))
			return err
		},
	}))
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echomw.BodyLimit("16K"))
	e.Use(middleware.LoginCORS(d.LoginPath, d.AllowedOrigins))

	RegisterRoutes(e, d)
	return e
}

// RegisterRoutes registers the login endpoint and the operational routes.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.POST(d.LoginPath, d.Auth.Login)

	e.GET("/healthz", handler.Health)
	if d.Store != nil {
		e.GET("/readyz", handler.Ready(d.Store, 2*time.Second, d.Log))
	}
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))
	}
}
