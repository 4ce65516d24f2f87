package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// LoginCORS lets only the configured origins call path, with POST and the
// Content-Type header.  Other paths are skipped so they carry no CORS
// headers at all.
func LoginCORS(path string, origins []string) echo.MiddlewareFunc {
	return echomw.CORSWithConfig(echomw.CORSConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path != path
		},
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodPost},
		AllowHeaders: []string{echo.HeaderContentType},
	})
}
