package router // package router defines how HTTP routes are registered

import (
	"code.cloudfoundry.org/lager/v3"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/secure-ping/internal/handler"
	"github.com/iliyamo/secure-ping/internal/middleware"
)

// New builds the router the server listens with.  It serves exactly two
// routes: the form and the probe endpoint.
func New(logger lager.Logger, p *handler.PingHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))

	RegisterRoutes(e, p)
	return e
}

// RegisterRoutes maps GET / to the form and POST /ping to the probe handler.
func RegisterRoutes(e *echo.Echo, p *handler.PingHandler) {
	e.GET("/", handler.Form)
	e.POST("/ping", p.Ping)
}
