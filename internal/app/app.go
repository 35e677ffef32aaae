package app

import (
	"context"
	"net/http"

	"github.com/shandysiswandi/gorecord/internal/pkg/pkgconfig"
	"github.com/shandysiswandi/gorecord/internal/pkg/pkglog"
	"github.com/shandysiswandi/gorecord/internal/pkg/pkgmetrics"
	"github.com/shandysiswandi/gorecord/internal/pkg/pkgrouter"
	"github.com/shandysiswandi/gorecord/internal/pkg/pkgroutine"
	"github.com/shandysiswandi/gorecord/internal/pkg/pkguid"
)

const serviceName = "gorecord"

type closer struct {
	name string
	fn   func(context.Context) error
}

type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config pkgconfig.Config

	// libraries
	uuid      pkguid.StringID
	snowflake pkguid.NumberID
	goroutine *pkgroutine.Manager
	metrics   *pkgmetrics.Registry

	// server
	router     *pkgrouter.Router
	httpServer *http.Server

	// closers run in registration order after the HTTP server and background tasks stop
	closers []closer
}

func New() *App {
	pkglog.InitLogging(pkglog.Options{Service: serviceName})

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initLogging()
	app.initLibraries()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}

func (a *App) addCloser(name string, fn func(context.Context) error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}
