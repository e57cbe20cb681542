// Package app bootstraps the trust assessment service. It acts as the
// composition root, wiring configuration, intelligence adapters, the
// report cache and the web server together.
package app

import (
	"context"
	"fmt"

	"github.com/lcalzada-xor/trustrecon/internal/adapters/cache"
	"github.com/lcalzada-xor/trustrecon/internal/adapters/intel"
	"github.com/lcalzada-xor/trustrecon/internal/adapters/reporting"
	webserver "github.com/lcalzada-xor/trustrecon/internal/adapters/web/server"
	"github.com/lcalzada-xor/trustrecon/internal/config"
	"github.com/lcalzada-xor/trustrecon/internal/core/ports"
	"github.com/lcalzada-xor/trustrecon/internal/core/services/assessment"
	"github.com/lcalzada-xor/trustrecon/internal/telemetry"
)

// Application holds the core components of the service.
type Application struct {
	Config    *config.Config
	Assessor  *assessment.Assessor
	Cache     ports.ReportCache
	WebServer *webserver.Server
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
	}

	if err := app.bootstrap(); err != nil {
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}

	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	telemetry.InitMetrics()

	creds := app.Config.Credentials()
	client := intel.NewClientWithTimeout(app.Config.HTTPTimeout)

	vulns := intel.NewNVDAdapter(client, creds)
	files := intel.NewVirusTotalAdapter(client, creds)
	urls := []ports.URLChecker{
		intel.NewSafeBrowsingAdapter(client, creds),
		intel.NewWebRiskAdapter(client, creds),
	}
	headers := intel.NewObservatoryAdapter(client)

	app.Cache = cache.NewSQLiteCache(app.Config.CachePath)

	app.Assessor = assessment.NewAssessor(vulns, files, urls, headers, app.Cache)
	app.WebServer = webserver.NewServer(app.Config.Addr, app.Assessor, reporting.NewPDFExporter())

	return nil
}

// Run starts the web server and blocks until the context is cancelled.
func (app *Application) Run(ctx context.Context) error {
	return app.WebServer.Run(ctx)
}

// Close releases held resources.
func (app *Application) Close() error {
	if app.Cache != nil {
		return app.Cache.Close()
	}
	return nil
}
