package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/comicfinder/comicfinder/pkg/binder"
	"github.com/comicfinder/comicfinder/pkg/comics"
	"github.com/comicfinder/comicfinder/pkg/comicsync"
	"github.com/comicfinder/comicfinder/pkg/config"
	"github.com/comicfinder/comicfinder/pkg/errcodes"
	"github.com/comicfinder/comicfinder/pkg/syncruns"
	"github.com/comicfinder/comicfinder/pkg/testutils"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB, syncer *comicsync.Syncer) (*http.Server, error) {
	e, err := newEcho(cfg, db, syncer)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func newEcho(cfg *config.Config, db *bun.DB, syncer *comicsync.Syncer) (*echo.Echo, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	api := e.Group("/api")
	api.GET("/health", healthHandler)
	config.RegisterRoutesWithGroup(api.Group("/config"), cfg)

	// A nil *Syncer stored in the interface would still look non-nil to the
	// handler.
	var windowSyncer comics.WindowSyncer
	if cfg.AutoSyncOnMiss && syncer != nil {
		windowSyncer = syncer
	}
	comics.RegisterRoutesWithGroup(api.Group("/comics"), db, windowSyncer)

	comicsync.RegisterRoutesWithGroup(api, syncer)
	syncruns.RegisterRoutesWithGroup(api.Group("/sync-runs"), db)

	if cfg.Environment == config.EnvironmentTest {
		testutils.RegisterRoutes(e, db)
	}

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	return e, nil
}

func healthHandler(c echo.Context) error {
	return errors.WithStack(c.JSON(http.StatusOK, map[string]string{"status": "ok"}))
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
