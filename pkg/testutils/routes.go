// Package testutils provides endpoints that end-to-end tests use to put the
// database into a known state. They are only registered when
// ENVIRONMENT=test.
package testutils

import (
	"github.com/comicfinder/comicfinder/pkg/comics"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{
		db:           db,
		comicService: comics.NewService(db),
	}

	test := e.Group("/test")
	test.POST("/comics", h.createComic)
	test.DELETE("/comics", h.deleteAll)
	test.POST("/seed", h.seed)
}
