package comics

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers the read API on g. syncer may be nil to
// disable syncing empty weeks.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, syncer WindowSyncer) {
	comicService := NewService(db)

	h := &handler{
		comicService: comicService,
		syncer:       syncer,
	}

	g.GET("", h.list)
	g.GET("/search", h.search)
	g.GET("/week", h.week)
	g.GET("/:id", h.retrieve)
}
