package comicsync

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutesWithGroup registers the sync trigger on g. The Marvel path
// is kept for clients written against the earlier Marvel API backend.
func RegisterRoutesWithGroup(g *echo.Group, syncer *Syncer) {
	h := &handler{
		syncer: syncer,
	}

	g.POST("/comicvine/sync", h.sync)
	g.POST("/marvel/sync", h.sync)
}
