package syncruns

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers sync run routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	syncRunService := NewService(db)

	h := &handler{
		syncRunService: syncRunService,
	}

	g.GET("", h.list)
	g.GET("/:id", h.retrieve)
}
