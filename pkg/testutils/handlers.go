package testutils

import (
	"context"
	"net/http"

	"github.com/comicfinder/comicfinder/pkg/comics"
	"github.com/comicfinder/comicfinder/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type handler struct {
	db           *bun.DB
	comicService *comics.Service
}

type createComicRequest struct {
	ExternalID  *int     `json:"external_id"`
	Title       string   `json:"title" validate:"required"`
	Author      *string  `json:"author"`
	OnsaleDate  *string  `json:"onsale_date" validate:"omitempty,date"`
	Format      *string  `json:"format"`
	IssueNumber *float64 `json:"issue_number"`
}

// createComic stores a comic as given, bypassing the catalog.
// POST /test/comics.
func (h *handler) createComic(c echo.Context) error {
	ctx := c.Request().Context()

	params := createComicRequest{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	comic := &models.Comic{
		ExternalID:  params.ExternalID,
		Title:       params.Title,
		Author:      params.Author,
		Format:      params.Format,
		IssueNumber: params.IssueNumber,
	}
	if params.OnsaleDate != nil {
		d, err := models.ParseDate(*params.OnsaleDate)
		if err != nil {
			return errors.WithStack(err)
		}
		comic.OnsaleDate = &d
	}

	if err := h.comicService.CreateComic(ctx, comic); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, comic))
}

type deleteAllResponse struct {
	Comics   int `json:"comics"`
	SyncRuns int `json:"sync_runs"`
}

// deleteAll empties the comics and sync run tables.
// DELETE /test/comics.
func (h *handler) deleteAll(c echo.Context) error {
	ctx := c.Request().Context()
	resp := deleteAllResponse{}

	err := h.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().Model((*models.Comic)(nil)).Where("1=1").Exec(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to delete comics")
		}
		n, _ := res.RowsAffected()
		resp.Comics = int(n)

		res, err = tx.NewDelete().Model((*models.SyncRun)(nil)).Where("1=1").Exec(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to delete sync runs")
		}
		n, _ = res.RowsAffected()
		resp.SyncRuns = int(n)
		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

// seed inserts the sample comics.
// POST /test/seed.
func (h *handler) seed(c echo.Context) error {
	n, err := h.comicService.SeedSamples(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(c.JSON(http.StatusOK, map[string]int{"inserted": n}))
}
