package comics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/comicfinder/comicfinder/pkg/errcodes"
	"github.com/comicfinder/comicfinder/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

const totalCountHeader = "X-Total-Count"

// WindowSyncer pulls a release window from the external catalog into
// storage.
type WindowSyncer interface {
	SyncWindow(ctx context.Context, start, end models.Date) error
}

type handler struct {
	comicService *Service
	// nil when auto-sync on an empty week is off.
	syncer WindowSyncer
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return errcodes.NotFound("Comic")
	}

	comic, err := h.comicService.RetrieveComic(ctx, RetrieveComicOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, comic))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListComicsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := ListComicsOptions{
		Limit:  params.Limit,
		Offset: params.Offset,
	}
	if params.Start != "" {
		start, err := models.ParseDate(params.Start)
		if err != nil {
			return errcodes.ValidationError(`"start" should be in the format of YYYY-MM-DD`)
		}
		opts.Start = &start
	}
	if params.End != "" {
		end, err := models.ParseDate(params.End)
		if err != nil {
			return errcodes.ValidationError(`"end" should be in the format of YYYY-MM-DD`)
		}
		opts.End = &end
	}

	comics, total, err := h.comicService.ListComicsWithTotal(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	c.Response().Header().Set(totalCountHeader, strconv.Itoa(total))
	return errors.WithStack(c.JSON(http.StatusOK, comics))
}

func (h *handler) search(c echo.Context) error {
	ctx := c.Request().Context()

	params := SearchComicsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	comics, err := h.comicService.SearchComics(ctx, SearchComicsOptions{
		Query:  params.Q,
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, comics))
}

// week lists the release week containing wed. An empty week triggers a
// catalog sync for it first. Sync failures are logged and the stored rows
// are returned anyway.
func (h *handler) week(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	params := WeekQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	day, err := models.ParseDate(params.Wed)
	if err != nil {
		return errcodes.ValidationError(`"wed" should be in the format of YYYY-MM-DD`)
	}
	start, end := WeekWindow(day)
	opts := ListComicsOptions{Start: &start, End: &end}

	comics, err := h.comicService.ListComics(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	if len(comics) == 0 && h.syncer != nil {
		log.Info("week is empty, syncing", logger.Data{"start": start.String(), "end": end.String()})
		if err := h.syncer.SyncWindow(ctx, start, end); err != nil {
			log.Err(err).Warn("week auto-sync failed")
		}

		// Earlier pages may have committed even when the sync failed.
		comics, err = h.comicService.ListComics(ctx, opts)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	return errors.WithStack(c.JSON(http.StatusOK, comics))
}
