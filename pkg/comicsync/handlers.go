package comicsync

import (
	"context"
	"net/http"

	"github.com/comicfinder/comicfinder/pkg/comicvine"
	"github.com/comicfinder/comicfinder/pkg/errcodes"
	"github.com/comicfinder/comicfinder/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type runner interface {
	Run(ctx context.Context, opts RunOptions) (*Result, error)
}

type handler struct {
	syncer runner
}

func (h *handler) sync(c echo.Context) error {
	ctx := c.Request().Context()

	params := SyncQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	start, err := models.ParseDate(params.Start)
	if err != nil {
		return errcodes.ValidationError(`"start" should be in the format of YYYY-MM-DD`)
	}
	end, err := models.ParseDate(params.End)
	if err != nil {
		return errcodes.ValidationError(`"end" should be in the format of YYYY-MM-DD`)
	}
	if end.Before(start.Time) {
		return errcodes.InvalidArgument("end must be >= start")
	}

	result, err := h.syncer.Run(ctx, RunOptions{
		Start:   start,
		End:     end,
		Trigger: models.SyncRunTriggerManual,
	})
	if err != nil {
		return errors.WithStack(comicvine.HTTPError(err))
	}

	return errors.WithStack(c.JSON(http.StatusOK, result))
}
