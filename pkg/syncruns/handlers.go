package syncruns

import (
	"net/http"
	"strconv"

	"github.com/comicfinder/comicfinder/pkg/errcodes"
	"github.com/comicfinder/comicfinder/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	syncRunService *Service
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("Sync run")
	}

	run, err := h.syncRunService.RetrieveSyncRun(ctx, RetrieveSyncRunOptions{
		ID: &id,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, run))
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListSyncRunsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	runs, total, err := h.syncRunService.ListSyncRunsWithTotal(ctx, ListSyncRunsOptions{
		Limit:    &params.Limit,
		Offset:   &params.Offset,
		Statuses: params.Status,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		SyncRuns []*models.SyncRun `json:"sync_runs"`
		Total    int               `json:"total"`
	}{runs, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}
