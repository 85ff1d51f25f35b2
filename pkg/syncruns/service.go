package syncruns

import (
	"context"
	"database/sql"
	"time"

	"github.com/comicfinder/comicfinder/pkg/errcodes"
	"github.com/comicfinder/comicfinder/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveSyncRunOptions struct {
	ID *int
}

type ListSyncRunsOptions struct {
	Limit    *int
	Offset   *int
	Statuses []string

	includeTotal bool
}

type UpdateSyncRunOptions struct {
	Columns []string
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateSyncRun(ctx context.Context, run *models.SyncRun) error {
	now := time.Now()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = run.CreatedAt
	if run.Status == "" {
		run.Status = models.SyncRunStatusInProgress
	}

	_, err := svc.db.
		NewInsert().
		Model(run).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveSyncRun(ctx context.Context, opts RetrieveSyncRunOptions) (*models.SyncRun, error) {
	run := &models.SyncRun{}

	q := svc.db.
		NewSelect().
		Model(run)

	if opts.ID != nil {
		q = q.Where("sr.id = ?", *opts.ID)
	}

	err := q.Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Sync run")
		}
		return nil, errors.WithStack(err)
	}

	return run, nil
}

func (svc *Service) ListSyncRuns(ctx context.Context, opts ListSyncRunsOptions) ([]*models.SyncRun, error) {
	r, _, err := svc.listSyncRunsWithTotal(ctx, opts)
	return r, errors.WithStack(err)
}

func (svc *Service) ListSyncRunsWithTotal(ctx context.Context, opts ListSyncRunsOptions) ([]*models.SyncRun, int, error) {
	opts.includeTotal = true
	return svc.listSyncRunsWithTotal(ctx, opts)
}

func (svc *Service) listSyncRunsWithTotal(ctx context.Context, opts ListSyncRunsOptions) ([]*models.SyncRun, int, error) {
	runs := []*models.SyncRun{}
	var total int
	var err error

	// Newest first.
	q := svc.db.
		NewSelect().
		Model(&runs).
		Order("sr.created_at DESC", "sr.id DESC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if len(opts.Statuses) > 0 {
		q = q.Where("sr.status IN (?)", bun.In(opts.Statuses))
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return runs, total, nil
}

func (svc *Service) UpdateSyncRun(ctx context.Context, run *models.SyncRun, opts UpdateSyncRunOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	run.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.
		NewUpdate().
		Model(run).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.NotFound("Sync run")
		}
		return errors.WithStack(err)
	}

	return nil
}
