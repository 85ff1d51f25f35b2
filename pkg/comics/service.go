package comics

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/comicfinder/comicfinder/pkg/errcodes"
	"github.com/comicfinder/comicfinder/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveComicOptions struct {
	ID         *int
	ExternalID *int
}

type ListComicsOptions struct {
	Start  *models.Date
	End    *models.Date
	Limit  *int
	Offset *int

	includeTotal bool
}

type SearchComicsOptions struct {
	Query  string
	Limit  *int
	Offset *int
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// UpsertByExternalID inserts the comic, or overwrites every mapped field of
// the row that already has its external id. It reports whether a new row was
// created. On return comic holds the stored row, including its id.
func (svc *Service) UpsertByExternalID(ctx context.Context, comic *models.Comic) (bool, error) {
	if comic.ExternalID == nil {
		return false, errcodes.InvalidArgument("Comic is missing an external id.")
	}

	inserted := false
	err := svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var existingID int
		err := tx.
			NewSelect().
			Model((*models.Comic)(nil)).
			ColumnExpr("c.id").
			Where("c.external_id = ?", *comic.ExternalID).
			Scan(ctx, &existingID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			inserted = true
		case err != nil:
			return errors.WithStack(err)
		}

		now := time.Now()
		comic.ID = 0
		comic.CreatedAt = now
		comic.UpdatedAt = now

		// created_at is left out of the update so the original insert time
		// survives.
		_, err = tx.
			NewInsert().
			Model(comic).
			On("CONFLICT (external_id) DO UPDATE").
			Set("title = EXCLUDED.title").
			Set("author = EXCLUDED.author").
			Set("onsale_date = EXCLUDED.onsale_date").
			Set("format = EXCLUDED.format").
			Set("thumbnail_url = EXCLUDED.thumbnail_url").
			Set("description = EXCLUDED.description").
			Set("issue_number = EXCLUDED.issue_number").
			Set("updated_at = EXCLUDED.updated_at").
			Returning("*").
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return false, errors.WithStack(err)
	}

	return inserted, nil
}

// CreateComic inserts a comic that isn't tied to the external catalog, like
// the bundled samples.
func (svc *Service) CreateComic(ctx context.Context, comic *models.Comic) error {
	now := time.Now()
	if comic.CreatedAt.IsZero() {
		comic.CreatedAt = now
	}
	comic.UpdatedAt = comic.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(comic).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) RetrieveComic(ctx context.Context, opts RetrieveComicOptions) (*models.Comic, error) {
	comic := &models.Comic{}

	q := svc.db.
		NewSelect().
		Model(comic)

	if opts.ID != nil {
		q = q.Where("c.id = ?", *opts.ID)
	}
	if opts.ExternalID != nil {
		q = q.Where("c.external_id = ?", *opts.ExternalID)
	}

	err := q.Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Comic")
		}
		return nil, errors.WithStack(err)
	}

	return comic, nil
}

func (svc *Service) ListComics(ctx context.Context, opts ListComicsOptions) ([]*models.Comic, error) {
	c, _, err := svc.listComicsWithTotal(ctx, opts)
	return c, errors.WithStack(err)
}

func (svc *Service) ListComicsWithTotal(ctx context.Context, opts ListComicsOptions) ([]*models.Comic, int, error) {
	opts.includeTotal = true
	return svc.listComicsWithTotal(ctx, opts)
}

func (svc *Service) listComicsWithTotal(ctx context.Context, opts ListComicsOptions) ([]*models.Comic, int, error) {
	comics := []*models.Comic{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&comics).
		OrderExpr("c.onsale_date IS NULL").
		Order("c.onsale_date ASC", "c.title ASC", "c.id ASC")

	if opts.Start != nil {
		q = q.Where("c.onsale_date >= ?", *opts.Start)
	}
	if opts.End != nil {
		q = q.Where("c.onsale_date <= ?", *opts.End)
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return comics, total, nil
}

// SearchComics matches a case-insensitive substring of the title. LIKE
// wildcards in the query are matched literally.
func (svc *Service) SearchComics(ctx context.Context, opts SearchComicsOptions) ([]*models.Comic, error) {
	comics := []*models.Comic{}

	query := sanitizeSearchQuery(opts.Query)
	if query == "" {
		return comics, nil
	}

	q := svc.db.
		NewSelect().
		Model(&comics).
		Where("LOWER(c.title) LIKE ? ESCAPE '!'", "%"+escapeLike(strings.ToLower(query))+"%").
		OrderExpr("c.onsale_date IS NULL").
		Order("c.onsale_date ASC", "c.title ASC", "c.id ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, errors.WithStack(err)
	}

	return comics, nil
}

func (svc *Service) CountComics(ctx context.Context) (int, error) {
	count, err := svc.db.
		NewSelect().
		Model((*models.Comic)(nil)).
		Count(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return count, nil
}
