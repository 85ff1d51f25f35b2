package comics

import (
	"context"
	"time"

	"github.com/comicfinder/comicfinder/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/pointerutil"
)

type sample struct {
	title       string
	author      string
	onsale      time.Time
	format      string
	description string
}

var samples = []sample{
	{"Fantastic Four #1", "Ryan North", day(2025, time.August, 6), models.ComicFormatComic, "The First Family returns."},
	{"Amazing Spider-Man #100", "Zeb Wells", day(2025, time.August, 13), models.ComicFormatComic, ""},
	{"X-Men: Red Vol. 1", "Al Ewing", day(2025, time.August, 20), "Trade Paperback", ""},
	{"Avengers Annual 2025", "Jed MacKay", day(2025, time.August, 27), models.ComicFormatComic, ""},
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// SeedSamples inserts a handful of sample comics so the API has something to
// serve before the first sync. A sample is skipped when a comic with the same
// title and on-sale date exists. It returns how many were inserted.
func (svc *Service) SeedSamples(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)
	inserted := 0

	for _, s := range samples {
		onsale := models.NewDate(s.onsale)

		exists, err := svc.db.
			NewSelect().
			Model((*models.Comic)(nil)).
			Where("c.title = ?", s.title).
			Where("c.onsale_date = ?", onsale).
			Exists(ctx)
		if err != nil {
			return inserted, errors.WithStack(err)
		}
		if exists {
			continue
		}

		comic := &models.Comic{
			Title:      s.title,
			Author:     pointerutil.String(s.author),
			OnsaleDate: &onsale,
			Format:     pointerutil.String(s.format),
		}
		if s.description != "" {
			comic.Description = pointerutil.String(s.description)
		}
		if err := svc.CreateComic(ctx, comic); err != nil {
			return inserted, errors.WithStack(err)
		}
		inserted++
	}

	log.Info("seeded sample comics", logger.Data{"inserted": inserted})
	return inserted, nil
}
