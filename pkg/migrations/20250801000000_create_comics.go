package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`
			CREATE TABLE comics (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
				external_id INTEGER,
				title TEXT NOT NULL,
				author TEXT,
				onsale_date TEXT,
				format TEXT,
				thumbnail_url TEXT,
				description TEXT,
				issue_number REAL
			)
		`)
		if err != nil {
			return errors.WithStack(err)
		}

		// Upserts conflict on this index, so it's what keeps one row per issue.
		_, err = db.Exec(`CREATE UNIQUE INDEX ux_comics_external_id ON comics (external_id)`)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = db.Exec(`CREATE INDEX ix_comics_onsale_date ON comics (onsale_date)`)
		if err != nil {
			return errors.WithStack(err)
		}

		return nil
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(`DROP INDEX IF EXISTS ix_comics_onsale_date`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`DROP INDEX IF EXISTS ux_comics_external_id`)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = db.Exec(`DROP TABLE IF EXISTS comics`)
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
