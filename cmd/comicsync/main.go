package main

import (
	"context"
	"fmt"
	"os"

	"github.com/comicfinder/comicfinder/pkg/comics"
	"github.com/comicfinder/comicfinder/pkg/comicsync"
	"github.com/comicfinder/comicfinder/pkg/config"
	"github.com/comicfinder/comicfinder/pkg/database"
	"github.com/comicfinder/comicfinder/pkg/migrations"
	"github.com/comicfinder/comicfinder/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}
	defer db.Close()

	app := &cli.App{
		Name:  "comicsync",
		Usage: "sync releases from ComicVine into the local database",
		Before: func(c *cli.Context) error {
			_, err := migrations.BringUpToDate(c.Context, db)
			return errors.WithStack(err)
		},
		Commands: []*cli.Command{
			{
				Name:  "range",
				Usage: "sync every issue dated within [start, end]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "start", Usage: "first day, YYYY-MM-DD", Required: true},
					&cli.StringFlag{Name: "end", Usage: "last day, YYYY-MM-DD", Required: true},
				},
				Action: func(c *cli.Context) error {
					start, err := parseFlagDate(c, "start")
					if err != nil {
						return err
					}
					end, err := parseFlagDate(c, "end")
					if err != nil {
						return err
					}
					return runSync(c.Context, cfg, db, start, end)
				},
			},
			{
				Name:  "week",
				Usage: "sync the Wednesday-to-Tuesday release week containing a day",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "wed", Usage: "any day of the week, YYYY-MM-DD", Required: true},
				},
				Action: func(c *cli.Context) error {
					day, err := parseFlagDate(c, "wed")
					if err != nil {
						return err
					}
					start, end := comics.WeekWindow(day)
					return runSync(c.Context, cfg, db, start, end)
				},
			},
			{
				Name:  "seed",
				Usage: "insert the sample comics if they aren't there yet",
				Action: func(c *cli.Context) error {
					n, err := comics.NewService(db).SeedSamples(c.Context)
					if err != nil {
						return err
					}
					fmt.Printf("Seeded %d sample comics\n", n)
					return nil
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

func parseFlagDate(c *cli.Context, name string) (models.Date, error) {
	d, err := models.ParseDate(c.String(name))
	if err != nil {
		return models.Date{}, errors.Errorf("--%s must be in the format of YYYY-MM-DD", name)
	}
	return d, nil
}

func runSync(ctx context.Context, cfg *config.Config, db *bun.DB, start, end models.Date) error {
	ctx = logger.New().WithContext(ctx)

	result, err := comicsync.New(cfg, db).Run(ctx, comicsync.RunOptions{
		Start:   start,
		End:     end,
		Trigger: models.SyncRunTriggerCLI,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	fmt.Println(string(out))
	return nil
}
