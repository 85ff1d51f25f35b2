package comicsync

import (
	"context"
	"fmt"

	"github.com/comicfinder/comicfinder/pkg/comics"
	"github.com/comicfinder/comicfinder/pkg/comicvine"
	"github.com/comicfinder/comicfinder/pkg/config"
	"github.com/comicfinder/comicfinder/pkg/errcodes"
	"github.com/comicfinder/comicfinder/pkg/models"
	"github.com/comicfinder/comicfinder/pkg/syncruns"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"golang.org/x/sync/singleflight"
)

const pageSize = 100

// Catalog is the part of the external catalog client the syncer needs.
type Catalog interface {
	FetchIssuesByDateRange(ctx context.Context, start, end string, field comicvine.DateField, limit, offset int) (*comicvine.IssuesPage, error)
	FetchVolumesByIDs(ctx context.Context, ids []int) (map[int]*comicvine.Volume, error)
}

// Store persists mapped comics keyed by their external id.
type Store interface {
	UpsertByExternalID(ctx context.Context, comic *models.Comic) (bool, error)
}

type Counts struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

func (c Counts) add(o Counts) Counts {
	return Counts{c.Inserted + o.Inserted, c.Updated + o.Updated}
}

// Result is the outcome of syncing a window. Inserted and Updated are the
// sums of both passes, so an issue matched by both its store date and its
// cover date is counted twice.
type Result struct {
	Inserted  int    `json:"inserted"`
	Updated   int    `json:"updated"`
	StoreDate Counts `json:"store_date"`
	CoverDate Counts `json:"cover_date"`
	SyncRunID int    `json:"sync_run_id,omitempty"`
	// Joined is set for callers that waited on a sync another caller
	// started.
	Joined bool `json:"joined,omitempty"`
}

type RunOptions struct {
	Start   models.Date
	End     models.Date
	Trigger string
}

type Syncer struct {
	catalog Catalog
	store   Store
	runs    *syncruns.Service
	filter  PublisherFilter
	flight  singleflight.Group
}

func NewSyncer(catalog Catalog, store Store, runs *syncruns.Service, filter PublisherFilter) *Syncer {
	return &Syncer{
		catalog: catalog,
		store:   store,
		runs:    runs,
		filter:  filter,
	}
}

// New wires a syncer against the ComicVine client and the database.
func New(cfg *config.Config, db *bun.DB) *Syncer {
	return NewSyncer(
		comicvine.NewFromConfig(cfg),
		comics.NewService(db),
		syncruns.NewService(db),
		NewPublisherFilter(cfg),
	)
}

// SyncRange syncs every issue dated within [startISO, endISO], first by
// store date and then by cover date. A catalog failure stops the sync, but
// whatever was upserted before it stays. The returned result holds the
// counts up to that point even when err is set.
func (s *Syncer) SyncRange(ctx context.Context, startISO, endISO string) (*Result, error) {
	start, err := models.ParseDate(startISO)
	if err != nil {
		return nil, errcodes.InvalidArgument(fmt.Sprintf("Invalid start date %q: use YYYY-MM-DD.", startISO))
	}
	end, err := models.ParseDate(endISO)
	if err != nil {
		return nil, errcodes.InvalidArgument(fmt.Sprintf("Invalid end date %q: use YYYY-MM-DD.", endISO))
	}
	if end.Before(start.Time) {
		return nil, errcodes.InvalidArgument("End date must not be before start date.")
	}

	result := &Result{}

	result.StoreDate, err = s.syncField(ctx, startISO, endISO, comicvine.DateFieldStore)
	result.tally()
	if err != nil {
		return result, errors.WithStack(err)
	}

	result.CoverDate, err = s.syncField(ctx, startISO, endISO, comicvine.DateFieldCover)
	result.tally()
	if err != nil {
		return result, errors.WithStack(err)
	}

	return result, nil
}

func (r *Result) tally() {
	total := r.StoreDate.add(r.CoverDate)
	r.Inserted, r.Updated = total.Inserted, total.Updated
}

// syncField pages through one date field. Each upsert commits on its own, so
// a failure on a later page leaves earlier pages stored.
func (s *Syncer) syncField(ctx context.Context, start, end string, field comicvine.DateField) (Counts, error) {
	log := logger.FromContext(ctx).Data(logger.Data{"field": string(field)})
	counts := Counts{}

	total := 0
	for offset := 0; ; offset += pageSize {
		page, err := s.catalog.FetchIssuesByDateRange(ctx, start, end, field, pageSize, offset)
		if err != nil {
			return counts, errors.WithStack(err)
		}
		// The first page's total decides how far to page.
		if offset == 0 {
			total = page.Total
		}

		volumes := map[int]*comicvine.Volume{}
		if ids := volumeIDs(page.Issues); len(ids) > 0 {
			volumes, err = s.catalog.FetchVolumesByIDs(ctx, ids)
			if err != nil {
				return counts, errors.WithStack(err)
			}
		}

		skipped := 0
		for _, issue := range page.Issues {
			if issue == nil {
				continue
			}

			var vol *comicvine.Volume
			if issue.Volume != nil {
				vol = volumes[issue.Volume.ID]
			}
			if !s.filter.Accept(vol) {
				skipped++
				continue
			}

			comic, externalID := MapIssue(issue, vol)
			if externalID == 0 {
				skipped++
				continue
			}

			inserted, err := s.store.UpsertByExternalID(ctx, comic)
			if err != nil {
				return counts, errors.WithStack(err)
			}
			if inserted {
				counts.Inserted++
			} else {
				counts.Updated++
			}
		}

		log.Info("synced page", logger.Data{
			"offset":   offset,
			"total":    total,
			"issues":   len(page.Issues),
			"skipped":  skipped,
			"inserted": counts.Inserted,
			"updated":  counts.Updated,
		})

		if offset+pageSize >= total {
			return counts, nil
		}
	}
}

func volumeIDs(issues []*comicvine.Issue) []int {
	seen := map[int]struct{}{}
	ids := []int{}
	for _, issue := range issues {
		if issue == nil || issue.Volume == nil || issue.Volume.ID == 0 {
			continue
		}
		if _, ok := seen[issue.Volume.ID]; ok {
			continue
		}
		seen[issue.Volume.ID] = struct{}{}
		ids = append(ids, issue.Volume.ID)
	}
	return ids
}

// Run syncs a window and records it as a sync run. Concurrent runs of the
// same window share a single execution and its result. The execution is
// detached from the caller's cancellation, since other callers may be
// waiting on it.
func (s *Syncer) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	key := opts.Start.String() + "|" + opts.End.String()

	leader := false
	v, err, _ := s.flight.Do(key, func() (interface{}, error) {
		leader = true
		return s.run(context.WithoutCancel(ctx), opts)
	})
	result, _ := v.(*Result)
	if leader {
		return result, err
	}

	logger.FromContext(ctx).Info("joined in-flight sync", logger.Data{"window": key})
	if result != nil {
		joined := *result
		joined.Joined = true
		result = &joined
	}
	return result, err
}

func (s *Syncer) run(ctx context.Context, opts RunOptions) (*Result, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	log := logger.FromContext(ctx).ID(id.String()).Root(logger.Data{
		"start":   opts.Start.String(),
		"end":     opts.End.String(),
		"trigger": opts.Trigger,
	})
	ctx = log.WithContext(ctx)

	run := &models.SyncRun{
		StartDate: opts.Start,
		EndDate:   opts.End,
		Trigger:   opts.Trigger,
		Status:    models.SyncRunStatusInProgress,
	}
	if err := s.runs.CreateSyncRun(ctx, run); err != nil {
		return nil, errors.WithStack(err)
	}
	log.Info("sync started", logger.Data{"sync_run_id": run.ID})

	result, syncErr := s.SyncRange(ctx, opts.Start.String(), opts.End.String())
	if result == nil {
		result = &Result{}
	}
	result.SyncRunID = run.ID

	run.Inserted = result.Inserted
	run.Updated = result.Updated
	run.Status = models.SyncRunStatusCompleted
	if syncErr != nil {
		run.Status = models.SyncRunStatusFailed
		msg := syncErr.Error()
		run.Error = &msg
	}
	err = s.runs.UpdateSyncRun(ctx, run, syncruns.UpdateSyncRunOptions{
		Columns: []string{"status", "inserted", "updated", "error"},
	})
	if err != nil {
		log.Err(err).Error("failed to record sync run")
	}

	if syncErr != nil {
		log.Err(syncErr).Warn("sync failed")
		return result, errors.WithStack(syncErr)
	}

	log.Info("sync completed", logger.Data{"inserted": result.Inserted, "updated": result.Updated})
	return result, nil
}

// SyncWindow runs an automatic sync for a window the read API found empty.
func (s *Syncer) SyncWindow(ctx context.Context, start, end models.Date) error {
	_, err := s.Run(ctx, RunOptions{Start: start, End: end, Trigger: models.SyncRunTriggerAuto})
	return errors.WithStack(err)
}
