package comics

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/comicfinder/comicfinder/pkg/errcodes"
	"github.com/comicfinder/comicfinder/pkg/migrations"
	"github.com/comicfinder/comicfinder/pkg/models"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	// Every connection to :memory: is its own database.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func mustDate(t *testing.T, s string) *models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return &d
}

func newComic(t *testing.T, externalID int, title, onsale string) *models.Comic {
	t.Helper()
	comic := &models.Comic{
		ExternalID: pointerutil.Int(externalID),
		Title:      title,
		Format:     pointerutil.String(models.ComicFormatComic),
	}
	if onsale != "" {
		comic.OnsaleDate = mustDate(t, onsale)
	}
	return comic
}

func TestUpsertByExternalID_InsertsThenUpdates(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	comic := newComic(t, 1001, "Fantastic Four #1", "2025-08-06")
	comic.Description = pointerutil.String("First")

	inserted, err := svc.UpsertByExternalID(ctx, comic)
	require.NoError(t, err)
	assert.True(t, inserted)
	require.NotZero(t, comic.ID)
	firstID := comic.ID

	stored, err := svc.RetrieveComic(ctx, RetrieveComicOptions{ExternalID: pointerutil.Int(1001)})
	require.NoError(t, err)
	createdAt := stored.CreatedAt

	time.Sleep(5 * time.Millisecond)

	again := newComic(t, 1001, "Fantastic Four #1", "2025-08-13")
	again.ThumbnailURL = pointerutil.String("https://img/ff1.jpg")

	inserted, err = svc.UpsertByExternalID(ctx, again)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, firstID, again.ID)

	stored, err = svc.RetrieveComic(ctx, RetrieveComicOptions{ID: &firstID})
	require.NoError(t, err)
	assert.Equal(t, "2025-08-13", stored.OnsaleDate.String())
	assert.Equal(t, "https://img/ff1.jpg", *stored.ThumbnailURL)
	// Every mapped field is overwritten, including ones now absent.
	assert.Nil(t, stored.Description)
	assert.True(t, createdAt.Equal(stored.CreatedAt))

	count, err := svc.CountComics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUpsertByExternalID_RequiresExternalID(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	_, err := svc.UpsertByExternalID(context.Background(), &models.Comic{Title: "Loose"})
	require.Error(t, err)

	var e *errcodes.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "invalid_argument", e.Code)
}

func TestRetrieveComic_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)

	_, err := svc.RetrieveComic(context.Background(), RetrieveComicOptions{ID: pointerutil.Int(42)})
	assert.Equal(t, errcodes.NotFound("Comic"), err)
}

func TestListComics_OrderAndRange(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	for _, c := range []*models.Comic{
		newComic(t, 1, "X-Men #5", "2025-08-13"),
		newComic(t, 2, "Avengers #3", "2025-08-13"),
		newComic(t, 3, "Daredevil #1", "2025-08-06"),
		newComic(t, 4, "Undated #1", ""),
		newComic(t, 5, "Thor #9", "2025-09-01"),
	} {
		_, err := svc.UpsertByExternalID(ctx, c)
		require.NoError(t, err)
	}

	all, total, err := svc.ListComicsWithTotal(ctx, ListComicsOptions{})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, all, 5)
	assert.Equal(t, []string{"Daredevil #1", "Avengers #3", "X-Men #5", "Thor #9", "Undated #1"}, titles(all))

	ranged, err := svc.ListComics(ctx, ListComicsOptions{
		Start: mustDate(t, "2025-08-07"),
		End:   mustDate(t, "2025-08-31"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Avengers #3", "X-Men #5"}, titles(ranged))

	paged, total, err := svc.ListComicsWithTotal(ctx, ListComicsOptions{
		Limit:  pointerutil.Int(2),
		Offset: pointerutil.Int(1),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Equal(t, []string{"Avengers #3", "X-Men #5"}, titles(paged))
}

func TestSearchComics(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	for _, c := range []*models.Comic{
		newComic(t, 1, "Amazing Spider-Man #100", "2025-08-13"),
		newComic(t, 2, "Spider-Gwen #2", "2025-08-06"),
		newComic(t, 3, "100% Marvel #1", "2025-08-20"),
		newComic(t, 4, "Hulk #1", "2025-08-20"),
	} {
		_, err := svc.UpsertByExternalID(ctx, c)
		require.NoError(t, err)
	}

	results, err := svc.SearchComics(ctx, SearchComicsOptions{Query: "SPIDER"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Spider-Gwen #2", "Amazing Spider-Man #100"}, titles(results))

	results, err = svc.SearchComics(ctx, SearchComicsOptions{Query: "%"})
	require.NoError(t, err)
	assert.Equal(t, []string{"100% Marvel #1"}, titles(results))

	results, err = svc.SearchComics(ctx, SearchComicsOptions{Query: "_"})
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = svc.SearchComics(ctx, SearchComicsOptions{Query: "   "})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSeedSamples_IsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	inserted, err := svc.SeedSamples(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, inserted)

	inserted, err = svc.SeedSamples(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	comics, err := svc.ListComics(ctx, ListComicsOptions{})
	require.NoError(t, err)
	require.Len(t, comics, 4)
	assert.Equal(t, "Fantastic Four #1", comics[0].Title)
	assert.Equal(t, "Ryan North", *comics[0].Author)
	assert.Equal(t, "The First Family returns.", *comics[0].Description)
	assert.Nil(t, comics[0].ExternalID)
	assert.Equal(t, "Trade Paperback", *comics[2].Format)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "100!%", escapeLike("100%"))
	assert.Equal(t, "a!_b", escapeLike("a_b"))
	assert.Equal(t, "wow!!", escapeLike("wow!"))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func titles(comics []*models.Comic) []string {
	out := make([]string, 0, len(comics))
	for _, c := range comics {
		out = append(out, c.Title)
	}
	return out
}
