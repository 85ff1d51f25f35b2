package comicvine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/comicfinder/comicfinder/pkg/errcodes"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPacer struct {
	mu    sync.Mutex
	waits int
}

func (p *countingPacer) Wait(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waits++
	return nil
}

type fakeCatalog struct {
	t        *testing.T
	mu       sync.Mutex
	requests []*http.Request
	handler  func(w http.ResponseWriter, r *http.Request)
}

func newFakeCatalog(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*fakeCatalog, *Client) {
	t.Helper()
	fc := &fakeCatalog{t: t, handler: handler}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fc.mu.Lock()
		fc.requests = append(fc.requests, r)
		fc.mu.Unlock()
		fc.handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c := New(Options{
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		UserAgent: "comic-finder-test/1.0",
		Timeout:   5 * time.Second,
	})
	return fc, c
}

func (fc *fakeCatalog) count() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return len(fc.requests)
}

func TestFetchIssuesByDateRange(t *testing.T) {
	fc, c := newFakeCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"status_code": 1,
			"error": "OK",
			"limit": 100,
			"offset": 0,
			"number_of_total_results": 2,
			"results": [
				{"id": 1001, "name": null, "issue_number": "1", "volume": {"id": 10, "name": "Fantastic Four"},
				 "store_date": "2025-08-06", "cover_date": "2025-10-01",
				 "image": {"small_url": "https://img/small.jpg", "thumb_url": ""}, "description": "<p>Hi</p>", "deck": null},
				{"id": 1002, "issue_number": "2", "volume": null}
			]
		}`)
	})

	page, err := c.FetchIssuesByDateRange(context.Background(), "2025-08-06", "2025-08-12", DateFieldStore, 100, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 100, page.Limit)
	assert.Equal(t, 0, page.Offset)
	require.Len(t, page.Issues, 2)
	assert.Equal(t, 1001, page.Issues[0].ID)
	assert.Equal(t, "Fantastic Four", page.Issues[0].Volume.Name)
	assert.Equal(t, "https://img/small.jpg", page.Issues[0].Image.SmallURL)
	assert.Nil(t, page.Issues[1].Volume)

	require.Equal(t, 1, fc.count())
	req := fc.requests[0]
	assert.Equal(t, "/issues/", req.URL.Path)
	q := req.URL.Query()
	assert.Equal(t, "store_date:2025-08-06|2025-08-12", q.Get("filter"))
	assert.Equal(t, "store_date:asc", q.Get("sort"))
	assert.Equal(t, issueFieldList, q.Get("field_list"))
	assert.Equal(t, "100", q.Get("limit"))
	assert.Equal(t, "0", q.Get("offset"))
	assert.Equal(t, "test-key", q.Get("api_key"))
	assert.Equal(t, "json", q.Get("format"))
	assert.Equal(t, "comic-finder-test/1.0", req.Header.Get("User-Agent"))
}

func TestFetchIssuesByDateRange_InvalidField(t *testing.T) {
	fc, c := newFakeCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := c.FetchIssuesByDateRange(context.Background(), "2025-08-06", "2025-08-12", DateField("release_date"), 100, 0)
	require.Error(t, err)

	var e *errcodes.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "invalid_argument", e.Code)
	assert.Equal(t, 0, fc.count())
}

func TestFetchIssuesByDateRange_MissingAPIKey(t *testing.T) {
	fc, c := newFakeCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	c.apiKey = ""

	_, err := c.FetchIssuesByDateRange(context.Background(), "2025-08-06", "2025-08-12", DateFieldCover, 100, 0)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, 0, fc.count())
}

func TestFetchIssuesByDateRange_HTTPError(t *testing.T) {
	_, c := newFakeCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, strings.Repeat("x", 500))
	})

	_, err := c.FetchIssuesByDateRange(context.Background(), "2025-08-06", "2025-08-12", DateFieldStore, 100, 0)

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusInternalServerError, upErr.StatusCode)
	assert.Len(t, upErr.Body, maxErrorBodyLength)
	assert.True(t, strings.HasPrefix(upErr.Error(), "HTTP 500: "))
}

func TestFetchIssuesByDateRange_CatalogError(t *testing.T) {
	_, c := newFakeCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status_code": 100, "error": "Invalid API Key", "results": []}`)
	})

	_, err := c.FetchIssuesByDateRange(context.Background(), "2025-08-06", "2025-08-12", DateFieldStore, 100, 0)

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Contains(t, upErr.Error(), "Invalid API Key")
}

func TestFetchIssuesByDateRange_TransportError(t *testing.T) {
	c := New(Options{APIKey: "test-key", BaseURL: "http://127.0.0.1:1", Timeout: time.Second})

	_, err := c.FetchIssuesByDateRange(context.Background(), "2025-08-06", "2025-08-12", DateFieldStore, 100, 0)

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, 0, upErr.StatusCode)
	assert.NotContains(t, upErr.Error(), "test-key")
}

func TestFetchVolumesByIDs(t *testing.T) {
	fc, c := newFakeCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		filter := strings.TrimPrefix(r.URL.Query().Get("filter"), "id:")
		var results []string
		for _, id := range strings.Split(filter, "|") {
			// 999 is unknown to the catalog.
			if id == "999" {
				continue
			}
			results = append(results, fmt.Sprintf(`{"id": %s, "name": "Volume %s", "publisher": {"id": 31, "name": "Marvel"}}`, id, id))
		}
		fmt.Fprintf(w, `{"status_code": 1, "error": "OK", "results": [%s]}`, strings.Join(results, ","))
	})

	volumes, err := c.FetchVolumesByIDs(context.Background(), []int{10, 20, 10, 999})
	require.NoError(t, err)

	require.Equal(t, 1, fc.count())
	assert.Equal(t, "id:10|20|999", fc.requests[0].URL.Query().Get("filter"))
	assert.Equal(t, volumeFieldList, fc.requests[0].URL.Query().Get("field_list"))
	assert.Equal(t, "/volumes/", fc.requests[0].URL.Path)

	assert.Len(t, volumes, 2)
	assert.Equal(t, "Marvel", volumes[10].Publisher.Name)
	assert.NotContains(t, volumes, 999)
}

func TestFetchVolumesByIDs_Chunking(t *testing.T) {
	var sizes []int
	var mu sync.Mutex
	_, c := newFakeCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		filter := strings.TrimPrefix(r.URL.Query().Get("filter"), "id:")
		mu.Lock()
		sizes = append(sizes, len(strings.Split(filter, "|")))
		mu.Unlock()
		fmt.Fprint(w, `{"status_code": 1, "error": "OK", "results": []}`)
	})
	p := &countingPacer{}
	c.pacer = p

	ids := make([]int, 120)
	for i := range ids {
		ids[i] = i + 1
	}

	volumes, err := c.FetchVolumesByIDs(context.Background(), ids)
	require.NoError(t, err)
	assert.Empty(t, volumes)

	assert.Equal(t, []int{50, 50, 20}, sizes)
	assert.Equal(t, 3, p.waits)
}

func TestFetchVolumesByIDs_Pacing(t *testing.T) {
	_, c := newFakeCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status_code": 1, "error": "OK", "results": []}`)
	})
	c.volumeBatchSize = 1
	c.pacer = New(Options{VolumeBatchDelay: 50 * time.Millisecond}).pacer

	started := time.Now()
	_, err := c.FetchVolumesByIDs(context.Background(), []int{1, 2, 3})
	require.NoError(t, err)

	// The first chunk goes out immediately, the next two wait a delay each.
	assert.GreaterOrEqual(t, time.Since(started), 90*time.Millisecond)
}

func TestFetchVolumesByIDs_Empty(t *testing.T) {
	fc, c := newFakeCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	volumes, err := c.FetchVolumesByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, volumes)
	assert.Equal(t, 0, fc.count())
}

func TestFetchVolumesByIDs_FailureStopsChunks(t *testing.T) {
	fc, c := newFakeCatalog(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	c.volumeBatchSize = 2

	_, err := c.FetchVolumesByIDs(context.Background(), []int{1, 2, 3, 4, 5})

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, 1, fc.count())
}

func TestNew_ClampsBatchSize(t *testing.T) {
	assert.Equal(t, defaultVolumeBatchSize, New(Options{}).volumeBatchSize)
	assert.Equal(t, maxVolumeBatchSize, New(Options{VolumeBatchSize: 500}).volumeBatchSize)
	assert.Equal(t, 7, New(Options{VolumeBatchSize: 7}).volumeBatchSize)
}

func TestChunkIDs(t *testing.T) {
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, chunkIDs([]int{1, 2, 3, 4, 5}, 2))
	assert.Equal(t, [][]int{{1, 2}}, chunkIDs([]int{1, 2}, 2))
	assert.Nil(t, chunkIDs(nil, 2))
}

func TestHTTPError(t *testing.T) {
	var e *errcodes.Error

	require.ErrorAs(t, HTTPError(errors.WithStack(missingAPIKey())), &e)
	assert.Equal(t, http.StatusServiceUnavailable, e.HTTPCode)

	require.ErrorAs(t, HTTPError(&UpstreamError{StatusCode: 500, Body: "oops"}), &e)
	assert.Equal(t, http.StatusBadGateway, e.HTTPCode)
	assert.Equal(t, "HTTP 500: oops", e.Message)

	plain := errors.New("boom")
	assert.Equal(t, plain, HTTPError(plain))
}
