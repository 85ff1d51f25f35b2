package comicvine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/comicfinder/comicfinder/pkg/config"
	"github.com/comicfinder/comicfinder/pkg/errcodes"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
	"golang.org/x/time/rate"
)

const (
	issueFieldList  = "id,issue_number,name,volume,store_date,cover_date,image,description,deck"
	volumeFieldList = "id,name,publisher"

	defaultVolumeBatchSize = 50
	maxVolumeBatchSize     = 100

	// Upstream bodies are only kept for diagnostics.
	maxErrorBodyLength = 200
)

// pacer blocks until the next volume chunk request may be sent.
type pacer interface {
	Wait(ctx context.Context) error
}

type Options struct {
	APIKey           string
	BaseURL          string
	UserAgent        string
	Timeout          time.Duration
	VolumeBatchSize  int
	VolumeBatchDelay time.Duration
}

type Client struct {
	httpClient      *http.Client
	apiKey          string
	baseURL         string
	userAgent       string
	volumeBatchSize int
	pacer           pacer
}

func New(opts Options) *Client {
	batchSize := opts.VolumeBatchSize
	if batchSize <= 0 {
		batchSize = defaultVolumeBatchSize
	}
	if batchSize > maxVolumeBatchSize {
		batchSize = maxVolumeBatchSize
	}

	limit := rate.Inf
	if opts.VolumeBatchDelay > 0 {
		limit = rate.Every(opts.VolumeBatchDelay)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		apiKey:          opts.APIKey,
		baseURL:         strings.TrimRight(opts.BaseURL, "/"),
		userAgent:       opts.UserAgent,
		volumeBatchSize: batchSize,
		pacer:           rate.NewLimiter(limit, 1),
	}
}

func NewFromConfig(cfg *config.Config) *Client {
	return New(Options{
		APIKey:           cfg.ComicVineAPIKey,
		BaseURL:          cfg.ComicVineBaseURL,
		UserAgent:        cfg.ComicVineUserAgent,
		Timeout:          cfg.ComicVineTimeout,
		VolumeBatchSize:  cfg.VolumeBatchSize,
		VolumeBatchDelay: cfg.VolumeBatchDelay,
	})
}

// FetchIssuesByDateRange returns one page of issues whose field date falls in
// [start, end], sorted ascending on that field. start and end are YYYY-MM-DD.
func (c *Client) FetchIssuesByDateRange(ctx context.Context, start, end string, field DateField, limit, offset int) (*IssuesPage, error) {
	if !field.Valid() {
		return nil, errcodes.InvalidArgument(fmt.Sprintf("Unsupported date field %q.", field))
	}

	params := url.Values{}
	params.Set("filter", fmt.Sprintf("%s:%s|%s", field, start, end))
	params.Set("sort", fmt.Sprintf("%s:asc", field))
	params.Set("field_list", issueFieldList)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	resp := struct {
		Results []*Issue `json:"results"`
	}{}
	env, err := c.get(ctx, "issues", params, &resp)
	if err != nil {
		return nil, err
	}

	return &IssuesPage{
		Issues: resp.Results,
		Total:  env.NumberOfTotalResults,
		Limit:  env.Limit,
		Offset: env.Offset,
	}, nil
}

// FetchVolumesByIDs resolves volumes in chunks, one paced request per chunk.
// Ids the catalog doesn't know are absent from the result.
func (c *Client) FetchVolumesByIDs(ctx context.Context, ids []int) (map[int]*Volume, error) {
	volumes := map[int]*Volume{}

	unique := dedupeIDs(ids)
	if len(unique) == 0 {
		return volumes, nil
	}
	if c.apiKey == "" {
		return nil, errors.WithStack(missingAPIKey())
	}

	log := logger.FromContext(ctx)

	for _, chunk := range chunkIDs(unique, c.volumeBatchSize) {
		if err := c.pacer.Wait(ctx); err != nil {
			return nil, errors.WithStack(&UpstreamError{Message: err.Error()})
		}

		filter := make([]string, 0, len(chunk))
		for _, id := range chunk {
			filter = append(filter, strconv.Itoa(id))
		}

		params := url.Values{}
		params.Set("filter", "id:"+strings.Join(filter, "|"))
		params.Set("field_list", volumeFieldList)
		params.Set("limit", strconv.Itoa(len(chunk)))

		resp := struct {
			Results []*Volume `json:"results"`
		}{}
		if _, err := c.get(ctx, "volumes", params, &resp); err != nil {
			return nil, err
		}

		for _, vol := range resp.Results {
			if vol != nil {
				volumes[vol.ID] = vol
			}
		}
		log.Debug("fetched volume chunk", logger.Data{"requested": len(chunk), "found": len(resp.Results)})
	}

	return volumes, nil
}

func (c *Client) get(ctx context.Context, resource string, params url.Values, target interface{}) (*envelope, error) {
	if c.apiKey == "" {
		return nil, errors.WithStack(missingAPIKey())
	}

	params.Set("api_key", c.apiKey)
	params.Set("format", "json")
	u := fmt.Sprintf("%s/%s/?%s", c.baseURL, resource, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The wrapped url.Error carries the api key, so only keep the cause.
		return nil, errors.WithStack(&UpstreamError{Message: "request failed: " + errors.Cause(unwrapURLError(err)).Error()})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WithStack(&UpstreamError{StatusCode: resp.StatusCode, Message: "read body: " + err.Error()})
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.WithStack(&UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), maxErrorBodyLength),
		})
	}

	env := &envelope{}
	if err := json.Unmarshal(body, env); err != nil {
		return nil, errors.WithStack(&UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), maxErrorBodyLength),
			Message:    "malformed response: " + err.Error(),
		})
	}
	if env.StatusCode != 1 {
		return nil, errors.WithStack(&UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("ComicVine error %d: %s", env.StatusCode, env.Error),
		})
	}

	if err := json.Unmarshal(body, target); err != nil {
		return nil, errors.WithStack(&UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    "malformed results: " + err.Error(),
		})
	}

	return env, nil
}

func missingAPIKey() *ConfigError {
	return &ConfigError{Message: "COMICVINE_API_KEY is not set."}
}

func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func dedupeIDs(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	unique := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

func chunkIDs(ids []int, size int) [][]int {
	var chunks [][]int
	for size < len(ids) {
		ids, chunks = ids[size:], append(chunks, ids[:size])
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}
