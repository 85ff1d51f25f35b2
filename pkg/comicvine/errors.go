package comicvine

import (
	"fmt"

	"github.com/comicfinder/comicfinder/pkg/errcodes"
	"github.com/pkg/errors"
)

// ConfigError means the client can't make requests at all, e.g. because no
// API key is configured.
type ConfigError struct {
	Message string
}

func (err *ConfigError) Error() string {
	return err.Message
}

// UpstreamError covers every failed exchange with the catalog. StatusCode is
// the HTTP status, or 0 when no response was received.
type UpstreamError struct {
	StatusCode int
	Body       string
	Message    string
}

func (err *UpstreamError) Error() string {
	if err.Message != "" {
		return err.Message
	}
	return fmt.Sprintf("HTTP %d: %s", err.StatusCode, err.Body)
}

// HTTPError converts catalog failures into the matching API error. Anything
// else is returned unchanged.
func HTTPError(err error) error {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return errcodes.ConfigError(cfgErr.Message)
	}
	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		return errcodes.UpstreamError(upErr.Error())
	}
	return err
}
