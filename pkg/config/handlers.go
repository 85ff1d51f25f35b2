package config

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// PublicConfig is the part of the config clients may see. The API key is
// reduced to whether one is set.
type PublicConfig struct {
	AutoSyncOnMiss      bool   `json:"auto_sync_on_miss"`
	ComicVineConfigured bool   `json:"comicvine_configured"`
	PublisherMatch      string `json:"publisher_match"`
	PublisherName       string `json:"publisher_name"`
	VolumeBatchSize     int    `json:"volume_batch_size"`
}

func (cfg *Config) Public() *PublicConfig {
	return &PublicConfig{
		AutoSyncOnMiss:      cfg.AutoSyncOnMiss,
		ComicVineConfigured: cfg.ComicVineAPIKey != "",
		PublisherMatch:      cfg.PublisherMatch,
		PublisherName:       cfg.PublisherName,
		VolumeBatchSize:     cfg.VolumeBatchSize,
	}
}

type handler struct {
	config *Config
}

func (h *handler) retrieve(c echo.Context) error {
	return errors.WithStack(c.JSON(http.StatusOK, h.config.Public()))
}
