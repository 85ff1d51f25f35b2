package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/iancoleman/strcase"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	EnvironmentTest = "test"

	PublisherMatchContains = "contains"
	PublisherMatchExact    = "exact"
)

type Config struct {
	AutoSyncOnMiss            bool          `koanf:"auto_sync_on_miss" default:"true"`
	ComicVineAPIKey           string        `koanf:"comicvine_api_key"`
	ComicVineBaseURL          string        `koanf:"comicvine_base_url" default:"https://comicvine.gamespot.com/api"`
	ComicVineTimeout          time.Duration `koanf:"comicvine_timeout" default:"30s"`
	ComicVineUserAgent        string        `koanf:"comicvine_user_agent" default:"comic-finder/1.0"`
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout" default:"5s"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count" default:"5"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay" default:"2s"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseFilePath          string        `koanf:"database_file_path" required:"true"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries" default:"5"`
	Environment               string        `koanf:"environment" default:"production"`
	PublisherMatch            string        `koanf:"publisher_match" default:"contains"`
	PublisherName             string        `koanf:"publisher_name" default:"Marvel"`
	ServerHost                string        `koanf:"server_host" default:"0.0.0.0"`
	ServerPort                int           `koanf:"server_port" default:"8080"`
	VolumeBatchDelay          time.Duration `koanf:"volume_batch_delay" default:"150ms"`
	VolumeBatchSize           int           `koanf:"volume_batch_size" default:"50"`
}

const (
	configFileENV     = "CONFIG_FILE"
	defaultConfigFile = "/config/config.yaml"
	// Older deployments only set CV_API_KEY.
	legacyAPIKeyENV = "CV_API_KEY"
)

// New builds the config from defaults, then the YAML config file, then
// environment variables. A missing config file is not an error.
func New() (*Config, error) {
	// .env is optional and never overrides variables that are already set.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	k := koanf.New(".")

	configFile := os.Getenv(configFileENV)
	if configFile == "" {
		configFile = defaultConfigFile
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", configFile)
		}
	}

	err := k.Load(env.Provider("", ".", strings.ToLower), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	if cfg.Environment == EnvironmentDevelopment {
		loadDevelopmentConfig(cfg)
	}

	if cfg.ComicVineAPIKey == "" {
		cfg.ComicVineAPIKey = os.Getenv(legacyAPIKeyENV)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewForTest returns a config pointing at an in-memory database with every
// default applied.
func NewForTest() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)
	cfg.DatabaseFilePath = ":memory:"
	cfg.ServerHost = "127.0.0.1"
	cfg.VolumeBatchDelay = 0
	return cfg
}

func validate(cfg *Config) error {
	var missing []string

	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Tag.Get("required") != "true" {
			continue
		}
		if v.Field(i).IsZero() {
			name := toSnakeCase(field.Name)
			missing = append(missing, fmt.Sprintf("%s (%s)", strings.ToUpper(name), name))
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	if cfg.PublisherMatch != PublisherMatchContains && cfg.PublisherMatch != PublisherMatchExact {
		return errors.Errorf("publisher_match must be %q or %q", PublisherMatchContains, PublisherMatchExact)
	}

	return nil
}

func toSnakeCase(s string) string {
	return strcase.ToSnake(s)
}
