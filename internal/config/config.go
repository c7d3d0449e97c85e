package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/ballstats/internal/platform/logging"
)

// ErrConfiguration marks every error returned by Load and Validate.
var ErrConfiguration = crerr.New("invalid configuration")

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	CacheDriverMemory   = "memory"
	CacheDriverSQLite   = "sqlite"
	CacheDriverPostgres = "postgres"
	CacheDriverRedis    = "redis"
)

const (
	QueryEncodingEncoded = "encoded"
	QueryEncodingRaw     = "raw"
)

const (
	OrphanPolicySkip        = "skip"
	OrphanPolicyPlaceholder = "placeholder"
	OrphanPolicyFail        = "fail"
)

// Config stores runtime configuration for the process command.
type Config struct {
	AppEnv         string        `validate:"oneof=dev stage prod"`
	ServiceName    string        `validate:"required"`
	ServiceVersion string
	LogLevel       logging.Level

	BaseURL            string        `validate:"required,http_url"`
	PlayersPath        string        `validate:"required,startswith=/"`
	SeasonAveragesPath string        `validate:"required,startswith=/"`
	APIKey             string
	Timeout            time.Duration `validate:"gt=0"`
	Season             int           `validate:"gte=1946"`
	PlayersPerPage     int           `validate:"min=1,max=100"`
	StatsChunkSize     int           `validate:"min=1,max=100"`
	MaxPages           int           `validate:"min=1"`
	QueryEncoding      string        `validate:"oneof=encoded raw"`
	OrphanPolicy       string        `validate:"oneof=skip placeholder fail"`
	ReportLimit        int           `validate:"min=1"`

	CacheDriver    string `validate:"oneof=memory sqlite postgres redis"`
	CacheDSN       string `validate:"required_if=CacheDriver sqlite,required_if=CacheDriver postgres"`
	RedisURL       string `validate:"required_if=CacheDriver redis"`
	CacheKeyPrefix string

	UptraceEnabled bool
	UptraceDSN     string `validate:"required_if=UptraceEnabled true"`
}

var validate = validator.New()

func Load() (Config, error) {
	timeout, err := time.ParseDuration(getEnv("BALLER_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, configError(err, "parse BALLER_TIMEOUT")
	}
	season, err := getEnvAsInt("BALLER_SEASON", 2018)
	if err != nil {
		return Config{}, configError(err, "parse BALLER_SEASON")
	}
	perPage, err := getEnvAsInt("BALLER_PLAYERS_PER_PAGE", 100)
	if err != nil {
		return Config{}, configError(err, "parse BALLER_PLAYERS_PER_PAGE")
	}
	chunkSize, err := getEnvAsInt("BALLER_STATS_CHUNK_SIZE", 50)
	if err != nil {
		return Config{}, configError(err, "parse BALLER_STATS_CHUNK_SIZE")
	}
	maxPages, err := getEnvAsInt("BALLER_MAX_PAGES", 1000)
	if err != nil {
		return Config{}, configError(err, "parse BALLER_MAX_PAGES")
	}
	reportLimit, err := getEnvAsInt("REPORT_LIMIT", 10)
	if err != nil {
		return Config{}, configError(err, "parse REPORT_LIMIT")
	}
	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, configError(err, "parse UPTRACE_ENABLED")
	}

	cfg := Config{
		AppEnv:             strings.ToLower(strings.TrimSpace(getEnv("APP_ENV", EnvDev))),
		ServiceName:        strings.TrimSpace(getEnv("APP_SERVICE_NAME", "ballstats")),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:           logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		BaseURL:            strings.TrimRight(strings.TrimSpace(getEnv("BALLER_BASE_URL", "https://www.balldontlie.io/api/v1")), "/"),
		PlayersPath:        strings.TrimSpace(getEnv("BALLER_PLAYERS_PATH", "/players")),
		SeasonAveragesPath: strings.TrimSpace(getEnv("BALLER_SEASON_AVERAGES_PATH", "/season_averages")),
		APIKey:             strings.TrimSpace(getEnv("BALLER_API_KEY", "")),
		Timeout:            timeout,
		Season:             season,
		PlayersPerPage:     perPage,
		StatsChunkSize:     chunkSize,
		MaxPages:           maxPages,
		QueryEncoding:      strings.ToLower(strings.TrimSpace(getEnv("BALLER_QUERY_ENCODING", QueryEncodingEncoded))),
		OrphanPolicy:       strings.ToLower(strings.TrimSpace(getEnv("STAT_ORPHAN_POLICY", OrphanPolicySkip))),
		ReportLimit:        reportLimit,
		CacheDriver:        strings.ToLower(strings.TrimSpace(getEnv("CACHE_DRIVER", CacheDriverSQLite))),
		CacheDSN:           strings.TrimSpace(getEnv("CACHE_DSN", "ballstats.db")),
		RedisURL:           strings.TrimSpace(getEnv("REDIS_URL", "redis://localhost:6379/0")),
		CacheKeyPrefix:     strings.TrimSpace(getEnv("CACHE_KEY_PREFIX", "")),
		UptraceEnabled:     uptraceEnabled,
		UptraceDSN:         strings.TrimSpace(getEnv("UPTRACE_DSN", "")),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks a Config built by Load or by hand.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !crerr.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return configError(err, "validate config")
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		parts = append(parts, describeFieldError(fieldErr))
	}
	return crerr.Mark(crerr.Newf("invalid configuration: %s", strings.Join(parts, "; ")), ErrConfiguration)
}

func describeFieldError(fieldErr validator.FieldError) string {
	name := fieldErr.StructField()
	if env, ok := envByField[name]; ok {
		name = env
	}
	if fieldErr.Param() == "" {
		return name + " failed " + fieldErr.Tag()
	}
	return name + " failed " + fieldErr.Tag() + "=" + fieldErr.Param()
}

var envByField = map[string]string{
	"AppEnv":             "APP_ENV",
	"ServiceName":        "APP_SERVICE_NAME",
	"BaseURL":            "BALLER_BASE_URL",
	"PlayersPath":        "BALLER_PLAYERS_PATH",
	"SeasonAveragesPath": "BALLER_SEASON_AVERAGES_PATH",
	"Timeout":            "BALLER_TIMEOUT",
	"Season":             "BALLER_SEASON",
	"PlayersPerPage":     "BALLER_PLAYERS_PER_PAGE",
	"StatsChunkSize":     "BALLER_STATS_CHUNK_SIZE",
	"MaxPages":           "BALLER_MAX_PAGES",
	"QueryEncoding":      "BALLER_QUERY_ENCODING",
	"OrphanPolicy":       "STAT_ORPHAN_POLICY",
	"ReportLimit":        "REPORT_LIMIT",
	"CacheDriver":        "CACHE_DRIVER",
	"CacheDSN":           "CACHE_DSN",
	"RedisURL":           "REDIS_URL",
	"UptraceDSN":         "UPTRACE_DSN",
}

func configError(err error, msg string) error {
	return crerr.Mark(crerr.Wrap(err, msg), ErrConfiguration)
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}
