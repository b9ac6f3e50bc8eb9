package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"

	"github.com/rotv/coordinate-validator/internal/domain"
)

// Config holds all validator settings, populated from environment variables.
type Config struct {
	DestinationsURL  string `env:"DESTINATIONS_URL" validate:"omitempty,url"`
	DestinationsFile string `env:"DESTINATIONS_FILE"`

	// USGS NWIS hydrology reference.
	USGSBaseURL string        `env:"USGS_BASE_URL" validate:"required,url"`
	USGSEnabled bool          `env:"USGS_ENABLED"`
	USGSMode    string        `env:"USGS_MODE" validate:"oneof=window snapshot"`
	USGSTimeout time.Duration `env:"USGS_TIMEOUT" validate:"gt=0"`

	// Nominatim reverse geocoding.
	NominatimBaseURL     string        `env:"NOMINATIM_BASE_URL" validate:"required,url"`
	NominatimEnabled     bool          `env:"NOMINATIM_ENABLED"`
	NominatimUserAgent   string        `env:"NOMINATIM_USER_AGENT" validate:"required"`
	NominatimMinInterval time.Duration `env:"NOMINATIM_MIN_INTERVAL" validate:"gte=0"`
	NominatimTimeout     time.Duration `env:"NOMINATIM_TIMEOUT" validate:"gt=0"`
	NominatimCacheSize   int           `env:"NOMINATIM_CACHE_SIZE" validate:"gt=0"`

	HTTPMaxRetries int `env:"HTTP_MAX_RETRIES" validate:"gte=0,lte=10"`

	LandmarksFile    string                `env:"LANDMARKS_FILE"`
	Region           domain.BoundingRegion `env:"REGION"`
	ExpectedCounties []string              `env:"EXPECTED_COUNTIES" validate:"min=1,dive,required"`

	KafkaBrokers      []string `env:"KAFKA_BROKERS"`
	KafkaResultsTopic string   `env:"KAFKA_RESULTS_TOPIC"`

	HTTPAddr        string        `env:"HTTP_ADDR"`
	LogLevel        string        `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat       string        `env:"LOG_FORMAT" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DestinationsURL:    sharedcfg.EnvOrDefault("DESTINATIONS_URL", "http://localhost:8080/api/destinations"),
		DestinationsFile:   os.Getenv("DESTINATIONS_FILE"),
		USGSBaseURL:        sharedcfg.EnvOrDefault("USGS_BASE_URL", "https://waterservices.usgs.gov/nwis/site/"),
		USGSMode:           sharedcfg.EnvOrDefault("USGS_MODE", "window"),
		NominatimBaseURL:   sharedcfg.EnvOrDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent: sharedcfg.EnvOrDefault("NOMINATIM_USER_AGENT", "ROTV-Validator/1.0 (coordinate validation)"),
		LandmarksFile:      os.Getenv("LANDMARKS_FILE"),
		ExpectedCounties:   parseList(sharedcfg.EnvOrDefault("EXPECTED_COUNTIES", "Summit,Cuyahoga")),
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaResultsTopic:  os.Getenv("KAFKA_RESULTS_TOPIC"),
		HTTPAddr:           os.Getenv("HTTP_ADDR"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		ShutdownTimeout:    shutdownTimeout,
	}

	var p parser
	cfg.USGSEnabled = p.bool("USGS_ENABLED", true)
	cfg.USGSTimeout = p.duration("USGS_TIMEOUT", 10*time.Second)
	cfg.NominatimEnabled = p.bool("NOMINATIM_ENABLED", true)
	cfg.NominatimMinInterval = p.duration("NOMINATIM_MIN_INTERVAL", 1100*time.Millisecond)
	cfg.NominatimTimeout = p.duration("NOMINATIM_TIMEOUT", 10*time.Second)
	cfg.NominatimCacheSize = p.int("NOMINATIM_CACHE_SIZE", 1000)
	cfg.HTTPMaxRetries = p.int("HTTP_MAX_RETRIES", 2)

	park := domain.ParkRegion()
	cfg.Region = domain.BoundingRegion{
		MinLat: p.float("REGION_MIN_LAT", park.MinLat),
		MaxLat: p.float("REGION_MAX_LAT", park.MaxLat),
		MinLon: p.float("REGION_MIN_LON", park.MinLon),
		MaxLon: p.float("REGION_MAX_LON", park.MaxLon),
	}
	if p.err != nil {
		return nil, p.err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and the cross-field rules that struct
// tags cannot express. Callers that override fields after Load should call
// it again.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("invalid %s: failed %q constraint", fe.Field(), fe.Tag())
		}
		return err
	}

	if c.DestinationsURL == "" && c.DestinationsFile == "" {
		return errors.New("DESTINATIONS_URL or DESTINATIONS_FILE is required")
	}
	if err := c.Region.Validate(); err != nil {
		return fmt.Errorf("invalid REGION_*: %w", err)
	}
	if c.KafkaResultsTopic != "" && len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required when KAFKA_RESULTS_TOPIC is set")
	}
	return nil
}

// Rules builds the validation rules: configured region and county markers,
// default water vocabulary and thresholds, and the landmark table from
// LANDMARKS_FILE or the embedded default.
func (c *Config) Rules() (domain.Rules, error) {
	rules := domain.DefaultRules()
	rules.Region = c.Region
	rules.ExpectedCounties = c.ExpectedCounties

	if c.LandmarksFile != "" {
		known, err := domain.LoadKnownCoordinates(c.LandmarksFile)
		if err != nil {
			return domain.Rules{}, fmt.Errorf("LANDMARKS_FILE: %w", err)
		}
		rules.Known = known
	}
	return rules, nil
}

// parser accumulates the first parse error so Load can read every variable
// before reporting.
type parser struct {
	err error
}

func (p *parser) fail(name, value string) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s: %q", name, value)
	}
}

func (p *parser) bool(name string, def bool) bool {
	s := os.Getenv(name)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		p.fail(name, s)
		return def
	}
	return v
}

func (p *parser) int(name string, def int) int {
	s := os.Getenv(name)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		p.fail(name, s)
		return def
	}
	return v
}

func (p *parser) float(name string, def float64) float64 {
	s := os.Getenv(name)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.fail(name, s)
		return def
	}
	return v
}

func (p *parser) duration(name string, def time.Duration) time.Duration {
	s := os.Getenv(name)
	if s == "" {
		return def
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		p.fail(name, s)
		return def
	}
	return v
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
