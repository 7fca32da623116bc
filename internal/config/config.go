package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all service settings. Values come from an optional YAML file
// and are overridden by environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	StaticDir       string

	// Ingestion.
	FeedURL             string
	FeedTimeout         time.Duration
	FeedRefreshInterval time.Duration // 0 disables periodic refresh
	BoundaryURL         string        // empty disables the outline
	HeatOverlayURL      string
	SitesFile           string
	ArtworkFirst        bool

	// Submission forwarding.
	FormURL              string
	FormFields           FormFields
	SubmitQueueSize      int
	SubmitRatePerSecond  float64
	SubmitTimeout        time.Duration
	KafkaBrokers         []string
	KafkaSubmissionTopic string

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// FormFields names the form inputs a submission is posted as.
type FormFields struct {
	Latitude  string
	Longitude string
	Timestamp string
	User      string
	ObjectID  string
	Upvote    string
}

// Defaults.
const (
	DefaultHTTPAddr        = ":8080"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
	DefaultShutdownTimeout = 10 * time.Second

	DefaultFeedURL        = "https://docs.google.com/spreadsheets/d/e/2PACX-1vTrYopwENfaG6flpsO9kaeUmBnutaETaCQgasAR-S6udJ-zlt2KazlgM5lL-kt5g4vE8X9_Jl3yb5hk/pub?output=csv"
	DefaultFeedTimeout    = 15 * time.Second
	DefaultHeatOverlayURL = "toronto_ndvi_color_export_nd.png"
	DefaultBoundaryURL    = "toronto_bound.json"

	DefaultSubmitQueueSize     = 64
	DefaultSubmitRatePerSecond = 5.0
	DefaultSubmitTimeout       = 10 * time.Second
	DefaultKafkaTopic          = "shady-spot-submissions"

	DefaultMapboxTimeout   = 5 * time.Second
	DefaultMapboxCacheSize = 1000
)

// DefaultFormFields matches the field names of the submission form.
var DefaultFormFields = FormFields{
	Latitude:  "lat",
	Longitude: "lng",
	Timestamp: "timestamp",
	User:      "userId",
	ObjectID:  "objectId",
	Upvote:    "upvote",
}

// Load reads configuration from the YAML file at path (optional; empty skips
// it) and from environment variables, applying defaults where unset. YAML
// keys are the lower-cased variable names, e.g. feed_url.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	s := source{k: k}

	cfg := &Config{
		HTTPAddr:        s.str("HTTP_ADDR", DefaultHTTPAddr),
		LogLevel:        s.str("LOG_LEVEL", DefaultLogLevel),
		LogFormat:       s.str("LOG_FORMAT", DefaultLogFormat),
		ShutdownTimeout: s.positiveDuration("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout),
		StaticDir:       s.str("STATIC_DIR", ""),

		FeedURL:             s.str("FEED_URL", DefaultFeedURL),
		FeedTimeout:         s.positiveDuration("FEED_TIMEOUT", DefaultFeedTimeout),
		FeedRefreshInterval: s.duration("FEED_REFRESH_INTERVAL", 0),
		BoundaryURL:         s.str("BOUNDARY_URL", DefaultBoundaryURL),
		HeatOverlayURL:      s.str("HEAT_OVERLAY_URL", DefaultHeatOverlayURL),
		SitesFile:           s.str("SITES_FILE", ""),
		ArtworkFirst:        s.boolean("ARTWORK_FIRST", false),

		FormURL: s.str("FORM_URL", ""),
		FormFields: FormFields{
			Latitude:  s.str("FORM_FIELD_LAT", DefaultFormFields.Latitude),
			Longitude: s.str("FORM_FIELD_LNG", DefaultFormFields.Longitude),
			Timestamp: s.str("FORM_FIELD_TIMESTAMP", DefaultFormFields.Timestamp),
			User:      s.str("FORM_FIELD_USER", DefaultFormFields.User),
			ObjectID:  s.str("FORM_FIELD_OBJECT_ID", DefaultFormFields.ObjectID),
			Upvote:    s.str("FORM_FIELD_UPVOTE", DefaultFormFields.Upvote),
		},
		SubmitQueueSize:      s.positiveInt("SUBMIT_QUEUE_SIZE", DefaultSubmitQueueSize),
		SubmitRatePerSecond:  s.float("SUBMIT_RATE_PER_SECOND", DefaultSubmitRatePerSecond),
		SubmitTimeout:        s.positiveDuration("SUBMIT_TIMEOUT", DefaultSubmitTimeout),
		KafkaBrokers:         ParseBrokers(s.str("KAFKA_BROKERS", "")),
		KafkaSubmissionTopic: s.str("KAFKA_SUBMISSION_TOPIC", DefaultKafkaTopic),

		MapboxToken:     s.str("MAPBOX_TOKEN", ""),
		MapboxTimeout:   s.positiveDuration("MAPBOX_TIMEOUT", DefaultMapboxTimeout),
		MapboxCacheSize: s.positiveInt("MAPBOX_CACHE_SIZE", DefaultMapboxCacheSize),
	}
	cfg.MapboxEnabled = s.boolean("MAPBOX_ENABLED", cfg.MapboxToken != "")

	if err := errors.Join(s.errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var errs []error
	if c.FeedURL == "" {
		errs = append(errs, errors.New("FEED_URL is required"))
	}
	if c.FeedRefreshInterval < 0 {
		errs = append(errs, errors.New("FEED_REFRESH_INTERVAL must not be negative"))
	}
	if c.SubmitRatePerSecond <= 0 {
		errs = append(errs, errors.New("SUBMIT_RATE_PER_SECOND must be positive"))
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaSubmissionTopic == "" {
		errs = append(errs, errors.New("KAFKA_SUBMISSION_TOPIC is required when KAFKA_BROKERS is set"))
	}
	if c.MapboxEnabled && c.MapboxToken == "" {
		errs = append(errs, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set"))
	}
	return errors.Join(errs...)
}

// ParseBrokers splits a comma-separated broker list, dropping blanks.
func ParseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// source resolves a setting from the environment, then the config file, then
// the default. Parse failures are collected rather than returned one by one.
type source struct {
	k    *koanf.Koanf
	errs []error
}

func (s *source) raw(env string) (string, bool) {
	if v := os.Getenv(env); v != "" {
		return v, true
	}
	key := strings.ToLower(env)
	if s.k.Exists(key) {
		return s.k.String(key), true
	}
	return "", false
}

func (s *source) str(env, def string) string {
	if v, ok := s.raw(env); ok {
		return v
	}
	return def
}

func (s *source) duration(env string, def time.Duration) time.Duration {
	v, ok := s.raw(env)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		s.errs = append(s.errs, fmt.Errorf("invalid %s %q: %w", env, v, err))
		return def
	}
	return d
}

func (s *source) positiveDuration(env string, def time.Duration) time.Duration {
	d := s.duration(env, def)
	if d <= 0 {
		s.errs = append(s.errs, fmt.Errorf("invalid %s: must be positive", env))
		return def
	}
	return d
}

func (s *source) positiveInt(env string, def int) int {
	v, ok := s.raw(env)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		s.errs = append(s.errs, fmt.Errorf("invalid %s %q: must be a positive integer", env, v))
		return def
	}
	return n
}

func (s *source) float(env string, def float64) float64 {
	v, ok := s.raw(env)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		s.errs = append(s.errs, fmt.Errorf("invalid %s %q: %w", env, v, err))
		return def
	}
	return f
}

func (s *source) boolean(env string, def bool) bool {
	v, ok := s.raw(env)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		s.errs = append(s.errs, fmt.Errorf("invalid %s %q: want true or false", env, v))
		return def
	}
}
