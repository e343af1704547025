package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/godilite/call-insights/internal/scoring"
	"go.uber.org/zap"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv string `validate:"oneof=development production test"`

	DBDriver string `validate:"oneof=sqlite3 pgx"`
	DBPath   string `validate:"required"`

	CacheEnabled  bool
	RedisPassword string

	RedisAddr string        `validate:"required_if=CacheEnabled true"`
	RedisDB   int           `validate:"min=0"`
	CacheTTL  time.Duration `validate:"gt=0"`

	GRPCReflectionEnabled bool

	GRPCPort int `validate:"min=0,max=65535"`
	HTTPPort int `validate:"min=0,max=65535"`

	RingbaBaseURL    string `validate:"omitempty,url"`
	RingbaAccountID  string `validate:"required_with=RingbaAPIToken"`
	RingbaAPIToken   string `validate:"required_with=RingbaAccountID"`
	RingbaAuthScheme string `validate:"oneof=Token Bearer"`

	// An empty key disables transcription; recorded calls stay pending.
	DeepgramAPIKey string

	DeepgramBaseURL string `validate:"omitempty,url"`
	DeepgramModel   string `validate:"required"`

	SupplierTimeout          time.Duration `validate:"gt=0"`
	TranscriptionTimeout     time.Duration `validate:"gt=0"`
	TranscriptionConcurrency int           `validate:"min=1"`
	PipelineWorkers          int           `validate:"min=0"`

	SyncStructural bool
	ScoreWeights   scoring.Weights

	MinTranscriptChars int `validate:"min=1"`
	AgentSpeaker       int `validate:"min=0"`

	parseErrs []error
}

// LoadFromEnv loads configuration from environment variables. Values that do
// not parse keep their default and are reported by Validate.
func LoadFromEnv() *Config {
	c := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		DBDriver:      getEnv("DB_DRIVER", "sqlite3"),
		DBPath:        getEnv("DB_PATH", "./data/call-insights.db"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		RingbaBaseURL:    getEnv("RINGBA_BASE_URL", ""),
		RingbaAccountID:  os.Getenv("RINGBA_ACCOUNT_ID"),
		RingbaAPIToken:   os.Getenv("RINGBA_API_TOKEN"),
		RingbaAuthScheme: getEnv("RINGBA_AUTH_SCHEME", "Token"),

		DeepgramBaseURL: getEnv("DEEPGRAM_BASE_URL", ""),
		DeepgramAPIKey:  os.Getenv("DEEPGRAM_API_KEY"),
		DeepgramModel:   getEnv("DEEPGRAM_MODEL", "nova-2"),
	}

	c.CacheEnabled = c.getBool("CACHE_ENABLED", true)
	c.RedisDB = c.getInt("REDIS_DB", 0)
	c.CacheTTL = c.getDuration("CACHE_TTL", 10*time.Minute)

	c.GRPCPort = c.getInt("GRPC_PORT", 50051)
	c.GRPCReflectionEnabled = c.getBool("GRPC_REFLECTION_ENABLED", false)
	c.HTTPPort = c.getInt("HTTP_PORT", 8080)

	c.SupplierTimeout = c.getDuration("SUPPLIER_TIMEOUT", 30*time.Second)
	c.TranscriptionTimeout = c.getDuration("TRANSCRIPTION_TIMEOUT", 2*time.Minute)
	c.TranscriptionConcurrency = c.getInt("TRANSCRIPTION_CONCURRENCY", 4)
	c.PipelineWorkers = c.getInt("PIPELINE_WORKERS", 0)
	c.SyncStructural = c.getBool("SYNC_STRUCTURAL", false)

	c.MinTranscriptChars = c.getInt("MIN_TRANSCRIPT_CHARS", 20)
	c.AgentSpeaker = c.getInt("AGENT_SPEAKER", 0)

	c.ScoreWeights = scoring.EqualWeights()
	if raw := os.Getenv("SCORE_WEIGHTS"); raw != "" {
		w, err := ParseWeights(raw)
		if err != nil {
			c.parseErrs = append(c.parseErrs, fmt.Errorf("SCORE_WEIGHTS: %w", err))
		} else {
			c.ScoreWeights = w
		}
	}
	return c
}

// Validate reports unparsable variables and out-of-range values together.
func (c *Config) Validate() error {
	errs := append([]error(nil), c.parseErrs...)

	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			errs = append(errs, fmt.Errorf("%s: failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value()))
		}
	} else if err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// RingbaConfigured reports whether call sync has credentials.
func (c *Config) RingbaConfigured() bool {
	return c.RingbaAccountID != "" && c.RingbaAPIToken != ""
}

func (c *Config) DeepgramConfigured() bool {
	return c.DeepgramAPIKey != ""
}

// ParseWeights reads "communication=2,problem_solving=1,..." into Weights.
// Components left out weigh zero.
func ParseWeights(s string) (scoring.Weights, error) {
	var w scoring.Weights
	for _, part := range strings.Split(s, ",") {
		name, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return scoring.Weights{}, fmt.Errorf("expected name=value, got %q", part)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || f < 0 {
			return scoring.Weights{}, fmt.Errorf("invalid weight %q for %s", val, name)
		}
		switch strings.TrimSpace(name) {
		case "communication":
			w.Communication = f
		case "problem_solving":
			w.ProblemSolving = f
		case "product_knowledge":
			w.ProductKnowledge = f
		case "customer_service":
			w.CustomerService = f
		default:
			return scoring.Weights{}, fmt.Errorf("unknown component %q", name)
		}
	}
	return w, nil
}

// NewLogger creates a new Zap logger based on the config.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.AppEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func (c *Config) getInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.parseErrs = append(c.parseErrs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func (c *Config) getBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		c.parseErrs = append(c.parseErrs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func (c *Config) getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		c.parseErrs = append(c.parseErrs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}
