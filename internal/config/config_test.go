package config

import (
	"testing"
	"time"

	"github.com/godilite/call-insights/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "DB_DRIVER", "GRPC_PORT", "HTTP_PORT", "CACHE_TTL", "SCORE_WEIGHTS", "RINGBA_ACCOUNT_ID", "RINGBA_API_TOKEN"} {
		t.Setenv(key, "")
	}

	cfg := LoadFromEnv()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, 50051, cfg.GRPCPort)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, scoring.EqualWeights(), cfg.ScoreWeights)
	assert.Equal(t, "Token", cfg.RingbaAuthScheme)
	assert.False(t, cfg.RingbaConfigured())
	assert.False(t, cfg.DeepgramConfigured())
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("DB_PATH", "postgres://u:p@db.supabase.co:5432/postgres")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("GRPC_PORT", "6000")
	t.Setenv("HTTP_PORT", "0")
	t.Setenv("RINGBA_ACCOUNT_ID", "RA123")
	t.Setenv("RINGBA_API_TOKEN", "secret")
	t.Setenv("RINGBA_AUTH_SCHEME", "Bearer")
	t.Setenv("DEEPGRAM_API_KEY", "dg")
	t.Setenv("SUPPLIER_TIMEOUT", "5s")
	t.Setenv("SYNC_STRUCTURAL", "true")
	t.Setenv("SCORE_WEIGHTS", "communication=2, problem_solving=1,product_knowledge=1,customer_service=0")

	cfg := LoadFromEnv()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "pgx", cfg.DBDriver)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, 6000, cfg.GRPCPort)
	assert.Equal(t, 0, cfg.HTTPPort)
	assert.Equal(t, 5*time.Second, cfg.SupplierTimeout)
	assert.True(t, cfg.SyncStructural)
	assert.True(t, cfg.RingbaConfigured())
	assert.True(t, cfg.DeepgramConfigured())
	assert.Equal(t, scoring.Weights{Communication: 2, ProblemSolving: 1, ProductKnowledge: 1}, cfg.ScoreWeights)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"unparsable port", map[string]string{"GRPC_PORT": "abc"}, "GRPC_PORT"},
		{"port out of range", map[string]string{"HTTP_PORT": "70000"}, "HTTPPort"},
		{"bad duration", map[string]string{"CACHE_TTL": "soon"}, "CACHE_TTL"},
		{"zero ttl", map[string]string{"CACHE_TTL": "0s"}, "CacheTTL"},
		{"unknown driver", map[string]string{"DB_DRIVER": "mysql"}, "DBDriver"},
		{"token without account", map[string]string{"RINGBA_API_TOKEN": "x", "RINGBA_ACCOUNT_ID": ""}, "RingbaAccountID"},
		{"bad auth scheme", map[string]string{"RINGBA_AUTH_SCHEME": "Basic"}, "RingbaAuthScheme"},
		{"bad weights", map[string]string{"SCORE_WEIGHTS": "empathy=3"}, "SCORE_WEIGHTS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			err := LoadFromEnv().Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateCacheNeedsAddress(t *testing.T) {
	cfg := LoadFromEnv()
	cfg.RedisAddr = ""

	cfg.CacheEnabled = true
	assert.ErrorContains(t, cfg.Validate(), "RedisAddr")

	cfg.CacheEnabled = false
	assert.NoError(t, cfg.Validate())
}

func TestParseWeights(t *testing.T) {
	tests := []struct {
		in      string
		want    scoring.Weights
		wantErr bool
	}{
		{"communication=1,problem_solving=1,product_knowledge=1,customer_service=1", scoring.EqualWeights(), false},
		{"customer_service=3", scoring.Weights{CustomerService: 3}, false},
		{"communication", scoring.Weights{}, true},
		{"communication=-1", scoring.Weights{}, true},
		{"communication=x", scoring.Weights{}, true},
		{"tone=1", scoring.Weights{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWeights(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewLogger(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		t.Run(env, func(t *testing.T) {
			logger, err := NewLogger(&Config{AppEnv: env})
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}
