package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ventdepot/backend/internal/domain/warehouse"
)

var configEnvKeys = []string{
	"VENTDEPOT_APP_NAME",
	"VENTDEPOT_APP_ENV",
	"VENTDEPOT_APP_PORT",
	"VENTDEPOT_DATABASE_HOST",
	"VENTDEPOT_DATABASE_PORT",
	"VENTDEPOT_DATABASE_PASSWORD",
	"VENTDEPOT_DATABASE_SSLMODE",
	"VENTDEPOT_DATABASE_MAX_OPEN_CONNS",
	"VENTDEPOT_DATABASE_MAX_IDLE_CONNS",
	"VENTDEPOT_JWT_SECRET",
	"VENTDEPOT_REDIS_ENABLED",
	"VENTDEPOT_WAREHOUSE_DEFAULT_BIN_CAPACITY",
	"VENTDEPOT_WAREHOUSE_DEMAND_MODE",
	"VENTDEPOT_WAREHOUSE_IDEMPOTENCY_TTL",
	"VENTDEPOT_TELEMETRY_SAMPLING_RATIO",
}

// clearConfigEnv blanks every variable Load reads; t.Setenv restores them afterwards
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearConfigEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "ventdepot-warehouse", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "ventdepot", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
		assert.Equal(t, 100, cfg.Warehouse.DefaultBinCapacity)
		assert.Equal(t, "outstanding", cfg.Warehouse.DemandMode)
		assert.Equal(t, warehouse.DemandModeOutstanding, cfg.Warehouse.ParsedDemandMode())
		assert.Equal(t, 24*time.Hour, cfg.Warehouse.IdempotencyTTL)
		assert.Equal(t, cfg.App.Name, cfg.Telemetry.ServiceName)
		assert.Contains(t, cfg.HTTP.CORSAllowHeaders, "Idempotency-Key")
	})

	t.Run("loads values from environment variables with VENTDEPOT prefix", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("VENTDEPOT_APP_PORT", "9000")
		t.Setenv("VENTDEPOT_DATABASE_HOST", "db.internal")
		t.Setenv("VENTDEPOT_DATABASE_PORT", "5433")
		t.Setenv("VENTDEPOT_REDIS_ENABLED", "true")
		t.Setenv("VENTDEPOT_WAREHOUSE_DEFAULT_BIN_CAPACITY", "250")
		t.Setenv("VENTDEPOT_WAREHOUSE_DEMAND_MODE", "ordered")
		t.Setenv("VENTDEPOT_WAREHOUSE_IDEMPOTENCY_TTL", "2h")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, 250, cfg.Warehouse.DefaultBinCapacity)
		assert.Equal(t, warehouse.DemandModeOrdered, cfg.Warehouse.ParsedDemandMode())
		assert.Equal(t, 2*time.Hour, cfg.Warehouse.IdempotencyTTL)
	})

	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "idle conns cannot exceed open conns",
			env:     map[string]string{"VENTDEPOT_DATABASE_MAX_OPEN_CONNS": "10", "VENTDEPOT_DATABASE_MAX_IDLE_CONNS": "20"},
			wantErr: "cannot exceed",
		},
		{
			name:    "idle conns cannot be negative",
			env:     map[string]string{"VENTDEPOT_DATABASE_MAX_IDLE_CONNS": "-1"},
			wantErr: "max_idle_conns cannot be negative",
		},
		{
			name:    "bin capacity must be positive",
			env:     map[string]string{"VENTDEPOT_WAREHOUSE_DEFAULT_BIN_CAPACITY": "-5"},
			wantErr: "default_bin_capacity must be positive",
		},
		{
			name:    "unknown demand mode",
			env:     map[string]string{"VENTDEPOT_WAREHOUSE_DEMAND_MODE": "greedy"},
			wantErr: "warehouse.demand_mode",
		},
		{
			name:    "sampling ratio above one",
			env:     map[string]string{"VENTDEPOT_TELEMETRY_SAMPLING_RATIO": "1.5"},
			wantErr: "sampling_ratio",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("VENTDEPOT_APP_ENV", "production")
		t.Setenv("VENTDEPOT_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		t.Setenv("VENTDEPOT_DATABASE_PASSWORD", "secure-password")
		t.Setenv("VENTDEPOT_DATABASE_SSLMODE", "require")
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})

	t.Run("requires a long jwt secret", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("VENTDEPOT_JWT_SECRET", "short-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret must be at least 32 characters")
	})

	t.Run("requires database password", func(t *testing.T) {
		setValidProductionBase(t)
		os.Unsetenv("VENTDEPOT_DATABASE_PASSWORD")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("VENTDEPOT_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}
