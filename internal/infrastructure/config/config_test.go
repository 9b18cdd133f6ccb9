package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"COD_APP_NAME",
	"COD_APP_ENV",
	"COD_APP_PORT",
	"COD_DATABASE_DRIVER",
	"COD_DATABASE_HOST",
	"COD_DATABASE_PORT",
	"COD_DATABASE_PASSWORD",
	"COD_DATABASE_SSLMODE",
	"COD_DATABASE_MAX_OPEN_CONNS",
	"COD_DATABASE_MAX_IDLE_CONNS",
	"COD_WAREHOUSE_API_URL",
	"COD_WAREHOUSE_API_TOKEN",
	"COD_WAREHOUSE_WEBHOOK_SECRET",
	"COD_WAREHOUSE_FEED_INTERVAL",
	"COD_WAREHOUSE_SYNC_ENABLED",
	"COD_WAREHOUSE_SYNC_INTERVAL",
	"COD_REDIS_ENABLED",
	"COD_TELEMETRY_PROFILING_ENABLED",
	"COD_TELEMETRY_PROFILING_SERVER_ADDRESS",
}

// clearConfigEnv unsets every COD_ variable used here and restores them afterwards
func clearConfigEnv(t *testing.T) {
	t.Helper()
	original := make(map[string]string, len(configEnvKeys))
	for _, k := range configEnvKeys {
		original[k] = os.Getenv(k)
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for k, v := range original {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearConfigEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "cod-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "cod", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, 30*time.Second, cfg.Warehouse.Timeout)
		assert.Equal(t, 10*time.Second, cfg.Warehouse.FeedInterval)
		assert.Equal(t, 24*time.Hour, cfg.Warehouse.DedupTTL)
		assert.True(t, cfg.Warehouse.SyncEnabled)
		assert.Equal(t, 5*time.Minute, cfg.Warehouse.SyncInterval)
		assert.False(t, cfg.Warehouse.HasCredentials())
		assert.False(t, cfg.Telemetry.ProfilingEnabled)
		assert.Equal(t, "http://localhost:4040", cfg.Telemetry.ProfilingServerAddress)
	})

	t.Run("profiling is opt in", func(t *testing.T) {
		clearConfigEnv(t)
		os.Setenv("COD_TELEMETRY_PROFILING_ENABLED", "true")
		os.Setenv("COD_TELEMETRY_PROFILING_SERVER_ADDRESS", "http://pyroscope:4040")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Telemetry.ProfilingEnabled)
		assert.Equal(t, "http://pyroscope:4040", cfg.Telemetry.ProfilingServerAddress)
	})

	t.Run("rejects a relative profiling server", func(t *testing.T) {
		clearConfigEnv(t)
		os.Setenv("COD_TELEMETRY_PROFILING_ENABLED", "true")
		os.Setenv("COD_TELEMETRY_PROFILING_SERVER_ADDRESS", "pyroscope:4040")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "telemetry.profiling_server_address")
	})

	t.Run("loads warehouse settings from environment", func(t *testing.T) {
		clearConfigEnv(t)
		os.Setenv("COD_WAREHOUSE_API_URL", "https://wms.example.com/api")
		os.Setenv("COD_WAREHOUSE_API_TOKEN", "token-123")
		os.Setenv("COD_WAREHOUSE_WEBHOOK_SECRET", "whsec")
		os.Setenv("COD_WAREHOUSE_FEED_INTERVAL", "5s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "https://wms.example.com/api", cfg.Warehouse.APIURL)
		assert.Equal(t, "token-123", cfg.Warehouse.APIToken)
		assert.Equal(t, "whsec", cfg.Warehouse.WebhookSecret)
		assert.Equal(t, 5*time.Second, cfg.Warehouse.FeedInterval)
		assert.True(t, cfg.Warehouse.HasCredentials())
	})

	t.Run("url without token is not enough for production mode", func(t *testing.T) {
		clearConfigEnv(t)
		os.Setenv("COD_WAREHOUSE_API_URL", "https://wms.example.com/api")

		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.Warehouse.HasCredentials())
	})

	t.Run("rejects relative warehouse url", func(t *testing.T) {
		clearConfigEnv(t)
		os.Setenv("COD_WAREHOUSE_API_URL", "wms.example.com")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "warehouse.api_url")
	})

	t.Run("background sync can be switched off", func(t *testing.T) {
		clearConfigEnv(t)
		os.Setenv("COD_WAREHOUSE_SYNC_ENABLED", "false")
		os.Setenv("COD_WAREHOUSE_SYNC_INTERVAL", "10s")

		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.Warehouse.SyncEnabled)
	})

	t.Run("rejects a sync interval under a minute", func(t *testing.T) {
		clearConfigEnv(t)
		os.Setenv("COD_WAREHOUSE_SYNC_INTERVAL", "10s")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "warehouse.sync_interval")
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		clearConfigEnv(t)
		os.Setenv("COD_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearConfigEnv(t)
		os.Setenv("COD_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("COD_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func() {
		os.Setenv("COD_APP_ENV", "production")
		os.Setenv("COD_DATABASE_PASSWORD", "secure-password")
		os.Setenv("COD_DATABASE_SSLMODE", "require")
		os.Setenv("COD_WAREHOUSE_WEBHOOK_SECRET", "whsec-production")
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearConfigEnv(t)
		setValidProductionBase()

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})

	t.Run("requires webhook secret in production", func(t *testing.T) {
		clearConfigEnv(t)
		setValidProductionBase()
		os.Unsetenv("COD_WAREHOUSE_WEBHOOK_SECRET")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "warehouse.webhook_secret is required in production")
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		clearConfigEnv(t)
		setValidProductionBase()
		os.Unsetenv("COD_DATABASE_PASSWORD")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("rejects sqlite in production", func(t *testing.T) {
		clearConfigEnv(t)
		setValidProductionBase()
		os.Setenv("COD_DATABASE_DRIVER", "sqlite")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sqlite")
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
		assert.Contains(t, dsn, "/testdb")
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
