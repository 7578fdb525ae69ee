package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := InitConfig()
		require.NoError(t, err)

		assert.Equal(t, BackendMemory, cfg.Storage.Backend)
		assert.Equal(t, 7, cfg.Planner.MaxTripDays)
		assert.Equal(t, 50000.0, cfg.Planner.RecommendedMaxBudget)
		assert.Equal(t, 16.4419, cfg.Planner.CityLat)
		assert.Equal(t, 10*time.Second, cfg.Routing.LegTimeout)
		assert.Equal(t, "driving", cfg.Routing.TravelMode)
		assert.True(t, cfg.IsDevelopment())
	})

	t.Run("secrets come from the environment", func(t *testing.T) {
		t.Setenv("GOOGLE_MAPS_API_KEY", "maps-key")
		t.Setenv("RAPIDAPI_KEY", "rapid-key")
		t.Setenv("SESSION_JWT_SECRET", "s3cret")
		t.Setenv("STORAGE_BACKEND", "redis")

		cfg, err := InitConfig()
		require.NoError(t, err)

		assert.Equal(t, "maps-key", cfg.Providers.Maps.APIKey)
		assert.Equal(t, "rapid-key", cfg.Providers.Weather.APIKey)
		assert.Equal(t, "rapid-key", cfg.Providers.Lazada.APIKey)
		assert.Equal(t, "s3cret", cfg.Session.Secret)
		assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	})

	t.Run("unknown backend is rejected", func(t *testing.T) {
		t.Setenv("STORAGE_BACKEND", "sqlite")
		_, err := InitConfig()
		assert.Error(t, err)
	})
}
