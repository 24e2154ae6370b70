package main

import (
	"net/http"
	"testing"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIConfigDefaults(t *testing.T) {
	var cfg APIConfig
	require.NoError(t, env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}))

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "models/fuel_consumption_model.json", cfg.ModelPath)
	assert.Equal(t, http.StatusInternalServerError, cfg.UnavailableStatus)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestAPIConfigValidate(t *testing.T) {
	valid := APIConfig{Port: 8000, UnavailableStatus: http.StatusServiceUnavailable}
	require.NoError(t, valid.Validate())

	for name, cfg := range map[string]APIConfig{
		"UnavailableStatus": {Port: 8000, UnavailableStatus: http.StatusTeapot},
		"Port":              {Port: 0, UnavailableStatus: http.StatusInternalServerError},
		"CacheSize":         {Port: 8000, UnavailableStatus: http.StatusInternalServerError, PredictionCacheSize: -1},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, cfg.Validate())
		})
	}
}
