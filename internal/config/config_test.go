package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestFromLookup_Defaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 30*time.Second, cfg.GracePeriod)
	assert.Equal(t, 1500, cfg.PairingBaseline)
	assert.Equal(t, 150, cfg.PairingTolerance)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestFromLookup_Overrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"HTTP_PORT":      "9090",
		"STORAGE_TYPE":   "redis",
		"REDIS_URL":      "redis://localhost:6379/0",
		"GRACE_PERIOD":   "45s",
		"CONCEAL_POLICY": "none",
		"CORS_ORIGINS":   "http://a.example, http://b.example",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, StorageTypeRedis, cfg.StorageType)
	assert.Equal(t, 45*time.Second, cfg.GracePeriod)
	assert.Equal(t, "none", cfg.ConcealPolicy)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
}

func TestFromLookup_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad int", map[string]string{"HTTP_PORT": "eighty"}},
		{"bad duration", map[string]string{"ROOM_TTL": "soon"}},
		{"redis without url", map[string]string{"STORAGE_TYPE": "redis"}},
		{"postgres without url", map[string]string{"STORAGE_TYPE": "postgres"}},
		{"postgres catalog without url", map[string]string{"CATALOG_SOURCE": "postgres"}},
		{"unknown storage", map[string]string{"STORAGE_TYPE": "etcd"}},
		{"negative grace", map[string]string{"GRACE_PERIOD": "-1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromLookup(lookupFrom(tt.env))
			assert.Error(t, err)
		})
	}
}
