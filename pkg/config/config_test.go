package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFillsDefaults(t *testing.T) {
	c, err := Parse([]byte("environment: test\n"))
	require.NoError(t, err)

	assert.Equal(t, 8000, c.Server.Port)
	assert.Equal(t, "2y", c.Data.Range)
	assert.Equal(t, "1d", c.Data.Interval)
	assert.Equal(t, time.Hour, c.Data.CacheTTL)
	assert.Equal(t, 5, c.Forecast.Folds)
	assert.Equal(t, 0.9, c.Forecast.Decay)
	assert.Equal(t, 7, c.Forecast.HorizonDays)
	assert.Equal(t, 3, c.Data.Retries)
	assert.Equal(t, 250*time.Millisecond, c.Data.Backoff)
	assert.Equal(t, 5.0, c.Server.PredictBurst)
	assert.Equal(t, 0.5, c.Server.PredictRate)
	assert.False(t, c.Kafka.Enabled)
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"missing environment":     "server:\n  port: 8080\n",
		"bad decay":               "environment: test\nforecast:\n  decay: 1.5\n",
		"kafka without brokers":   "environment: test\nkafka:\n  enabled: true\n",
		"collector without kafka": "environment: test\nlogger:\n  collect:\n    enabled: true\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	c, err := Parse([]byte("environment: test\n"))
	require.NoError(t, err)

	env := map[string]string{
		"SERVER_PORT":   "9090",
		"REDIS_ADDR":    "redis:6379",
		"KAFKA_BROKERS": "k1:9092,k2:9092",
	}
	c.applyEnv(func(k string) string { return env[k] })

	assert.Equal(t, 9090, c.Server.Port)
	assert.True(t, c.Cache.Redis.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Kafka.Enabled)
	assert.NoError(t, c.Validate())
}
