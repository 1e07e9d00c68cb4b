package timeouts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigure_IgnoresZero(t *testing.T) {
	t.Cleanup(Reset)

	Configure(Config{Short: 7 * time.Second})
	assert.Equal(t, 7*time.Second, Short())
	assert.Equal(t, Defaults.Medium, Medium())
}

func TestFromEnv(t *testing.T) {
	t.Setenv("TIMEOUT_BATCH", "2m")
	t.Setenv("TIMEOUT_LONG", "garbage")
	t.Setenv("TIMEOUT_PING", "-1s")

	cfg := FromEnv()
	assert.Equal(t, 2*time.Minute, cfg.Batch)
	assert.Zero(t, cfg.Long)
	assert.Zero(t, cfg.Ping)
}
