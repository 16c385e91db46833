package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyplanner/internal/config"
)

func TestNew_EmptyAddr(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{Addr: "  "})
	assert.EqualError(t, err, "redis addr is empty")
}

func TestNew_UnreachableServer(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{Addr: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping redis failed")
}
