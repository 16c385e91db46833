package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKVs_RedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{"api_key", "sk-123", "model", "qwen", "LLM_Token", "abc"})
	assert.Equal(t, []interface{}{"api_key", "[REDACTED]", "model", "qwen", "LLM_Token", "[REDACTED]"}, out)
}

func TestSanitizeKVs_OddLengthKeepsTrailingKey(t *testing.T) {
	out := sanitizeKVs([]interface{}{"status", 200, "dangling"})
	assert.Equal(t, []interface{}{"status", 200, "dangling"}, out)
}

func TestNew_Modes(t *testing.T) {
	for _, mode := range []string{"dev", "prod"} {
		log, err := New(mode)
		assert.NoError(t, err)
		assert.NotNil(t, log.SugaredLogger)
	}
}
