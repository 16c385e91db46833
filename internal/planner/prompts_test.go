package planner

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntrySchema_DescribesAllKeys(t *testing.T) {
	var schema struct {
		Type       string                    `json:"type"`
		Properties map[string]map[string]any `json:"properties"`
		Required   []string                  `json:"required"`
	}
	require.NoError(t, json.Unmarshal([]byte(entrySchema()), &schema))
	assert.Equal(t, "object", schema.Type)
	assert.ElementsMatch(t, []string{"subject", "topic", "date", "hours"}, schema.Required)
	assert.Equal(t, "number", schema.Properties["hours"]["type"])
	assert.Equal(t, "^[0-9]{4}-[0-9]{2}-[0-9]{2}$", schema.Properties["date"]["pattern"])
}

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "3", formatHours(3))
	assert.Equal(t, "2.5", formatHours(2.5))
	assert.Equal(t, "1.25", formatHours(1.25))
}
