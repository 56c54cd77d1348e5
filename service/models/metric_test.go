package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetric_JSONNeverNull(t *testing.T) {
	row := RAMetrics{
		RAName:            "amina",
		PctComplete:       Unavailable(),
		PctNoQualityFlags: Available(100),
		PctWithin1416Days: Unavailable(),
	}
	raw, err := json.Marshal(row)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "null")
	assert.Contains(t, string(raw), `"pct_complete":0`)
	assert.Contains(t, string(raw), `"pct_no_quality_flags":100`)
	assert.Contains(t, string(raw), `"pct_within_14_16_days":0`)
}

func TestMetric_Int(t *testing.T) {
	assert.Equal(t, 0, Unavailable().Int())
	assert.Equal(t, 0, Available(0).Int())
	assert.Equal(t, 85, Available(85).Int())
}
