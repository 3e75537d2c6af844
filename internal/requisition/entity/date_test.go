package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{`"2025-01-04"`, time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC)},
		{`"2025-01-04T15:30:00Z"`, time.Date(2025, 1, 4, 15, 30, 0, 0, time.UTC)},
		{`"2025-01-04T15:30:00"`, time.Date(2025, 1, 4, 15, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		var d Date
		require.NoError(t, json.Unmarshal([]byte(tt.in), &d), tt.in)
		assert.True(t, tt.want.Equal(d.Time), "%s parsed as %s", tt.in, d.Time)
	}

	var payload struct {
		Start *Date `json:"start"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"start":null}`), &payload))
	assert.Nil(t, payload.Start)
}

func TestDate_RejectsGarbage(t *testing.T) {
	for _, in := range []string{`"04/01/2025"`, `""`, `20250104`} {
		var d Date
		assert.Error(t, json.Unmarshal([]byte(in), &d), in)
	}
}
