package models

import (
	"testing"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-08-06")
	require.NoError(t, err)
	assert.Equal(t, "2025-08-06", d.String())

	_, err = ParseDate("2025-8-6")
	require.Error(t, err)

	_, err = ParseDate("2025-02-30")
	require.Error(t, err)
}

func TestDate_Scan(t *testing.T) {
	tests := []struct {
		name     string
		src      interface{}
		expected string
	}{
		{"string", "2025-08-13", "2025-08-13"},
		{"bytes", []byte("2025-08-13"), "2025-08-13"},
		{"timestamp text", "2025-08-13T00:00:00Z", "2025-08-13"},
		{"time", time.Date(2025, 8, 13, 15, 4, 5, 0, time.UTC), "2025-08-13"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.src))
			assert.Equal(t, tt.expected, d.String())
		})
	}

	var d Date
	require.Error(t, d.Scan(42))
}

func TestDate_Value(t *testing.T) {
	d := NewDate(time.Date(2025, 8, 20, 23, 59, 0, 0, time.UTC))
	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-08-20", v)
}

func TestDate_JSON(t *testing.T) {
	d, err := ParseDate("2025-08-27")
	require.NoError(t, err)

	comic := Comic{Title: "Avengers Annual 2025", OnsaleDate: &d}
	data, err := json.Marshal(comic)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"onsale_date":"2025-08-27"`)
	assert.Contains(t, string(data), `"author":null`)

	var decoded Comic
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotNil(t, decoded.OnsaleDate)
	assert.Equal(t, "2025-08-27", decoded.OnsaleDate.String())
}
