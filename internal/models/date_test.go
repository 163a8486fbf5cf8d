package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"jira timestamp", "2024-01-02T09:30:00.000+0100", "2024-01-02", true},
		{"keeps local calendar date", "2024-01-02T23:30:00.000-0500", "2024-01-02", true},
		{"rfc3339 utc", "2024-03-01T00:00:00.000Z", "2024-03-01", true},
		{"rfc3339 offset", "2024-03-01T10:00:00+02:00", "2024-03-01", true},
		{"legacy sprint field", "2024-03-01T10:00:00.000+01:00", "2024-03-01", true},
		{"date only", "2024-02-29", "2024-02-29", true},
		{"minute precision", "2024-02-29 14:05", "2024-02-29", true},
		{"none literal", "None", "", false},
		{"null marker", "<null>", "", false},
		{"empty", "  ", "", false},
		{"garbage", "next tuesday", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, DayKey(got))
				assert.Equal(t, time.UTC, got.Location())
			}
		})
	}
}

func TestParseOptionalDate(t *testing.T) {
	assert.Nil(t, ParseOptionalDate("None"))
	d := ParseOptionalDate("2024-01-01")
	if assert.NotNil(t, d) {
		assert.Equal(t, "2024-01-01", DayKey(*d))
	}
}
