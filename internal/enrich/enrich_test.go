package enrich

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWhoisDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2019-03-15T08:30:00Z", time.Date(2019, 3, 15, 8, 30, 0, 0, time.UTC)},
		{"2019-03-15 08:30:00", time.Date(2019, 3, 15, 8, 30, 0, 0, time.UTC)},
		{"15-Mar-2019", time.Date(2019, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2019.03.15 08:30:00", time.Date(2019, 3, 15, 8, 30, 0, 0, time.UTC)},
		{"2019/03/15", time.Date(2019, 3, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		got, err := parseWhoisDate(tt.in)
		require.NoError(t, err, "input %q", tt.in)
		assert.True(t, got.Equal(tt.want), "input %q: got %v", tt.in, got)
	}

	_, err := parseWhoisDate("not a date")
	assert.Error(t, err)
}

func TestNewDefaultsTimeout(t *testing.T) {
	e := New(0, nil)
	assert.Equal(t, 5*time.Second, e.timeout)
}
