package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anasaboreeda/anascode/internal/cache"
)

func TestParseTTL(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"86400", 24 * time.Hour, false},
		{"1", time.Second, false},
		{"90m", 90 * time.Minute, false},
		{"1h30m", 90 * time.Minute, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"-1h", 0, true},
		{"soon", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := cache.ParseTTL(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45s", cache.FormatDuration(45*time.Second))
	assert.Equal(t, "30m", cache.FormatDuration(30*time.Minute))
	assert.Equal(t, "2h", cache.FormatDuration(2*time.Hour))
	assert.Equal(t, "5h30m", cache.FormatDuration(5*time.Hour+30*time.Minute))
	assert.Equal(t, "1d", cache.FormatDuration(24*time.Hour))
	assert.Equal(t, "2d3h", cache.FormatDuration(51*time.Hour))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", cache.FormatSize(512))
	assert.Equal(t, "1.50 KB", cache.FormatSize(1536))
	assert.Equal(t, "2.00 MB", cache.FormatSize(2*1024*1024))
}
