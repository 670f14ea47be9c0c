package helpers

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{123 * time.Nanosecond, "123ns"},
		{456 * time.Microsecond, "456µs"},
		{123456 * time.Microsecond, "123.456ms"},
		{45670 * time.Millisecond, "45.67s"},
		{3*time.Minute + 45670*time.Millisecond, "3m 45.67s"},
		{2 * time.Minute, "2m"},
		{2*time.Hour + 30*time.Minute + 15*time.Second, "2h 30m 15s"},
		{-2 * time.Second, "-2s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in), tt.in.String())
	}
}

func TestFormatMicros(t *testing.T) {
	assert.Equal(t, "0µs", FormatMicros(0))
	assert.Equal(t, "120ns", FormatMicros(0.12))
	assert.Equal(t, "3.5µs", FormatMicros(3.5))
	assert.Equal(t, "1.25ms", FormatMicros(1250))
	assert.Equal(t, "2s", FormatMicros(2_000_000))
}

func TestFormatNumberAndBytes(t *testing.T) {
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "1,234,567", FormatNumber(1234567))
	assert.Equal(t, "-1,000", FormatNumber(-1000))

	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.50 KB", FormatBytes(1536))
}

func TestFileHelpers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "bench.md")
	assert.False(t, FileExists(path))
	require.NoError(t, EnsureParentDir(path))
	require.NoError(t, os.WriteFile(path, []byte("12345"), 0644))
	assert.True(t, FileExists(path))
	assert.Equal(t, int64(5), FileSize(path))
	assert.Equal(t, int64(0), FileSize(path+".missing"))
}
