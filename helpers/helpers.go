package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FormatBytes formats bytes into human-readable format
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatDuration formats duration into human-readable format.
//
// Formatting rules:
//   - Nanoseconds: whole number, no decimals (e.g., "123ns")
//   - Microseconds: whole number, no decimals (e.g., "456µs")
//   - Milliseconds: up to 3 decimal places (e.g., "123.456ms")
//   - Seconds: up to 2 decimal places (e.g., "45.67s")
//   - Minutes+: compound format (e.g., "3m 45.67s", "2h 30m 15s")
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return "-" + FormatDuration(-d)
	}
	if d == 0 {
		return "0s"
	}
	if d < time.Microsecond {
		return fmt.Sprintf("%dns", d.Nanoseconds())
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return formatFloat(float64(d)/float64(time.Millisecond), 3) + "ms"
	}
	if d < time.Minute {
		return formatFloat(float64(d)/float64(time.Second), 2) + "s"
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		secs := float64(d-time.Duration(mins)*time.Minute) / float64(time.Second)
		if secs < 0.01 {
			return fmt.Sprintf("%dm", mins)
		}
		return fmt.Sprintf("%dm %ss", mins, formatFloat(secs, 2))
	}

	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60
	switch {
	case secs == 0 && mins == 0:
		return fmt.Sprintf("%dh", hours)
	case secs == 0:
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, mins, secs)
}

// FormatMicros formats a microsecond latency with the largest unit that
// keeps the value >= 1, e.g. "120ns", "3.5µs", "1.25ms".
func FormatMicros(us float64) string {
	switch {
	case us == 0:
		return "0µs"
	case us < 1:
		return formatFloat(us*1000, 1) + "ns"
	case us < 1000:
		return formatFloat(us, 3) + "µs"
	case us < 1_000_000:
		return formatFloat(us/1000, 3) + "ms"
	}
	return formatFloat(us/1_000_000, 3) + "s"
}

// formatFloat formats a float with up to maxDecimals, trimming trailing zeros.
func formatFloat(value float64, maxDecimals int) string {
	s := fmt.Sprintf("%.*f", maxDecimals, value)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}

// FormatNumber formats a number with commas for readability
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	s := fmt.Sprintf("%d", n)
	if n < 1000 {
		return s
	}
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// EnsureParentDir creates the directory that will hold file path.
func EnsureParentDir(path string) error {
	return EnsureDir(filepath.Dir(path))
}

// FileExists checks if a file or directory exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FileSize returns the size of path, or 0 if it cannot be read.
func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
