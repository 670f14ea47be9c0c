package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC)
}

func TestWriterLogger(t *testing.T) {
	var logBuf, errBuf bytes.Buffer
	l := NewWriterLogger(&logBuf, &errBuf)
	l.now = fixedClock

	l.Info("parsed %d operations", 3)
	l.Error("bad record %q", "get")
	l.Separator()

	assert.Equal(t,
		"[2025-03-14 09:26:53.589] parsed 3 operations\n"+
			"[2025-03-14 09:26:53.589] ERROR: bad record \"get\"\n"+
			SeparatorLine+"\n",
		logBuf.String())
	assert.Equal(t, "[2025-03-14 09:26:53.589] ERROR: bad record \"get\"\n", errBuf.String())
}

func TestScopedLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, &buf)
	l.now = fixedClock

	l.WithScope("PARSE").WithScope("TEXT").Info("skipped %d lines", 2)
	l.WithScope("STATS").Error("boom")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2, "error written once when both streams are the same writer")
	assert.Equal(t, "[2025-03-14 09:26:53.589] [PARSE:TEXT] skipped 2 lines", lines[0])
	assert.Equal(t, "[2025-03-14 09:26:53.589] [STATS] ERROR: boom", lines[1])
}

func TestDualLoggerFiles(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "run.log")
	errPath := filepath.Join(dir, "run.err")

	l, err := NewDualLogger(logPath, errPath)
	require.NoError(t, err)
	l.Info("hello")
	l.Error("bad")
	l.Close()

	logData, err := os.ReadFile(logPath)
	require.NoError(t, err)
	errData, err := os.ReadFile(errPath)
	require.NoError(t, err)

	assert.Contains(t, string(logData), "hello")
	assert.Contains(t, string(logData), "ERROR: bad")
	assert.NotContains(t, string(errData), "hello")
	assert.Contains(t, string(errData), "ERROR: bad")
}

func TestNopLogger(t *testing.T) {
	l := OrNop(nil)
	assert.NotPanics(t, func() {
		l.WithScope("X").Info("ignored %d", 1)
		l.Error("ignored")
		l.Close()
	})
}
