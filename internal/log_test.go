package internal

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	flags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(flags)
	})
	return &buf
}

func TestParseLogLevel(t *testing.T) {
	level, ok := ParseLogLevel(" debug ")
	assert.True(t, ok)
	assert.Equal(t, LogLevelDebug, level)

	_, ok = ParseLogLevel("verbose")
	assert.False(t, ok)
}

func TestLoggerFiltersByLevel(t *testing.T) {
	buf := captureLog(t)
	l := NewLogger("Socket", LogLevelInfo)

	l.Debug("hidden")
	l.Info("connected to %s", "peer")
	l.Named("Updater").Warn("slow")

	assert.Equal(t, "[Socket] connected to peer\n[WARN] [Updater] slow\n", buf.String())
}

func TestNilLoggerIsSilent(t *testing.T) {
	buf := captureLog(t)
	var l *Logger
	l.Error("nothing")
	assert.Empty(t, buf.String())
}
