package logger

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestNewWithWriterRespectsGlobalLevel(t *testing.T) {
	previous := log.GetLevel()
	defer log.SetLevel(previous)

	log.SetLevel(log.WarnLevel)
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "engine")
	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "engine")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewWithConfig(t *testing.T) {
	l := NewWithConfig("srv", log.DebugLevel, false, false, log.JSONFormatter)
	assert.Equal(t, log.DebugLevel, l.GetLevel())
	assert.Equal(t, "srv", l.GetPrefix())
}

func TestDebugDefaultReachesPrefixedLoggers(t *testing.T) {
	previous := log.Default()
	defer log.SetDefault(previous)

	log.SetDefault(NewWithConfig("", log.DebugLevel, true, true, log.TextFormatter))
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "engine")
	l.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}
