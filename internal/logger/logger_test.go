package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogRespectsLevelThreshold(t *testing.T) {
	var buf bytes.Buffer
	original := out
	SetOutput(&buf)
	defer SetOutput(original)
	SetLevel(LevelWarn)
	defer SetLevel(LevelInfo)

	l := New("test")
	l.Debug("should not appear")
	assert.Empty(t, buf.String())

	l.Warn("should appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestLogIncludesModuleTagAndContext(t *testing.T) {
	var buf bytes.Buffer
	original := out
	SetOutput(&buf)
	defer SetOutput(original)
	SetLevel(LevelTrace)
	defer SetLevel(LevelInfo)

	l := New("chain")
	l.Info("block mined", "index", 3, "hash", "abc")

	out := buf.String()
	assert.True(t, strings.Contains(out, "chain"))
	assert.True(t, strings.Contains(out, "index=3"))
	assert.True(t, strings.Contains(out, "hash=abc"))
}
