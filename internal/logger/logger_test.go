package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf)

	l.Info("Stored email", 42)
	l.Warnf("retrying %s", "later")
	l.With("category", "Produtivo").Errorw("Failed to store", "path", "/tmp/x")

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "Stored email 42")
	assert.Contains(t, out, "retrying later")
	assert.Contains(t, out, `"category": "Produtivo"`)
	assert.Contains(t, out, `"path": "/tmp/x"`)
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("discarded")
	l.Sync()
}
