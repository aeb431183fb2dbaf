package structlog

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &m))
	return m
}

func TestInfoEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New("veil-engine", LevelDebug, &buf)
	log.Info("serve", Fields{"sensor": "depth", "view": "veiled"})

	m := lastLine(t, &buf)
	assert.Equal(t, "INFO", m["level"])
	assert.Equal(t, "veil-engine", m["component"])
	assert.Equal(t, "serve", m["message"])
	assert.Equal(t, "depth", m["sensor"])
	assert.Equal(t, "veiled", m["view"])
	assert.NotEmpty(t, m["timestamp"])
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New("x", LevelWarn, &buf)
	log.Debug("hidden", nil)
	log.Info("hidden", nil)
	assert.Zero(t, buf.Len())

	log.Warn("shown", nil)
	assert.NotZero(t, buf.Len())
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := New("x", LevelDebug, &buf)
	child := parent.WithFields(Fields{"client": "c1"})

	child.Info("from child", nil)
	m := lastLine(t, &buf)
	assert.Equal(t, "c1", m["client"])

	buf.Reset()
	parent.Info("from parent", nil)
	m = lastLine(t, &buf)
	assert.NotContains(t, m, "client")
}

func TestErrorIncludesCaller(t *testing.T) {
	var buf bytes.Buffer
	log := New("x", LevelDebug, &buf)
	log.Error("boom", nil)
	m := lastLine(t, &buf)
	assert.Contains(t, m, "caller")
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", RequestID(ctx))
	assert.Equal(t, "", RequestID(context.Background()))

	var buf bytes.Buffer
	log := New("x", LevelDebug, &buf).WithContext(ctx)
	log.Info("hi", nil)
	m := lastLine(t, &buf)
	assert.Equal(t, "req-123", m["request_id"])
}
