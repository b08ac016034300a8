package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	var stdout, stderr bytes.Buffer
	l := NewLogger(&stdout, &stderr)

	l.Info("Camera loaded", "database")
	assert.Regexp(t, `^\[\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}\] \[database\] Camera loaded\n$`, stdout.String())
	assert.Empty(t, stderr.String())

	l.Error("discarding event 3")
	var record map[string]any
	require.NoError(t, json.Unmarshal(stderr.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "discarding event 3", record["msg"])
}

func TestLoggerWith(t *testing.T) {
	var stdout, stderr bytes.Buffer
	l := NewLogger(&stdout, &stderr).With("session", "b1946ac9")

	l.Info("Run finished", "summary")
	assert.Regexp(t, `\] \[b1946ac9\] \[summary\] Run finished\n$`, stdout.String())

	l.Error("error loading camera")
	var record map[string]any
	require.NoError(t, json.Unmarshal(stderr.Bytes(), &record))
	assert.Equal(t, "b1946ac9", record["session"])
}
