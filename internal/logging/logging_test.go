package logging

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	loc := time.FixedZone("IST", 5*3600+1800)
	log := New(&buf, loc)

	log.Info("submission_stored", "submission_id", "abc", "size", 42)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "submission_stored", entry["msg"])
	assert.Equal(t, "abc", entry["submission_id"])
	assert.Equal(t, float64(42), entry["size"])

	ts, ok := entry["ts"].(string)
	require.True(t, ok)
	assert.Contains(t, ts, "+05:30")
	assert.NotContains(t, entry, "time")
}

func TestNew_ErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, nil).Error("kms_encrypt_failed", "error", "unreachable")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() {
		Discard().Warn("ignored", "k", "v")
	})
}
