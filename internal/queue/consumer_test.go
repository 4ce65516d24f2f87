package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConsumer_HandleMessageAppendsLine(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	c := &Consumer{Dir: dir, Log: zap.NewNop()}

	events := []LoginAttemptEvent{
		{Username: "alice", Outcome: "success", RequestID: "req-1", RemoteIP: "10.0.0.1", OccurredAt: "2024-05-01T10:00:00Z"},
		{Username: "mallory", Outcome: "invalid_credentials", OccurredAt: "2024-05-01T10:00:01Z"},
	}
	for _, ev := range events {
		body, err := json.Marshal(ev)
		require.NoError(t, err)
		require.NoError(t, c.handleMessage(body))
	}

	data, err := os.ReadFile(filepath.Join(dir, auditLogFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `[2024-05-01T10:00:00Z] Login success | usuario="alice" | request_id=req-1 | ip=10.0.0.1`, lines[0])
	assert.Equal(t, `[2024-05-01T10:00:01Z] Login invalid_credentials | usuario="mallory" | request_id= | ip=`, lines[1])
}

func TestConsumer_HandleMessageRejects(t *testing.T) {
	dir := t.TempDir()
	c := &Consumer{Dir: dir, Log: zap.NewNop()}

	for _, body := range []string{
		`not json`,
		`{"outcome":"success"}`,
		`{"username":"alice"}`,
	} {
		assert.Error(t, c.handleMessage([]byte(body)), body)
	}

	_, err := os.Stat(filepath.Join(dir, auditLogFile))
	assert.True(t, os.IsNotExist(err))
}

func TestLoginAttemptEvent_NoSecretField(t *testing.T) {
	body, err := json.Marshal(LoginAttemptEvent{Username: "alice", Outcome: "success", OccurredAt: "t"})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(body, &m))
	assert.Equal(t, map[string]any{"username": "alice", "outcome": "success", "occurred_at": "t"}, m)
}
