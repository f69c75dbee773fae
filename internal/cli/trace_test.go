package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceCommand_Timeline(t *testing.T) {
	db := seedSession(t, "sess-1")

	out, err := executeCommand(t, "trace", "--db", db, "sess-1")
	require.NoError(t, err)
	assert.Contains(t, out, "3 event(s)")
	assert.Contains(t, out, "start")
	assert.Contains(t, out, "click")
	assert.Contains(t, out, "end")
}

func TestTraceCommand_KindFilter(t *testing.T) {
	db := seedSession(t, "sess-1")

	out, err := executeCommand(t, "trace", "--db", db, "sess-1", "--kind", "click")
	require.NoError(t, err)
	assert.Contains(t, out, "1 event(s)")
	assert.NotContains(t, out, "start")
}

func TestTraceCommand_SinceSeq(t *testing.T) {
	db := seedSession(t, "sess-1")

	out, err := executeCommand(t, "trace", "--db", db, "sess-1", "--since-seq", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "2 event(s)")
	assert.NotContains(t, out, "start")
}

func TestTraceCommand_InvalidKindRejected(t *testing.T) {
	db := seedSession(t, "sess-1")

	_, err := executeCommand(t, "trace", "--db", db, "sess-1", "--kind", "undo")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTraceCommand_JSON(t *testing.T) {
	db := seedSession(t, "sess-1")

	out, err := executeCommand(t, "--format", "json", "trace", "--db", db, "sess-1")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Timeline, 3)
	assert.Equal(t, int64(1), resp.Data.Timeline[0].Seq)
	assert.Equal(t, "start", resp.Data.Timeline[0].Kind)
	assert.Equal(t, 1, resp.Data.Stats.Clicks)
	assert.True(t, resp.Data.Stats.Ended)
}

func TestTraceCommand_UnknownSession(t *testing.T) {
	db := seedSession(t, "sess-1")

	out, err := executeCommand(t, "trace", "--db", db, "missing")
	require.NoError(t, err)
	assert.Contains(t, out, "No events")
}
