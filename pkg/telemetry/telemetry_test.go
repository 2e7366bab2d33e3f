package telemetry

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileEmitter_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	fe, err := NewFileEmitter(path)
	require.NoError(t, err)

	fe.Emit("memory_write", "user-1", map[string]any{
		"reason": "pass",
		"score":  0.123456789,
	})
	fe.Emit("memory_read", "", nil)
	require.NoError(t, fe.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		events = append(events, ev)
	}
	require.Len(t, events, 2)

	assert.Equal(t, "memory_write", events[0].Event)
	assert.Equal(t, "user-1", events[0].UserID)
	assert.Equal(t, "pass", events[0].Fields["reason"])
	assert.Equal(t, 0.123457, events[0].Fields["score"])
	assert.NotEmpty(t, events[0].EventID)
	assert.NotZero(t, events[0].TS)
	assert.NotEmpty(t, events[0].Timestamp)

	assert.Equal(t, "memory_read", events[1].Event)
	assert.Empty(t, events[1].UserID)
	assert.Nil(t, events[1].Fields)
}

func TestFileEmitter_EmitAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	fe, err := NewFileEmitter(path)
	require.NoError(t, err)
	require.NoError(t, fe.Close())

	// Must not panic or error.
	fe.Emit("memory_write", "user-1", nil)
	require.NoError(t, fe.Close())
}

func TestFileEmitter_Rotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.jsonl")
	fe, err := NewFileEmitter(path, WithMaxSize(256), WithMaxRotatedFiles(2))
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		fe.Emit("memory_write", "user-1", map[string]any{"padding": strings.Repeat("x", 40)})
	}
	require.NoError(t, fe.Close())

	_, err = os.Stat(path + ".1")
	assert.NoError(t, err, "rotated file should exist")
}

func TestNormalizeFields(t *testing.T) {
	long := strings.Repeat("a", 500)
	out := NormalizeFields(map[string]any{
		"str":   long,
		"float": 1.23456789,
		"int":   42,
		"bool":  true,
		"other": []int{1, 2, 3},
	})

	assert.Len(t, out["str"], MaxFieldLen)
	assert.Equal(t, 1.234568, out["float"])
	assert.Equal(t, 42, out["int"])
	assert.Equal(t, true, out["bool"])
	assert.IsType(t, "", out["other"])

	assert.Nil(t, NormalizeFields(nil))
}

func TestNopEmitter(t *testing.T) {
	n := NewNopEmitter()
	n.Emit("memory_write", "user-1", map[string]any{"k": "v"})
	assert.NoError(t, n.Close())
}
