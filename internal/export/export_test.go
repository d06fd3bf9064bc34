package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SteelMorgan/log4j-inspector/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON_FieldNames(t *testing.T) {
	records := []domain.LogRecord{{
		ID:               3,
		TimestampRaw:     1700000000000,
		TimestampDisplay: "2023-11-14 22:13:20.000",
		Level:            "ERROR",
		Logger:           "com.example.Root",
		Thread:           "main",
		ClassName:        "com.example.Service",
		Method:           "void run()",
		Message:          "a < b & c",
		ExceptionText:    "",
		Properties:       map[string]string{"log4jmachinename": "host-a"},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, records))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)

	keys := make([]string, 0, len(decoded[0]))
	for k := range decoded[0] {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{
		"id", "timestampRaw", "timestampDisplay", "level", "logger", "thread",
		"className", "method", "message", "exceptionText", "properties",
	}, keys)

	out := buf.String()
	assert.Contains(t, out, "\n  {\n    \"id\": 3,")
	assert.Contains(t, out, `"message": "a < b & c"`)
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 4, 5, 0, time.FixedZone("X", 3*3600))

	assert.Equal(t, "findings_export_20240305T070405Z.json", FileName(KindFindings, now))
	assert.Equal(t, "logs_export_20240305T070405Z.json", FileName(KindLogs, now))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	path, err := WriteFile(dir, KindLogs, []domain.LogRecord{{ID: 1, Level: "INFO"}}, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "logs_export_20240102T030405Z.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []domain.LogRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "INFO", decoded[0].Level)
}
