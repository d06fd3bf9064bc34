package sysdetails

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/SteelMorgan/log4j-inspector/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func records(messages ...string) []domain.LogRecord {
	out := make([]domain.LogRecord, len(messages))
	for i, m := range messages {
		out[i] = domain.LogRecord{ID: i, Message: m, Properties: map[string]string{}}
	}
	return out
}

func TestExtract_OnlyOSNameMatches(t *testing.T) {
	recs := records(
		"Service starting",
		"Loading configuration",
		"OS Name: Microsoft Windows Server 2019 Standard",
		"Ready",
	)

	d := MustDefault().Extract(context.Background(), recs)

	assert.Equal(t, "Microsoft Windows Server 2019 Standard", d.OSName)
	assert.Empty(t, d.MachineName)
	assert.Empty(t, d.Version)
	assert.Empty(t, d.Architecture)
	assert.Empty(t, d.OSVersion)
	assert.Empty(t, d.OSType)
}

func TestExtract_FirstMatchWins(t *testing.T) {
	recs := records(
		"BVC version 7.3.2 (x64) started",
		"OS Name: Windows 10 Pro",
		"OS Version: 10.0.19045",
		"OS Type: 64-bit",
		"BVC version 8.0.0 (arm64) started",
		"OS Name: Linux",
		"OS Version: 6.1",
		"OS Type: 32-bit",
	)
	recs[1].Properties["log4jmachinename"] = "WS-0142"
	recs[5].Properties["log4jmachinename"] = "other-host"

	d := MustDefault().Extract(context.Background(), recs)

	assert.Equal(t, domain.SystemDetails{
		MachineName:  "WS-0142",
		Version:      "7.3.2",
		Architecture: "x64",
		OSName:       "Windows 10 Pro",
		OSVersion:    "10.0.19045",
		OSType:       "64-bit",
	}, d)
}

func TestExtract_Empty(t *testing.T) {
	d := MustDefault().Extract(context.Background(), nil)
	assert.True(t, d.IsEmpty())
}

func TestSoftwarePattern(t *testing.T) {
	tests := []struct {
		message     string
		wantVersion string
		wantArch    string
	}{
		{"Starting BVC version 7.3.2.1 (x64)", "7.3.2.1", "x64"},
		{"Agent v2.10 (arm64)", "2.10", "arm64"},
		{"OS Version: 10.0.19045 (x64)", "", ""},
		{"version without arch 1.2.3", "", ""},
	}

	e := MustDefault()
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			version, arch := e.matchSoftware(tt.message)
			assert.Equal(t, tt.wantVersion, version)
			assert.Equal(t, tt.wantArch, arch)
		})
	}
}

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("machine_property: host\nos_name: 'Platform=(?P<value>\\w+)'\n"), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, "host", rules.MachineProperty)
	assert.Equal(t, DefaultRules().OSVersion, rules.OSVersion)

	e, err := NewExtractor(rules)
	require.NoError(t, err)

	recs := records("Platform=linux")
	recs[0].Properties["host"] = "box"
	d := e.Extract(context.Background(), recs)
	assert.Equal(t, "linux", d.OSName)
	assert.Equal(t, "box", d.MachineName)
}

func TestNewExtractor_InvalidPattern(t *testing.T) {
	rules := DefaultRules()
	rules.OSType = "(unclosed"
	_, err := NewExtractor(rules)
	assert.Error(t, err)
}
