package filter

import (
	"testing"

	"github.com/SteelMorgan/log4j-inspector/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFacets(t *testing.T) {
	records := []domain.LogRecord{
		{Level: "WARN", ClassName: "com.example.Zeta", Method: "void run()"},
		{Level: "INFO", ClassName: "com.example.Alpha", Method: "int count(java.util.List, int)"},
		{Level: "WARN", ClassName: "com.example.Zeta", Method: "void run()"},
		{Level: "", ClassName: " ", Method: ""},
		{Level: "  ", ClassName: "", Method: " "},
	}

	f := BuildFacets(records)
	assert.Equal(t, []string{"WARN", "INFO"}, f.Levels)

	require.Len(t, f.Classes, 2)
	assert.Equal(t, "Alpha", f.Classes[0].Name)
	assert.Equal(t, "com.example", f.Classes[0].Package)
	assert.Equal(t, "Zeta", f.Classes[1].Name)

	require.Len(t, f.Methods, 2)
	assert.Equal(t, "count", f.Methods[0].Name)
	assert.Equal(t, "run", f.Methods[1].Name)
}

func TestSplitClassName(t *testing.T) {
	tests := []struct {
		in   string
		want ClassOption
	}{
		{"com.example.Service", ClassOption{Value: "com.example.Service", Name: "Service", Package: "com.example"}},
		{"Service", ClassOption{Value: "Service", Name: "Service"}},
		{"com.example.", ClassOption{Value: "com.example.", Name: "Unknown", Package: "com.example"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitClassName(tt.in))
		})
	}
}

func TestSplitMethod(t *testing.T) {
	tests := []struct {
		in        string
		retType   string
		name      string
		params    []string
		wantLabel string
	}{
		{"void handle(java.lang.String, int)", "void", "handle", []string{"String", "int"}, "handle(String, int)"},
		{"java.util.List getAll()", "java.util.List", "getAll", nil, "getAll()"},
		{"lambda$0", "lambda$0", "Unknown", nil, "Unknown()"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m := SplitMethod(tt.in)
			assert.Equal(t, tt.in, m.Value)
			assert.Equal(t, tt.retType, m.ReturnType)
			assert.Equal(t, tt.name, m.Name)
			assert.Equal(t, tt.params, m.Parameters)
			assert.Equal(t, tt.wantLabel, m.Label())
		})
	}
}
