package logreader

import (
	"strings"
	"testing"
)

func TestFragmenterNext(t *testing.T) {
	rec := `<log4j:event level="INFO"><log4j:message>a</log4j:message></log4j:event>`

	tests := []struct {
		name      string
		chunks    []string
		wantBody  []string
		wantCarry string
	}{
		{
			name:      "whole record in one chunk",
			chunks:    []string{"<log4j:eventSet>\n" + rec + "\n"},
			wantBody:  []string{rec},
			wantCarry: "\n",
		},
		{
			name:      "record split inside body",
			chunks:    []string{rec[:20], rec[20:]},
			wantBody:  []string{"", rec},
			wantCarry: "",
		},
		{
			name:      "start marker split across boundary",
			chunks:    []string{rec + "\n<log4j:ev", "ent" + rec[len("<log4j:event"):]},
			wantBody:  []string{rec, rec},
			wantCarry: "",
		},
		{
			name:      "start marker exactly at boundary",
			chunks:    []string{rec + "\n", rec},
			wantBody:  []string{rec, rec},
			wantCarry: "",
		},
		{
			name:      "wrapper tag is not a record start",
			chunks:    []string{`<log4j:eventSet version="1.2">`},
			wantBody:  []string{""},
			wantCarry: `rsion="1.2">`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFragmenter("log4j")
			for i, chunk := range tt.chunks {
				got := f.next(chunk)
				if strings.TrimSpace(got) != tt.wantBody[i] {
					t.Errorf("chunk %d: body = %q, want %q", i, got, tt.wantBody[i])
				}
			}
			if f.carry != tt.wantCarry {
				t.Errorf("carry = %q, want %q", f.carry, tt.wantCarry)
			}
		})
	}
}

func TestFragmenterRest(t *testing.T) {
	f := newFragmenter("log4j")
	f.next(`<log4j:event level="INFO"><log4j:message>a</log4j:message></log4j:event>` + "\n</log4j:eventSet>\n")
	if rest := f.rest(); rest != "" {
		t.Errorf("expected empty rest after closing wrapper, got %q", rest)
	}

	f = newFragmenter("log4j")
	f.next(`<log4j:event level="INFO"><log4j:mess`)
	if rest := f.rest(); !strings.HasPrefix(rest, "<log4j:event ") {
		t.Errorf("expected open record in rest, got %q", rest)
	}
}

func TestSplitChunks(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		size       int
		wantChunks int
	}{
		{name: "small input is one chunk", input: strings.Repeat("x", 50), size: 20, wantChunks: 1},
		{name: "exactly five chunks is one pass", input: strings.Repeat("x", 50), size: 10, wantChunks: 1},
		{name: "above threshold is chunked", input: strings.Repeat("x", 51), size: 10, wantChunks: 6},
		{name: "empty input", input: "", size: 10, wantChunks: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := splitChunks(tt.input, tt.size)
			if len(chunks) != tt.wantChunks {
				t.Fatalf("got %d chunks, want %d", len(chunks), tt.wantChunks)
			}
			if joined := strings.Join(chunks, ""); joined != tt.input {
				t.Errorf("chunks do not rejoin to the input")
			}
		})
	}
}
