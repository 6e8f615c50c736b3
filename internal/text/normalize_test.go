package text

import (
	"errors"
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{
			name:  "passthrough clean text",
			input: "Hello world",
			want:  "Hello world",
		},
		{
			name:  "trims surrounding whitespace",
			input: "  Hello world  ",
			want:  "Hello world",
		},
		{
			name:  "normalizes CRLF to LF",
			input: "line one\r\nline two",
			want:  "line one\nline two",
		},
		{
			name:  "normalizes bare CR to LF",
			input: "line one\rline two",
			want:  "line one\nline two",
		},
		{
			name:  "normalizes mixed line endings",
			input: "a\r\nb\rc\nd",
			want:  "a\nb\nc\nd",
		},
		{
			name:    "rejects empty string",
			input:   "",
			wantErr: ErrEmptyText,
		},
		{
			name:    "rejects whitespace-only string",
			input:   "   \t\n  ",
			wantErr: ErrEmptyText,
		},
		{
			name:  "preserves unicode content",
			input: "  Héllo wörld  ",
			want:  "Héllo wörld",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Normalize(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("Normalize(%q) returned unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitSegments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "single line",
			input: "hello world",
			want:  []string{"hello world"},
		},
		{
			name:  "drops blank lines",
			input: "first\n\n  \nsecond",
			want:  []string{"first", "second"},
		},
		{
			name:  "trims per-line whitespace",
			input: "  first  \n\tsecond\t",
			want:  []string{"first", "second"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSegments(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSegments(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
