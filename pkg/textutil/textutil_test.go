package textutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBinary(t *testing.T) {
	t.Parallel()

	atBoundary := bytes.Repeat([]byte("a"), BinarySniffLength)
	atBoundary[BinarySniffLength-1] = 0

	beyond := append(bytes.Repeat([]byte("a"), BinarySniffLength), 0)

	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"empty", nil, false},
		{"java source", []byte("class A {\n    void m() {}\n}\n"), false},
		{"null byte", []byte("class A {}\x00"), true},
		{"null at start", []byte("\x00class"), true},
		{"null at sniff boundary", atBoundary, true},
		{"null beyond sniff boundary", beyond, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, IsBinary(tt.data))
		})
	}
}

func TestCountLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want int
	}{
		{"empty", "", 0},
		{"no trailing newline", "class A {}", 1},
		{"trailing newline", "class A {}\n", 1},
		{"several", "a\nb\nc\n", 3},
		{"several without trailing newline", "a\nb\nc", 3},
		{"empty lines", "\n\n\n", 3},
		{"large", strings.Repeat("line\n", 10000), 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, CountLines([]byte(tt.data)))
		})
	}
}
