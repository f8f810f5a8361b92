// pkg/interaction/prompt_test.go

package interaction

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func input(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestPromptSelect(t *testing.T) {
	options := []string{"Play", "Host", "Exit"}

	tests := []struct {
		name  string
		stdin string
		want  string
	}{
		{"first option", "1\n", "Play"},
		{"last option", "3\n", "Exit"},
		{"retries after garbage", "potato\n0\n2\n", "Host"},
		{"valid pick without trailing newline", "2", "Host"},
		{"closed stdin returns empty", "", ""},
		{"closed stdin after garbage returns empty", "nope\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, promptSelect(input(tt.stdin), "Menu", options))
		})
	}
}

func TestPromptYesNo(t *testing.T) {
	tests := []struct {
		name       string
		stdin      string
		defaultYes bool
		want       bool
	}{
		{"yes", "y\n", false, true},
		{"spelled out", "yes\n", false, true},
		{"no", "n\n", true, false},
		{"enter takes default yes", "\n", true, true},
		{"enter takes default no", "\n", false, false},
		{"closed stdin declines even with default yes", "", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, promptYesNo(input(tt.stdin), "Sure?", tt.defaultYes))
		})
	}
}

func TestPromptRequired(t *testing.T) {
	assert.Equal(t, "value", promptRequired(input("\n\nvalue\n"), "Path"))
	assert.Equal(t, "", promptRequired(input(""), "Path"))
	assert.Equal(t, "tail", promptRequired(input("tail"), "Path"))
}

func TestPromptInput(t *testing.T) {
	assert.Equal(t, "typed", promptInput(input("typed\n"), "Name", "fallback"))
	assert.Equal(t, "fallback", promptInput(input("\n"), "Name", "fallback"))
	assert.Equal(t, "fallback", promptInput(input(""), "Name", "fallback"))
}
