// pkg/easy_err/util_test.go

package easy_err

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsExpectedUserError(t *testing.T) {
	plain := errors.New("disk on fire")
	user := NewUserError("pick a different folder")
	wrapped := fmt.Errorf("outer: %w", NewExpectedError(plain))

	assert.False(t, IsExpectedUserError(plain))
	assert.True(t, IsExpectedUserError(user))
	assert.True(t, IsExpectedUserError(wrapped))
	assert.False(t, IsExpectedUserError(nil))
}

func TestNewExpectedErrorNilStaysNil(t *testing.T) {
	assert.NoError(t, NewExpectedError(nil))
}

func TestUserErrorUnwraps(t *testing.T) {
	cause := errors.New("root cause")
	err := NewExpectedError(cause)
	assert.ErrorIs(t, err, cause)
}

func TestExtractSummary(t *testing.T) {
	tests := []struct {
		name   string
		output string
		max    int
		want   string
	}{
		{
			name:   "picks the error line",
			output: "downloading...\nerror: connection refused\ndone",
			max:    2,
			want:   "error: connection refused",
		},
		{
			name:   "joins multiple candidates",
			output: "step failed: no space\ntimeout waiting for daemon",
			max:    2,
			want:   "step failed: no space - timeout waiting for daemon",
		},
		{
			name:   "caps candidates at max",
			output: "error one\nerror two\nerror three",
			max:    2,
			want:   "error one - error two",
		},
		{
			name:   "falls back to first non-empty line",
			output: "\n\nnothing special here\nmore text",
			max:    2,
			want:   "nothing special here",
		},
		{
			name:   "empty output",
			output: "   \n  ",
			max:    2,
			want:   "No output provided.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSummary(tt.output, tt.max))
		})
	}
}
