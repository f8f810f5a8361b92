// pkg/easy_io/context_test.go

package easy_io

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithCtx(t *testing.T) {
	rc := NewContext(context.Background(), "test")
	rc.Attributes["key"] = "value"

	deadline, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	bounded := rc.WithCtx(deadline)

	_, ok := bounded.Ctx.Deadline()
	assert.True(t, ok, "copy must carry the new context's deadline")
	assert.Equal(t, rc.Command, bounded.Command)
	assert.Equal(t, rc.Attributes, bounded.Attributes)

	// The original stays unbounded.
	_, ok = rc.Ctx.Deadline()
	assert.False(t, ok)
}

func TestHandlePanicConvertsToError(t *testing.T) {
	rc := NewContext(context.Background(), "test")

	var err error
	func() {
		defer rc.HandlePanic(&err)
		panic("boom")
	}()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
