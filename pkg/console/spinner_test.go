package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSpinner_DisabledOutsideTTY(t *testing.T) {
	// Test binaries run with stderr piped to a file, never a TTY, so the
	// spinner should come up disabled and every method should be a no-op.
	s := NewSpinner("working")
	assert.False(t, s.IsEnabled())

	assert.NotPanics(t, func() {
		s.Start()
		s.UpdateMessage("still working")
		s.StopWithMessage("done")
	})
}

func TestBulkProgressMessage(t *testing.T) {
	assert.Equal(t, "deleting 2/5", BulkProgressMessage("deleting", 2, 5))
	assert.Equal(t, "activating 0/3", BulkProgressMessage("activating", 0, 3))
}
