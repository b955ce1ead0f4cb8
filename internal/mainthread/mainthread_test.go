package mainthread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockIsStableOnLockedGoroutine(t *testing.T) {
	id := Lock()
	require.NotZero(t, id)
	assert.Equal(t, id, Current())
	assert.Equal(t, id, Current())
}

func TestOtherGoroutineHasDifferentID(t *testing.T) {
	id := Lock()

	other := make(chan ID)
	go func() {
		other <- Current()
	}()
	assert.NotEqual(t, id, <-other)
}
