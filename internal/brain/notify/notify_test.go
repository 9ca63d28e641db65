package notify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	q.Push("USB Device", "New keyboard detected", Normal)
	q.Push("Battery Low", "10% remaining", Critical)
	require.Equal(t, 2, q.Len())

	n, ok := q.Next()
	require.True(t, ok)
	assert.Equal(t, "USB Device", n.Source)

	n, ok = q.Next()
	require.True(t, ok)
	assert.Equal(t, Critical, n.Priority)

	_, ok = q.Next()
	assert.False(t, ok)
}

func TestQueueDropsOldest(t *testing.T) {
	q := NewQueue()
	for i := 0; i < MaxPending+5; i++ {
		q.Push("COMM-LINK", fmt.Sprintf("msg %d", i), Normal)
	}
	pending := q.Pending()
	require.Len(t, pending, MaxPending)
	assert.Equal(t, "msg 5", pending[0].Message)

	assert.Equal(t, MaxPending, q.Clear())
	assert.Zero(t, q.Len())
}

func TestPriorityOf(t *testing.T) {
	assert.Equal(t, Critical, PriorityOf("Reactor CRITICAL"))
	assert.Equal(t, Normal, PriorityOf("shift change"))
}
