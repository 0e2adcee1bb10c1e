package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelPoolPermitAccounting(t *testing.T) {
	cp, err := NewChannelPool(nil, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, cap(cp.permits))

	// two channels handed out
	cp.permits <- struct{}{}
	cp.permits <- struct{}{}
	require.Len(t, cp.permits, 2)

	cp.releasePermit()
	assert.Len(t, cp.permits, 1)
	cp.releasePermit()
	assert.Len(t, cp.permits, 0)

	// releasing more than was taken never blocks or goes negative
	cp.releasePermit()
	assert.Len(t, cp.permits, 0)

	// the freed permits can be taken again up to capacity
	for range 2 {
		select {
		case cp.permits <- struct{}{}:
		default:
			t.Fatal("permit not available after release")
		}
	}
}

func TestChannelPoolDefaultsCapacity(t *testing.T) {
	cp, err := NewChannelPool(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 16, cp.capacity)
	assert.Equal(t, 16, cap(cp.pool))
}

func TestChannelPoolBorrowHonoursContextAndClose(t *testing.T) {
	cp, err := NewChannelPool(nil, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = cp.Borrow(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, cp.permits, 0)

	cp.Return(nil)
	cp.Close()
	cp.Close()

	_, err = cp.Borrow(context.Background(), 1)
	assert.ErrorIs(t, err, ErrPoolClosed)
}
