package orderbookv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArena_AllocAndOrder(t *testing.T) {
	a := NewArena(4)

	h1 := a.Alloc(Order{ID: 1, Quantity: 10})
	h2 := a.Alloc(Order{ID: 2, Quantity: 20})

	assert.NotEqual(t, h1, h2)
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, uint64(1), a.Order(h1).ID)
	assert.Equal(t, uint64(2), a.Order(h2).ID)
	assert.Equal(t, NilHandle, a.Next(h1))
	assert.Equal(t, NilHandle, a.Prev(h1))
}

func TestArena_ReleaseReusesHandles(t *testing.T) {
	a := NewArena(4)

	h1 := a.Alloc(Order{ID: 1, Quantity: 10})
	a.Alloc(Order{ID: 2, Quantity: 20})

	a.Release(h1)
	assert.Equal(t, 1, a.Len())

	// The freed slot is handed out again.
	h3 := a.Alloc(Order{ID: 3, Quantity: 30})
	assert.Equal(t, h1, h3)
	assert.Equal(t, uint64(3), a.Order(h3).ID)
	assert.Equal(t, 2, a.Len())
}

func TestArena_GrowsBeyondCapacity(t *testing.T) {
	a := NewArena(1)

	handles := make([]Handle, 0, 100)
	for i := range 100 {
		handles = append(handles, a.Alloc(Order{ID: uint64(i + 1), Quantity: 1}))
	}

	assert.Equal(t, 100, a.Len())
	for i, h := range handles {
		assert.Equal(t, uint64(i+1), a.Order(h).ID)
	}
}
