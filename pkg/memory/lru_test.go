package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func k(n int) pageKey {
	return pageKey{tableID: 1, pageNo: n}
}

func TestLRUOrdering(t *testing.T) {
	l := newLRUList()
	l.PushFront(k(1))
	l.PushFront(k(2))
	l.PushFront(k(3))

	assert.Equal(t, []pageKey{k(1), k(2), k(3)}, l.KeysOldestFirst())

	// Re-pushing moves to the front.
	l.PushFront(k(1))
	assert.Equal(t, []pageKey{k(2), k(3), k(1)}, l.KeysOldestFirst())
}

func TestLRURemove(t *testing.T) {
	l := newLRUList()
	l.PushFront(k(1))
	l.PushFront(k(2))

	l.Remove(k(1))
	assert.Equal(t, []pageKey{k(2)}, l.KeysOldestFirst())
	assert.Equal(t, 1, l.Len())

	// Removing an unknown key is a no-op.
	l.Remove(k(9))
	assert.Equal(t, 1, l.Len())
}
