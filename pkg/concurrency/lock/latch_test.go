package lock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heapdb/pkg/concurrency/transaction"
)

func TestSharedLocksAreCompatible(t *testing.T) {
	l := NewPageLatch()
	t1 := transaction.NewTransactionID()
	t2 := transaction.NewTransactionID()

	require.NoError(t, l.Acquire(t1, Shared))
	require.NoError(t, l.Acquire(t2, Shared))

	assert.True(t, l.Holds(t1))
	assert.True(t, l.Holds(t2))
	assert.Equal(t, 2, l.HolderCount())
}

func TestReacquireIsIdempotent(t *testing.T) {
	l := NewPageLatch()
	tid := transaction.NewTransactionID()

	require.NoError(t, l.Acquire(tid, Exclusive))
	require.NoError(t, l.Acquire(tid, Exclusive))
	require.NoError(t, l.Acquire(tid, Shared)) // weaker request, still satisfied
	assert.Equal(t, 1, l.HolderCount())
	assert.True(t, l.HoldsExclusive(tid))
}

func TestExclusiveConflictAbortsWithinDeadline(t *testing.T) {
	l := NewPageLatch()
	t1 := transaction.NewTransactionID()
	t2 := transaction.NewTransactionID()

	require.NoError(t, l.Acquire(t1, Exclusive))

	begin := time.Now()
	err := l.Acquire(t2, Exclusive)
	elapsed := time.Since(begin)

	require.Error(t, err)
	assert.True(t, IsTransactionAborted(err))
	assert.Less(t, elapsed, 4100*time.Millisecond, "abort must come within the wait window")
	assert.True(t, l.Holds(t1))
	assert.False(t, l.Holds(t2))
}

func TestSharedBlockedByExclusiveAborts(t *testing.T) {
	SetWaitWindowForTest(50*time.Millisecond, 50*time.Millisecond)
	defer ResetWaitWindow()

	l := NewPageLatch()
	t1 := transaction.NewTransactionID()
	t2 := transaction.NewTransactionID()

	require.NoError(t, l.Acquire(t1, Exclusive))
	err := l.Acquire(t2, Shared)
	assert.True(t, IsTransactionAborted(err))
}

func TestReleaseWakesExclusiveWaiter(t *testing.T) {
	l := NewPageLatch()
	t1 := transaction.NewTransactionID()
	t2 := transaction.NewTransactionID()

	require.NoError(t, l.Acquire(t1, Exclusive))

	acquired := make(chan error, 1)
	go func() {
		acquired <- l.Acquire(t2, Exclusive)
	}()

	time.Sleep(50 * time.Millisecond)
	l.Release(t1)

	select {
	case err := <-acquired:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter was not woken by release")
	}
	assert.True(t, l.HoldsExclusive(t2))
}

func TestReleaseWakesAllSharedWaiters(t *testing.T) {
	l := NewPageLatch()
	writer := transaction.NewTransactionID()
	require.NoError(t, l.Acquire(writer, Exclusive))

	const readers = 4
	var wg sync.WaitGroup
	errs := make([]error, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = l.Acquire(transaction.NewTransactionID(), Shared)
		}(i)
	}

	time.Sleep(100 * time.Millisecond)
	l.Release(writer)
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "reader %d", i)
	}
	assert.Equal(t, readers, l.HolderCount())
}

func TestWriterPreferredOverReaders(t *testing.T) {
	l := NewPageLatch()
	holder := transaction.NewTransactionID()
	require.NoError(t, l.Acquire(holder, Exclusive))

	writer := transaction.NewTransactionID()
	reader := transaction.NewTransactionID()

	readerDone := make(chan error, 1)
	writerDone := make(chan error, 1)

	go func() { readerDone <- l.Acquire(reader, Shared) }()
	time.Sleep(50 * time.Millisecond)
	go func() { writerDone <- l.Acquire(writer, Exclusive) }()
	time.Sleep(50 * time.Millisecond)

	l.Release(holder)

	// The writer must be granted first even though the reader arrived
	// earlier.
	select {
	case err := <-writerDone:
		require.NoError(t, err)
		assert.True(t, l.HoldsExclusive(writer))
	case <-time.After(2 * time.Second):
		t.Fatal("writer was not preferred")
	}

	l.Release(writer)
	select {
	case err := <-readerDone:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("reader never granted")
	}
}

func TestUpgradeSoleHolder(t *testing.T) {
	l := NewPageLatch()
	tid := transaction.NewTransactionID()

	require.NoError(t, l.Acquire(tid, Shared))
	require.NoError(t, l.Acquire(tid, Exclusive))

	assert.True(t, l.HoldsExclusive(tid))
	assert.Equal(t, 1, l.HolderCount())
}

func TestUpgradeWaitsForOtherReaders(t *testing.T) {
	l := NewPageLatch()
	t1 := transaction.NewTransactionID()
	t2 := transaction.NewTransactionID()

	require.NoError(t, l.Acquire(t1, Shared))
	require.NoError(t, l.Acquire(t2, Shared))

	upgraded := make(chan error, 1)
	go func() { upgraded <- l.Acquire(t1, Exclusive) }()

	time.Sleep(50 * time.Millisecond)
	select {
	case <-upgraded:
		t.Fatal("upgrade should block while another reader holds the latch")
	default:
	}

	l.Release(t2)
	select {
	case err := <-upgraded:
		require.NoError(t, err)
		assert.True(t, l.HoldsExclusive(t1))
	case <-time.After(2 * time.Second):
		t.Fatal("upgrade never completed")
	}
}

func TestReleaseWhenNotHeldIsNoop(t *testing.T) {
	l := NewPageLatch()
	l.Release(transaction.NewTransactionID())
	assert.Equal(t, 0, l.HolderCount())
}

func TestTwoPhaseCompatibilityInvariant(t *testing.T) {
	SetWaitWindowForTest(20*time.Millisecond, 20*time.Millisecond)
	defer ResetWaitWindow()

	l := NewPageLatch()

	// Hammer the latch from many goroutines; whenever a writer holds it,
	// it must be alone.
	var mu sync.Mutex
	violations := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tid := transaction.NewTransactionID()
			mode := Shared
			if i%2 == 0 {
				mode = Exclusive
			}

			for j := 0; j < 20; j++ {
				if err := l.Acquire(tid, mode); err != nil {
					continue
				}
				if mode == Exclusive && l.HolderCount() != 1 {
					mu.Lock()
					violations++
					mu.Unlock()
				}
				l.Release(tid)
			}
		}(i)
	}
	wg.Wait()

	assert.Zero(t, violations)
}
