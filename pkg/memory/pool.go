// Package memory implements the buffer pool: a bounded in-memory cache of
// pages that is the single choke point for all page access. Each cached
// page is paired with its latch; fetching a page grants the requested lock,
// and locks are held until the owning transaction commits or aborts
// (strict two-phase locking).
//
// The pool runs a NO STEAL / FORCE discipline: dirty pages of in-flight
// transactions are never evicted or written back, committed transactions
// force all their dirty pages to disk, and aborts simply drop the dirty
// pages so the authoritative on-disk copy wins.
package memory

import (
	"sync"

	"github.com/pkg/errors"

	"heapdb/pkg/concurrency/lock"
	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/storage/page"
	"heapdb/pkg/tuple"
)

// DefaultMaxPages is the pool capacity used when callers have no reason to
// pick another.
const DefaultMaxPages = 50

// ErrAllPagesDirty is returned when eviction is required but every cached
// page is dirty. Under NO STEAL there is no graceful recovery: some
// transaction has to commit or abort first.
var ErrAllPagesDirty = errors.New("all pages in buffer pool are dirty")

// DbFileResolver maps a table id to the file backing it. The catalog
// implements it.
type DbFileResolver interface {
	GetDbFile(tableID int) (page.DbFile, error)
}

// pageKey is the structural identity of a page, used as the cache key so
// that equal page ids always hit the same entry.
type pageKey struct {
	tableID int
	pageNo  int
}

func keyOf(pid tuple.PageID) pageKey {
	return pageKey{tableID: pid.TableID(), pageNo: pid.PageNo()}
}

// entry owns one cached page together with its latch. The latch lives
// exactly as long as the entry; external callers only ever see the page as
// a borrowed reference.
type entry struct {
	latch *lock.PageLatch
	page  page.Page
}

// BufferPool caches up to maxPages pages with LRU replacement.
//
// Lock order: the pool's own monitor serializes structural mutation (map
// and LRU changes) and is always released before blocking on a page latch,
// so a stalled lock acquisition never wedges the whole pool.
type BufferPool struct {
	mu       sync.Mutex
	entries  map[pageKey]*entry
	lru      *lruList
	maxPages int
	resolver DbFileResolver
}

// NewBufferPool creates a pool caching up to maxPages pages, resolving
// table files through resolver on cache misses.
func NewBufferPool(maxPages int, resolver DbFileResolver) *BufferPool {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	return &BufferPool{
		entries:  make(map[pageKey]*entry),
		lru:      newLRUList(),
		maxPages: maxPages,
		resolver: resolver,
	}
}

// GetPage returns the identified page after granting tid the lock implied
// by perm (ReadOnly → shared, ReadWrite → exclusive). On a miss the page is
// read from its table's file, first evicting a clean page (chosen as
// evictOneLocked describes) if the pool is full. The call blocks while the lock conflicts with
// other holders and returns *lock.TransactionAbortedError if the wait times
// out; the pool itself stays consistent in that case and the caller is
// expected to abort the transaction.
func (bp *BufferPool) GetPage(tid *transaction.TransactionID, pid tuple.PageID, perm transaction.Permissions) (page.Page, error) {
	key := keyOf(pid)

	mode := lock.Shared
	if perm == transaction.ReadWrite {
		mode = lock.Exclusive
	}

	for {
		bp.mu.Lock()
		e, exists := bp.entries[key]
		if !exists {
			if len(bp.entries) >= bp.maxPages {
				if err := bp.evictOneLocked(); err != nil {
					bp.mu.Unlock()
					return nil, err
				}
			}

			loaded, err := bp.loadPageLocked(pid)
			if err != nil {
				bp.mu.Unlock()
				return nil, err
			}
			e = &entry{latch: lock.NewPageLatch(), page: loaded}
			bp.entries[key] = e
		}
		bp.lru.PushFront(key)
		bp.mu.Unlock()

		if err := e.latch.Acquire(tid, mode); err != nil {
			return nil, err
		}

		// The entry can be evicted or replaced while we were blocked on the
		// latch; in that case drop the stale lock and start over.
		bp.mu.Lock()
		current, ok := bp.entries[key]
		if ok && current == e {
			bp.mu.Unlock()
			return e.page, nil
		}
		bp.mu.Unlock()
		e.latch.Release(tid)
	}
}

// ReleasePage releases tid's lock on the page. Risky outside of
// transaction completion: early release breaks two-phase locking.
func (bp *BufferPool) ReleasePage(tid *transaction.TransactionID, pid tuple.PageID) {
	bp.mu.Lock()
	e, exists := bp.entries[keyOf(pid)]
	bp.mu.Unlock()

	if exists {
		e.latch.Release(tid)
	}
}

// HoldsLock reports whether tid holds a lock on the page.
func (bp *BufferPool) HoldsLock(tid *transaction.TransactionID, pid tuple.PageID) bool {
	bp.mu.Lock()
	e, exists := bp.entries[keyOf(pid)]
	bp.mu.Unlock()

	return exists && e.latch.Holds(tid)
}

// TransactionComplete ends tid. On commit every page the transaction holds
// is flushed (dirty contents forced to disk, marker cleared, page kept
// cached); on abort every page the transaction dirtied is discarded without
// writing, which rolls the changes back because the on-disk copy is
// untouched. Either way all of tid's locks are then released.
func (bp *BufferPool) TransactionComplete(tid *transaction.TransactionID, commit bool) error {
	held := bp.snapshotHeldBy(tid)

	var firstErr error
	for _, he := range held {
		if commit {
			if err := bp.flushEntry(he.key, he.e); err != nil && firstErr == nil {
				firstErr = err
			}
		} else if dirtier := he.e.page.IsDirty(); dirtier != nil && dirtier.Equals(tid) {
			bp.discardEntry(he.key, he.e)
		}
	}

	for _, he := range held {
		he.e.latch.Release(tid)
	}
	return firstErr
}

// InsertTuple adds t to the identified table on behalf of tid. The file
// performs the structural change (acquiring write locks through this pool)
// and reports the dirtied pages, which are marked dirty with tid and kept
// cached.
func (bp *BufferPool) InsertTuple(tid *transaction.TransactionID, tableID int, t *tuple.Tuple) error {
	dbFile, err := bp.resolver.GetDbFile(tableID)
	if err != nil {
		return errors.Wrapf(err, "table %d not found", tableID)
	}

	dirtied, err := dbFile.InsertTuple(tid, t)
	if err != nil {
		return err
	}
	return bp.adoptDirtyPages(tid, dirtied)
}

// DeleteTuple removes t from its table on behalf of tid. The table is
// resolved from the tuple's record id.
func (bp *BufferPool) DeleteTuple(tid *transaction.TransactionID, t *tuple.Tuple) error {
	if t == nil {
		return errors.New("tuple cannot be nil")
	}
	if t.RecordID == nil {
		return errors.New("tuple has no record id")
	}

	tableID := t.RecordID.PID.TableID()
	dbFile, err := bp.resolver.GetDbFile(tableID)
	if err != nil {
		return errors.Wrapf(err, "table %d not found", tableID)
	}

	dirtied, err := dbFile.DeleteTuple(tid, t)
	if err != nil {
		return err
	}
	return bp.adoptDirtyPages(tid, dirtied)
}

// UpdateTuple replaces oldTuple with newTuple in place of a dedicated
// update path: delete, then insert into the same table.
func (bp *BufferPool) UpdateTuple(tid *transaction.TransactionID, oldTuple, newTuple *tuple.Tuple) error {
	if oldTuple == nil || oldTuple.RecordID == nil {
		return errors.New("old tuple must be stored")
	}

	tableID := oldTuple.RecordID.PID.TableID()
	if err := bp.DeleteTuple(tid, oldTuple); err != nil {
		return errors.Wrap(err, "failed to delete old tuple")
	}
	if err := bp.InsertTuple(tid, tableID, newTuple); err != nil {
		return errors.Wrap(err, "failed to insert updated tuple")
	}
	return nil
}

// FlushPage writes the page's dirty contents to its file and clears the
// dirty marker. The page stays cached; only eviction and DiscardPage remove
// entries. Flushing a clean or uncached page is a no-op.
func (bp *BufferPool) FlushPage(pid tuple.PageID) error {
	key := keyOf(pid)

	bp.mu.Lock()
	e, exists := bp.entries[key]
	bp.mu.Unlock()

	if !exists {
		return nil
	}
	return bp.flushEntry(key, e)
}

// FlushAllPages flushes every cached page.
func (bp *BufferPool) FlushAllPages() error {
	for _, he := range bp.snapshotAll() {
		if err := bp.flushEntry(he.key, he.e); err != nil {
			return err
		}
	}
	return nil
}

// FlushPages flushes every cached page on which tid holds a lock.
func (bp *BufferPool) FlushPages(tid *transaction.TransactionID) error {
	for _, he := range bp.snapshotHeldBy(tid) {
		if err := bp.flushEntry(he.key, he.e); err != nil {
			return err
		}
	}
	return nil
}

// DiscardPage drops the page from the cache without writing it.
func (bp *BufferPool) DiscardPage(pid tuple.PageID) {
	key := keyOf(pid)

	bp.mu.Lock()
	defer bp.mu.Unlock()

	if _, exists := bp.entries[key]; exists {
		delete(bp.entries, key)
		bp.lru.Remove(key)
	}
}

// NumCachedPages returns the current number of cached pages.
func (bp *BufferPool) NumCachedPages() int {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return len(bp.entries)
}

// loadPageLocked reads pid from its table's file. Callers hold bp.mu.
func (bp *BufferPool) loadPageLocked(pid tuple.PageID) (page.Page, error) {
	dbFile, err := bp.resolver.GetDbFile(pid.TableID())
	if err != nil {
		return nil, errors.Wrapf(err, "table %d not found", pid.TableID())
	}

	pg, err := dbFile.ReadPage(pid)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read page %v", pid)
	}
	return pg, nil
}

// evictOneLocked removes one clean page, walking the LRU list from least
// toward most recently used. Dirty pages are never evicted (NO STEAL);
// among clean pages, ones nobody has latched are preferred. With no clean
// page at all the pool is stuck and ErrAllPagesDirty is returned. Callers
// hold bp.mu.
func (bp *BufferPool) evictOneLocked() error {
	var fallback *pageKey

	for _, key := range bp.lru.KeysOldestFirst() {
		e := bp.entries[key]
		if e.page.IsDirty() != nil {
			continue
		}
		if e.latch.HolderCount() == 0 {
			delete(bp.entries, key)
			bp.lru.Remove(key)
			return nil
		}
		if fallback == nil {
			k := key
			fallback = &k
		}
	}

	if fallback != nil {
		delete(bp.entries, *fallback)
		bp.lru.Remove(*fallback)
		return nil
	}
	return errors.WithStack(ErrAllPagesDirty)
}

// adoptDirtyPages marks pages dirtied by a structural change and reinstalls
// them in the cache, recreating the exclusive lock record when the file
// bypassed this pool.
func (bp *BufferPool) adoptDirtyPages(tid *transaction.TransactionID, pages []page.Page) error {
	for _, pg := range pages {
		pg.MarkDirty(true, tid)
		key := keyOf(pg.ID())

		bp.mu.Lock()
		e, exists := bp.entries[key]
		if exists {
			e.page = pg
		} else {
			if len(bp.entries) >= bp.maxPages {
				if err := bp.evictOneLocked(); err != nil {
					bp.mu.Unlock()
					return err
				}
			}
			e = &entry{latch: lock.NewPageLatch(), page: pg}
			bp.entries[key] = e
		}
		bp.lru.PushFront(key)
		bp.mu.Unlock()

		if !e.latch.HoldsExclusive(tid) {
			if err := e.latch.Acquire(tid, lock.Exclusive); err != nil {
				return err
			}
		}
	}
	return nil
}

// flushEntry writes the entry's page if dirty and clears the marker. The
// entry stays cached.
func (bp *BufferPool) flushEntry(key pageKey, e *entry) error {
	dirtier := e.page.IsDirty()
	if dirtier == nil {
		return nil
	}

	dbFile, err := bp.resolver.GetDbFile(key.tableID)
	if err != nil {
		return errors.Wrapf(err, "table %d not found for flush", key.tableID)
	}
	if err := dbFile.WritePage(e.page); err != nil {
		return errors.Wrapf(err, "failed to flush page %v", e.page.ID())
	}

	e.page.MarkDirty(false, nil)
	return nil
}

// discardEntry removes the entry if it is still the cached one for key.
func (bp *BufferPool) discardEntry(key pageKey, e *entry) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if current, exists := bp.entries[key]; exists && current == e {
		delete(bp.entries, key)
		bp.lru.Remove(key)
	}
}

type heldEntry struct {
	key pageKey
	e   *entry
}

func (bp *BufferPool) snapshotAll() []heldEntry {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	all := make([]heldEntry, 0, len(bp.entries))
	for key, e := range bp.entries {
		all = append(all, heldEntry{key: key, e: e})
	}
	return all
}

func (bp *BufferPool) snapshotHeldBy(tid *transaction.TransactionID) []heldEntry {
	var held []heldEntry
	for _, he := range bp.snapshotAll() {
		if he.e.latch.Holds(tid) {
			held = append(held, he)
		}
	}
	return held
}
