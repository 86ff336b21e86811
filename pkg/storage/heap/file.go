package heap

import (
	"github.com/pkg/errors"

	"heapdb/pkg/concurrency/transaction"
	"heapdb/pkg/iterator"
	"heapdb/pkg/storage/page"
	"heapdb/pkg/tuple"
)

// HeapFile stores one table as a flat file of heap pages. It implements
// page.DbFile. All tuple-level mutation and iteration acquires pages
// through the buffer pool (the page.PageFetcher handed in at construction),
// so locking and caching apply uniformly. Besides the blank page that
// InsertTuple appends when the file grows, only ReadPage and WritePage touch
// the disk directly, and those are called by the pool itself.
type HeapFile struct {
	*page.BaseFile
	tupleDesc *tuple.TupleDescription
	fetcher   page.PageFetcher
}

// NewHeapFile opens (creating if needed) the heap file at path with the
// given fixed schema. fetcher is the buffer pool all page access goes
// through.
func NewHeapFile(path string, td *tuple.TupleDescription, fetcher page.PageFetcher) (*HeapFile, error) {
	if td == nil {
		return nil, errors.New("tuple description cannot be nil")
	}

	baseFile, err := page.NewBaseFile(path)
	if err != nil {
		return nil, err
	}

	return &HeapFile{
		BaseFile:  baseFile,
		tupleDesc: td,
		fetcher:   fetcher,
	}, nil
}

// TupleDesc returns the schema of tuples stored in this file.
func (hf *HeapFile) TupleDesc() *tuple.TupleDescription {
	return hf.tupleDesc
}

// ReadPage reads the identified page from disk. It fails if the page index
// lies past the end of the file.
func (hf *HeapFile) ReadPage(pid tuple.PageID) (page.Page, error) {
	heapPID, err := hf.checkPageID(pid)
	if err != nil {
		return nil, err
	}

	data, err := hf.ReadPageData(heapPID.PageNo())
	if err != nil {
		return nil, err
	}
	return NewHeapPage(heapPID, data, hf.tupleDesc)
}

// WritePage writes p back to its slot in the file.
func (hf *HeapFile) WritePage(p page.Page) error {
	if p == nil {
		return errors.New("page cannot be nil")
	}
	return hf.WritePageData(p.ID().PageNo(), p.PageData())
}

// InsertTuple adds t on behalf of tid. The last page is tried first; when
// it is full (or the file is empty) the file grows by one blank page and
// the insert lands there. The target page is fetched through the buffer
// pool with write permission and returned dirtied.
func (hf *HeapFile) InsertTuple(tid *transaction.TransactionID, t *tuple.Tuple) ([]page.Page, error) {
	numPages, err := hf.NumPages()
	if err != nil {
		return nil, err
	}

	if numPages > 0 {
		pg, err := hf.fetchHeapPage(tid, numPages-1, transaction.ReadWrite)
		if err != nil {
			return nil, err
		}
		if pg.NumEmptySlots() > 0 {
			if err := pg.AddTuple(t); err != nil {
				return nil, err
			}
			return []page.Page{pg}, nil
		}
	}

	newPageNo, err := hf.AppendBlankPage()
	if err != nil {
		return nil, errors.Wrap(err, "failed to extend heap file")
	}

	pg, err := hf.fetchHeapPage(tid, newPageNo, transaction.ReadWrite)
	if err != nil {
		return nil, err
	}
	if err := pg.AddTuple(t); err != nil {
		return nil, err
	}
	return []page.Page{pg}, nil
}

// DeleteTuple removes t, located by its record id, on behalf of tid. The
// containing page is fetched through the buffer pool with write permission
// and returned dirtied.
func (hf *HeapFile) DeleteTuple(tid *transaction.TransactionID, t *tuple.Tuple) ([]page.Page, error) {
	if t == nil {
		return nil, errors.New("tuple cannot be nil")
	}
	if t.RecordID == nil {
		return nil, errors.New("tuple has no record id")
	}

	heapPID, err := hf.checkPageID(t.RecordID.PID)
	if err != nil {
		return nil, err
	}

	pg, err := hf.fetchHeapPage(tid, heapPID.PageNo(), transaction.ReadWrite)
	if err != nil {
		return nil, err
	}
	if err := pg.DeleteTuple(t); err != nil {
		return nil, err
	}
	return []page.Page{pg}, nil
}

// Iterator returns an iterator over every tuple in the file in page-index,
// then in-page slot order, under tid with read permission.
func (hf *HeapFile) Iterator(tid *transaction.TransactionID) iterator.DbFileIterator {
	return newFileIterator(hf, tid)
}

func (hf *HeapFile) fetchHeapPage(tid *transaction.TransactionID, pageNo int, perm transaction.Permissions) (*HeapPage, error) {
	pg, err := hf.fetcher.GetPage(tid, NewPageID(hf.ID(), pageNo), perm)
	if err != nil {
		return nil, err
	}

	heapPage, ok := pg.(*HeapPage)
	if !ok {
		return nil, errors.Errorf("page %d of table %d is not a heap page", pageNo, hf.ID())
	}
	return heapPage, nil
}

func (hf *HeapFile) checkPageID(pid tuple.PageID) (PageID, error) {
	if pid == nil {
		return PageID{}, errors.New("page id cannot be nil")
	}

	heapPID, ok := pid.(PageID)
	if !ok {
		return PageID{}, errors.Errorf("invalid page id type %T for heap file", pid)
	}
	if heapPID.TableID() != hf.ID() {
		return PageID{}, errors.Errorf("page %v does not belong to table %d", pid, hf.ID())
	}
	return heapPID, nil
}
