package page

import (
	"hash/fnv"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// BaseFile provides the raw paged I/O shared by file types: thread-safe
// page reads and writes at pageNo * Size() offsets, page counting, and a
// stable id derived from the canonical file path.
type BaseFile struct {
	mu       sync.RWMutex
	file     *os.File
	fileID   int
	filePath string
}

// NewBaseFile opens (creating if needed) the file at path for read-write.
func NewBaseFile(path string) (*BaseFile, error) {
	if path == "" {
		return nil, errors.New("file path cannot be empty")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve path %s", path)
	}

	file, err := os.OpenFile(abs, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file %s", abs)
	}

	return &BaseFile{
		file:     file,
		fileID:   hashPath(abs),
		filePath: abs,
	}, nil
}

// ID returns the identifier derived from the canonical file path. Two
// BaseFiles over the same path report the same id.
func (bf *BaseFile) ID() int {
	return bf.fileID
}

// FilePath returns the canonical path of the underlying file.
func (bf *BaseFile) FilePath() string {
	return bf.filePath
}

// NumPages returns the page count of the file, rounding a trailing partial
// page up. An empty file has 0 pages.
func (bf *BaseFile) NumPages() (int, error) {
	bf.mu.RLock()
	defer bf.mu.RUnlock()

	if bf.file == nil {
		return 0, errors.New("file is closed")
	}

	info, err := bf.file.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "failed to stat file")
	}

	size := Size()
	numPages := int(info.Size()) / size
	if int(info.Size())%size != 0 {
		numPages++
	}
	return numPages, nil
}

// ReadPageData reads exactly one page at index pageNo. It fails if the page
// offset lies at or past the end of the file.
func (bf *BaseFile) ReadPageData(pageNo int) ([]byte, error) {
	bf.mu.RLock()
	defer bf.mu.RUnlock()

	if bf.file == nil {
		return nil, errors.New("file is closed")
	}

	info, err := bf.file.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat file")
	}

	offset := int64(pageNo) * int64(Size())
	if pageNo < 0 || offset >= info.Size() {
		return nil, errors.Errorf("page %d is out of bounds for file of %d bytes", pageNo, info.Size())
	}

	data := make([]byte, Size())
	if _, err := bf.file.ReadAt(data, offset); err != nil {
		return nil, errors.Wrapf(err, "failed to read page %d", pageNo)
	}
	return data, nil
}

// WritePageData writes exactly one page at index pageNo and syncs the file.
func (bf *BaseFile) WritePageData(pageNo int, data []byte) error {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	if bf.file == nil {
		return errors.New("file is closed")
	}
	if len(data) != Size() {
		return errors.Errorf("invalid page data size: expected %d, got %d", Size(), len(data))
	}

	offset := int64(pageNo) * int64(Size())
	if _, err := bf.file.WriteAt(data, offset); err != nil {
		return errors.Wrapf(err, "failed to write page %d", pageNo)
	}
	if err := bf.file.Sync(); err != nil {
		return errors.Wrap(err, "failed to sync file")
	}
	return nil
}

// AppendBlankPage extends the file by one zero-filled page and returns the
// new page's index. The write and the size change are atomic under the
// file's lock, so concurrent inserters cannot claim the same page number.
func (bf *BaseFile) AppendBlankPage() (int, error) {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	if bf.file == nil {
		return 0, errors.New("file is closed")
	}

	info, err := bf.file.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "failed to stat file")
	}

	size := Size()
	pageNo := int(info.Size()) / size
	if int(info.Size())%size != 0 {
		pageNo++
	}

	blank := make([]byte, size)
	if _, err := bf.file.WriteAt(blank, int64(pageNo)*int64(size)); err != nil {
		return 0, errors.Wrapf(err, "failed to append page %d", pageNo)
	}
	if err := bf.file.Sync(); err != nil {
		return 0, errors.Wrap(err, "failed to sync file")
	}
	return pageNo, nil
}

// Close closes the underlying file handle. Closing twice is a no-op.
func (bf *BaseFile) Close() error {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	if bf.file == nil {
		return nil
	}
	err := bf.file.Close()
	bf.file = nil
	return err
}

func hashPath(path string) int {
	h := fnv.New32a()
	h.Write([]byte(path))
	return int(int32(h.Sum32()))
}
