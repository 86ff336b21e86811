package heap

import (
	"fmt"

	"heapdb/pkg/tuple"
)

// PageID identifies one page of a heap file: the owning table and the page
// index within the file. It is a value type; two ids are equal when both
// components are equal.
type PageID struct {
	tableID int
	pageNo  int
}

func NewPageID(tableID, pageNo int) PageID {
	return PageID{tableID: tableID, pageNo: pageNo}
}

func (pid PageID) TableID() int {
	return pid.tableID
}

func (pid PageID) PageNo() int {
	return pid.pageNo
}

func (pid PageID) Equals(other tuple.PageID) bool {
	otherHeap, ok := other.(PageID)
	if !ok {
		return false
	}
	return pid == otherHeap
}

func (pid PageID) String() string {
	return fmt.Sprintf("PageID(table=%d, page=%d)", pid.tableID, pid.pageNo)
}
