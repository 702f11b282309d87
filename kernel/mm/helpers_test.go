package mm_test

import (
	"testing"
	"unsafe"

	"github.com/rv39kernel/rv39os/kernel/mm"
)

// ramPages backs n contiguous physical frames with real, page-aligned Go
// memory so the page-table walker's unsafe pointer arithmetic lands on
// addresses the test process actually owns. The returned buffer must be kept referenced by the caller for as long as the
// address space built from it is in use.
func ramPages(t *testing.T, n int) (buf []byte, from, to mm.PhysPageNum) {
	t.Helper()

	const pageSize = 1 << 12
	buf = make([]byte, (n+1)*pageSize)
	base := (uintptr(unsafe.Pointer(&buf[0])) + pageSize - 1) &^ (pageSize - 1)

	from = mm.PhysAddr(base).PageNumber(mm.Sv39{})
	to = mm.PhysPageNum(uint64(from) + uint64(n))
	return buf, from, to
}
