package registers

import (
	"fmt"
	"os"
	"unsafe"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/golang/glog"
)

const (
	// MemFile is the default physical-memory device node.
	MemFile = "/dev/mem"

	pageSize = 4096
)

// DevMem is a Block backed by a physical-memory mapping of one peripheral.
// The mapping is page-aligned; bufOffs carries the peripheral base's offset
// into the first mapped page.
type DevMem struct {
	buf     mmap.MMap
	bufOffs uintptr
}

// MapDevMem maps size bytes of physical memory starting at the peripheral
// base physAddr, via the given memory device node (normally MemFile).
func MapDevMem(memFile string, physAddr uintptr, size int) (*DevMem, error) {
	f, err := os.OpenFile(memFile, os.O_RDWR|os.O_SYNC, os.ModePerm)
	if err != nil {
		return nil, fmt.Errorf("couldn't open %s: %v", memFile, err)
	}

	pagemask := ^uintptr(pageSize - 1)
	mapAddr := physAddr & pagemask
	size += int(physAddr - mapAddr)
	glog.V(2).Infof("MapRegion(f, %d, RDWR, 0, %08X), physAddr %08X", size, int64(mapAddr), physAddr)
	mm, err := mmap.MapRegion(f, size, mmap.RDWR, 0, int64(mapAddr))
	f.Close() // Ignore error
	if err != nil {
		return nil, fmt.Errorf("couldn't map region (%v, %v): %v", physAddr, size, err)
	}

	return &DevMem{
		buf:     mm,
		bufOffs: physAddr & (pageSize - 1),
	}, nil
}

// Read returns the 32-bit register at byte offset off.
func (d *DevMem) Read(off uint32) uint32 {
	return *(*uint32)(unsafe.Pointer(&d.buf[d.bufOffs+uintptr(off)]))
}

// Write stores val to the 32-bit register at byte offset off.
func (d *DevMem) Write(off, val uint32) {
	*(*uint32)(unsafe.Pointer(&d.buf[d.bufOffs+uintptr(off)])) = val
}

// Close unmaps the peripheral window.
func (d *DevMem) Close() error {
	return d.buf.Unmap()
}
