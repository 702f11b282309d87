package mm

// Flags is the PTE permission/attribute bitset. Bit positions match the real
// Sv39 PTE layout (V,R,W,X,U,G,A,D from bit 0) so EncodePTE can pack them
// directly below the PPN field without any further translation.
type Flags uint16

// Individual PTE flag bits, in Sv39 bit order.
const (
	FlagV Flags = 1 << iota
	FlagR
	FlagW
	FlagX
	FlagU
	FlagG
	FlagA
	FlagD
)

// PageMode describes a paging scheme: its geometry (frame size, levels,
// index width per level) and how to pack/unpack a page table entry.
// PagedAddrSpace is written against this interface rather than Sv39's
// constants directly, so a narrower or wider scheme could be added later
// without touching the walker.
type PageMode interface {
	// FrameSizeBits is log2 of the frame size in bytes.
	FrameSizeBits() uint
	// Levels is the number of page table levels, leaf inclusive.
	Levels() int
	// IndexBits is the number of VPN bits consumed per level.
	IndexBits() uint
	// SatpMode is the value placed in satp's MODE field to select this
	// scheme.
	SatpMode() uint64
	// EncodePTE packs ppn and flags into a raw page table entry.
	EncodePTE(ppn PhysPageNum, flags Flags) uint64
	// DecodePTE is EncodePTE's inverse.
	DecodePTE(pte uint64) (PhysPageNum, Flags)
}

// Sv39 is RISC-V's 39-bit virtual address, three-level paging mode. It is
// the only PageMode this kernel instantiates.
type Sv39 struct{}

const (
	sv39FrameSizeBits = 12
	sv39Levels        = 3
	sv39IndexBits     = 9
	sv39SatpMode      = 8
	sv39PPNShift      = 10
	sv39FlagsMask     = (1 << sv39PPNShift) - 1
)

// FrameSizeBits returns 12: Sv39 frames are 4 KiB.
func (Sv39) FrameSizeBits() uint { return sv39FrameSizeBits }

// Levels returns 3.
func (Sv39) Levels() int { return sv39Levels }

// IndexBits returns 9: each level indexes 512 entries.
func (Sv39) IndexBits() uint { return sv39IndexBits }

// SatpMode returns 8, the Sv39 MODE encoding.
func (Sv39) SatpMode() uint64 { return sv39SatpMode }

// EncodePTE packs ppn and flags as PPN[55:10] | flags[9:0].
func (Sv39) EncodePTE(ppn PhysPageNum, flags Flags) uint64 {
	return (uint64(ppn) << sv39PPNShift) | uint64(flags)
}

// DecodePTE is EncodePTE's inverse.
func (Sv39) DecodePTE(pte uint64) (PhysPageNum, Flags) {
	return PhysPageNum(pte >> sv39PPNShift), Flags(pte & sv39FlagsMask)
}

// vpnIndex returns the index into the page table at the given level (0 is
// the leaf level) for vpn under mode m.
func vpnIndex(m PageMode, vpn VirtPageNum, level int) uint64 {
	bits := m.IndexBits()
	mask := (uint64(1) << bits) - 1
	return (uint64(vpn) >> (uint(level) * bits)) & mask
}
