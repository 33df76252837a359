// Package memory provides the fixed-block allocator the engine uses for
// display buffers, sheets and sprite data. Two pools exist: the chip pool,
// which lives in ChipRAM and is visible to the blitter and the display, and
// the default pool for CPU-only data.
package memory

import (
	"errors"
	"fmt"
	"log/slog"
)

// PoolKind selects the pool an allocation comes from.
type PoolKind uint8

const (
	Default PoolKind = iota
	Chip
)

func (k PoolKind) String() string {
	switch k {
	case Default:
		return "default"
	case Chip:
		return "chip"
	default:
		return fmt.Sprintf("PoolKind(%d)", uint8(k))
	}
}

// Handle names an allocated block. The upper byte carries the pool kind.
type Handle int32

// InvalidHandle is never returned by a successful allocation.
const InvalidHandle Handle = -1

const kindShift = 24

func makeHandle(kind PoolKind, index int) Handle {
	return Handle(int32(kind)<<kindShift | int32(index))
}

func (h Handle) kind() PoolKind {
	return PoolKind(h >> kindShift)
}

func (h Handle) index() int {
	return int(h & (1<<kindShift - 1))
}

var (
	// ErrOutOfMemory is returned when a pool has no room left for a block.
	ErrOutOfMemory = errors.New("out of memory")
	// ErrNoBlocks is returned when a pool's block table is full.
	ErrNoBlocks = errors.New("block table full")
)

// Allocator is the memory collaborator consumed by the display and the
// resource loaders.
type Allocator interface {
	AllocateBlock(kind PoolKind, size int) (Handle, error)
	BlockAddress(h Handle) uint32
	FreeBlock(h Handle)
}

// Config sizes the two pools.
type Config struct {
	GeneralPoolSize  int
	GeneralMaxBlocks int
	ChipPoolSize     int
	ChipMaxBlocks    int
}

// DefaultConfig returns pool sizes that fit a two playfield, double
// buffered, depth 5 display plus sheets.
func DefaultConfig() Config {
	return Config{
		GeneralPoolSize:  256 * 1024,
		GeneralMaxBlocks: 64,
		ChipPoolSize:     ChipRAMSize - ChipBase,
		ChipMaxBlocks:    128,
	}
}

type block struct {
	offset int
	size   int
	used   bool
}

type pool struct {
	kind   PoolKind
	base   uint32
	size   int
	top    int
	blocks []block
	max    int
}

func (p *pool) allocate(size int) (int, error) {
	size = (size + 1) &^ 1

	// first fit over released blocks
	for i := range p.blocks {
		b := &p.blocks[i]
		if !b.used && b.size >= size {
			b.used = true
			return i, nil
		}
	}

	if len(p.blocks) >= p.max {
		return 0, fmt.Errorf("%s pool, %d blocks: %w", p.kind, p.max, ErrNoBlocks)
	}
	if p.top+size > p.size {
		return 0, fmt.Errorf("%s pool, %d bytes requested, %d free: %w", p.kind, size, p.size-p.top, ErrOutOfMemory)
	}

	p.blocks = append(p.blocks, block{offset: p.top, size: size, used: true})
	p.top += size
	return len(p.blocks) - 1, nil
}

func (p *pool) lookup(index int) *block {
	if index < 0 || index >= len(p.blocks) || !p.blocks[index].used {
		panic(fmt.Sprintf("memory: invalid %s handle %d", p.kind, index))
	}
	return &p.blocks[index]
}

// Pools is the concrete Allocator backed by ChipRAM and a general arena.
type Pools struct {
	chipRAM *ChipRAM
	general []byte
	pools   [2]pool
}

// New creates both pools. The chip pool starts at ChipBase inside a fresh
// ChipRAM.
func New(cfg Config) (*Pools, error) {
	if cfg.ChipPoolSize <= 0 || cfg.ChipPoolSize > ChipRAMSize-ChipBase {
		return nil, fmt.Errorf("chip pool size %d out of range (1..%d): %w", cfg.ChipPoolSize, ChipRAMSize-ChipBase, ErrOutOfMemory)
	}
	if cfg.GeneralPoolSize < 0 {
		return nil, fmt.Errorf("general pool size %d: %w", cfg.GeneralPoolSize, ErrOutOfMemory)
	}

	p := &Pools{
		chipRAM: NewChipRAM(ChipBase + cfg.ChipPoolSize),
		general: make([]byte, cfg.GeneralPoolSize),
	}
	p.pools[Default] = pool{kind: Default, size: cfg.GeneralPoolSize, max: cfg.GeneralMaxBlocks}
	p.pools[Chip] = pool{kind: Chip, base: ChipBase, size: cfg.ChipPoolSize, max: cfg.ChipMaxBlocks}

	slog.Debug("Memory pools ready",
		"chip_bytes", cfg.ChipPoolSize, "chip_blocks", cfg.ChipMaxBlocks,
		"general_bytes", cfg.GeneralPoolSize, "general_blocks", cfg.GeneralMaxBlocks)
	return p, nil
}

// ChipRAM returns the chip memory the chip pool allocates from.
func (p *Pools) ChipRAM() *ChipRAM {
	return p.chipRAM
}

func (p *Pools) pool(kind PoolKind) *pool {
	if int(kind) >= len(p.pools) {
		panic(fmt.Sprintf("memory: unknown pool %s", kind))
	}
	return &p.pools[kind]
}

// AllocateBlock reserves size bytes in the given pool. Freed blocks are
// reused first-fit before the pool grows.
func (p *Pools) AllocateBlock(kind PoolKind, size int) (Handle, error) {
	if size <= 0 {
		return InvalidHandle, fmt.Errorf("allocate %d bytes: %w", size, ErrOutOfMemory)
	}
	pl := p.pool(kind)
	index, err := pl.allocate(size)
	if err != nil {
		return InvalidHandle, err
	}
	h := makeHandle(kind, index)
	slog.Debug("Allocated block", "pool", kind, "handle", h, "size", size, "addr", fmt.Sprintf("%06x", p.BlockAddress(h)))
	return h, nil
}

// BlockAddress returns the address of the block. Chip addresses are chip
// RAM addresses, default pool addresses are offsets into the general arena.
// It panics on a handle that does not name a live block.
func (p *Pools) BlockAddress(h Handle) uint32 {
	pl := p.pool(h.kind())
	b := pl.lookup(h.index())
	return pl.base + uint32(b.offset)
}

// Bytes returns the backing bytes of a live block.
func (p *Pools) Bytes(h Handle) []byte {
	pl := p.pool(h.kind())
	b := pl.lookup(h.index())
	if h.kind() == Chip {
		return p.chipRAM.Slice(pl.base+uint32(b.offset), b.size)
	}
	return p.general[b.offset : b.offset+b.size]
}

// FreeBlock releases a block for reuse. Freeing InvalidHandle is a no-op.
func (p *Pools) FreeBlock(h Handle) {
	if h == InvalidHandle {
		return
	}
	pl := p.pool(h.kind())
	b := pl.lookup(h.index())
	b.used = false
	slog.Debug("Freed block", "pool", h.kind(), "handle", h)
}

// InUse returns the number of live blocks in a pool.
func (p *Pools) InUse(kind PoolKind) int {
	n := 0
	for _, b := range p.pool(kind).blocks {
		if b.used {
			n++
		}
	}
	return n
}
