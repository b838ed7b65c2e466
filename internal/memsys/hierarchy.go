// Package memsys implements the three-level memory hierarchy (split
// L1I/L1D, unified L2, per-core DRAM and scratchpad) that backs
// instruction fetch, data load/store, and scratchpad access (spec.md
// §4.2).
package memsys

import (
	"github.com/RohitVenkatMutyala/COA-Project/internal/cache"
)

// Hierarchy owns one L1I and one L1D cache per core, a single L2 cache
// shared by all cores, and one DRAM + scratchpad region per core
// (spec.md §3 MemoryHierarchy, §9 "heap-allocated caches referenced by
// the hierarchy" — modeled here as a single owner holding the caches by
// pointer; cores hold only a non-owning pointer to it). The L1 caches
// are not shared between cores: only L2 sees accesses from every core.
type Hierarchy struct {
	cfg Config

	l1i []*cache.Cache // one per core
	l1d []*cache.Cache // one per core
	l2  *cache.Cache   // unified, shared across cores

	dramBanks []*dram
	spmBanks  []*scratchpad

	MemoryAccesses uint64
	MemoryStalls   uint64
}

// New constructs a Hierarchy for numCores cores. Each core gets its own
// L1I and L1D (so instruction/data streams of different cores never
// collide in the same set), and all cores share one L2, matching
// spec.md §2's "unified L2" plus the per-core fetch/load paths of §4.2.
func New(cfg Config, numCores int) *Hierarchy {
	h := &Hierarchy{
		cfg:       cfg,
		l1i:       make([]*cache.Cache, numCores),
		l1d:       make([]*cache.Cache, numCores),
		l2:        cache.New(cfg.L2Size, cfg.BlockSize, cfg.L2Assoc, cfg.Replacement),
		dramBanks: make([]*dram, numCores),
		spmBanks:  make([]*scratchpad, numCores),
	}
	for c := 0; c < numCores; c++ {
		h.l1i[c] = cache.New(cfg.L1ISize, cfg.BlockSize, cfg.L1IAssoc, cfg.Replacement)
		h.l1d[c] = cache.New(cfg.L1DSize, cfg.BlockSize, cfg.L1DAssoc, cfg.Replacement)
		h.dramBanks[c] = &dram{}
		h.spmBanks[c] = newScratchpad(cfg.SPMSize)
	}
	return h
}

// L1ICache, L1DCache, and L2Cache expose the per-core/shared caches for
// reporting (spec.md §6 Outputs "cache-level hits, misses, miss rate").
func (h *Hierarchy) L1ICache(core int) *cache.Cache { return h.l1i[core] }
func (h *Hierarchy) L1DCache(core int) *cache.Cache { return h.l1d[core] }
func (h *Hierarchy) L2Cache() *cache.Cache          { return h.l2 }

func (h *Hierarchy) blockBase(addr uint64) uint64 {
	blockSize := uint64(h.cfg.BlockSize)
	return (addr / blockSize) * blockSize
}

// fillFromDRAM reads the DRAM block containing addr for the given core
// and installs it in l2 (if provided) and then l1. It returns nothing:
// the caller accounts the L1+L2+memory stall of the additive model in
// spec.md §4.2.
func (h *Hierarchy) fillFromDRAM(core int, addr uint64, l2 *cache.Cache, l1 *cache.Cache, cycle uint64) {
	base := h.blockBase(addr)
	blockWords := l1.BlockWords()
	words := h.dramBanks[core].readBlock(int(base/4), blockWords)
	if l2 != nil {
		l2.Allocate(base, words, cycle)
	}
	l1.Allocate(base, words, cycle)
}

// access performs one read/write through l1 -> l2 -> DRAM, returning the
// accessed word (for reads) and accumulated stall cycles, per the
// additive model in spec.md §4.2.
func (h *Hierarchy) access(core int, l1 *cache.Cache, addr uint64, write bool, writeWord int32, cycle uint64) (word int32, stall int) {
	h.MemoryAccesses++

	if write {
		if hit := l1.Write(addr, writeWord, cycle); hit {
			stall = h.cfg.L1Latency
			h.MemoryStalls += uint64(stall)
			return 0, stall
		}
	} else {
		if w, hit := l1.Read(addr, cycle); hit {
			stall = h.cfg.L1Latency
			h.MemoryStalls += uint64(stall)
			return w, stall
		}
	}

	// L1 miss: consult L2.
	if l2Word, l2Hit := h.l2.Read(addr, cycle); l2Hit {
		stall = h.cfg.L1Latency + h.cfg.L2Latency
		base := h.blockBase(addr)
		if words, ok := h.l2.ReadBlock(addr); ok {
			l1.Allocate(base, words, cycle)
		}
		if write {
			l1.Write(addr, writeWord, cycle)
			h.l2.Write(addr, writeWord, cycle)
		}
		h.MemoryStalls += uint64(stall)
		if write {
			return 0, stall
		}
		return l2Word, stall
	}

	// L1 and L2 both miss: fill from DRAM into both levels.
	stall = h.cfg.L1Latency + h.cfg.L2Latency + h.cfg.MemoryLatency
	h.fillFromDRAM(core, addr, h.l2, l1, cycle)
	h.MemoryStalls += uint64(stall)

	if write {
		l1.Write(addr, writeWord, cycle)
		h.l2.Write(addr, writeWord, cycle)
		return 0, stall
	}
	word, _ = l1.Read(addr, cycle)
	return word, stall
}

// FetchInstruction fetches the word at byteAddr (already pc*4, per
// spec.md §4.2) through L1I.
func (h *Hierarchy) FetchInstruction(core int, byteAddr int64, cycle uint64) (word int32, stall int) {
	return h.access(core, h.l1i[core], uint64(byteAddr), false, 0, cycle)
}

// LoadData loads the word at byteAddr through L1D.
func (h *Hierarchy) LoadData(core int, byteAddr int64, cycle uint64) (word int32, stall int) {
	return h.access(core, h.l1d[core], uint64(byteAddr), false, 0, cycle)
}

// StoreData stores word at byteAddr through L1D.
func (h *Hierarchy) StoreData(core int, byteAddr int64, word int32, cycle uint64) (stall int) {
	_, stall = h.access(core, h.l1d[core], uint64(byteAddr), true, word, cycle)
	return stall
}

// ReadSPM and WriteSPM access core's scratchpad at L1 latency (spec.md
// §4.2 "read_spm and write_spm returning (word, L1_latency)").
func (h *Hierarchy) ReadSPM(core int, wordIndex int64) (word int32, stall int) {
	return h.spmBanks[core].read(int(wordIndex)), h.cfg.L1Latency
}

func (h *Hierarchy) WriteSPM(core int, wordIndex int64, value int32) (stall int) {
	h.spmBanks[core].write(int(wordIndex), value)
	return h.cfg.L1Latency
}

// WriteDRAM writes value directly into core's DRAM at wordIndex,
// bypassing the cache hierarchy. Used only by the ARR bulk-initialize
// opcode, which the spec (§4.4 EX) defines as an immediate side effect
// on memory across all cores' DRAM banks.
func (h *Hierarchy) WriteDRAM(core int, wordIndex int, value int32) {
	if core < 0 || core >= len(h.dramBanks) {
		return
	}
	h.dramBanks[core].write(wordIndex, value)
}

// DRAMHead returns the first n words of core's DRAM, for result
// reporting (spec.md §6 Outputs "DRAM head (9 words)").
func (h *Hierarchy) DRAMHead(core int, n int) []int32 {
	out := make([]int32, n)
	for i := 0; i < n; i++ {
		out[i] = h.dramBanks[core].read(i)
	}
	return out
}
