// Package cache implements a set-associative cache with LRU or RANDOM
// victim selection, used for L1I, L1D, and L2 in the memory hierarchy
// (spec.md §4.1).
package cache

import "math/rand/v2"

// Policy selects the cache's replacement policy.
type Policy int

const (
	LRU Policy = iota
	RANDOM
)

// ParsePolicy maps a config-file token to a Policy. Unknown tokens fall
// back to LRU, the spec.md §6 default.
func ParsePolicy(token string) Policy {
	if token == "RANDOM" {
		return RANDOM
	}
	return LRU
}

// block is one cache line: {valid, dirty, tag, last_used_cycle, words}
// (spec.md §3 Cache block).
type block struct {
	valid         bool
	dirty         bool
	tag           uint64
	lastUsedCycle uint64
	words         []int32
}

// Cache is a set-associative cache: num_sets × ways blocks of blockWords
// words each (spec.md §3 Cache).
type Cache struct {
	numSets    int
	ways       int
	blockWords int
	policy     Policy
	sets       [][]block

	Hits   uint64
	Misses uint64
}

// New constructs a Cache. sizeBytes, blockSizeBytes, and associativity
// come directly from the cache-config file (spec.md §6).
func New(sizeBytes, blockSizeBytes, associativity int, policy Policy) *Cache {
	numSets := sizeBytes / (blockSizeBytes * associativity)
	if numSets < 1 {
		numSets = 1
	}
	blockWords := blockSizeBytes / 4
	sets := make([][]block, numSets)
	for i := range sets {
		sets[i] = make([]block, associativity)
		for w := range sets[i] {
			sets[i][w].words = make([]int32, blockWords)
		}
	}
	return &Cache{
		numSets:    numSets,
		ways:       associativity,
		blockWords: blockWords,
		policy:     policy,
		sets:       sets,
	}
}

// decompose computes {offset, set_index, tag} for a byte address, all
// as unsigned 64-bit arithmetic (spec.md §4.1).
func (c *Cache) decompose(addr uint64) (offset, setIndex int, tag uint64) {
	blockSize := uint64(c.blockWords * 4)
	offset = int(addr % blockSize)
	setIndex = int((addr / blockSize) % uint64(c.numSets))
	tag = addr / (blockSize * uint64(c.numSets))
	return
}

// Lookup reports whether addr hits, and if so which way.
func (c *Cache) Lookup(addr uint64) (hit bool, way int) {
	_, setIndex, tag := c.decompose(addr)
	set := c.sets[setIndex]
	for i := range set {
		if set[i].valid && set[i].tag == tag {
			return true, i
		}
	}
	return false, -1
}

// Read returns the word at addr and whether it was a hit. On a hit,
// last_used_cycle updates to cycle (spec.md §4.1).
func (c *Cache) Read(addr uint64, cycle uint64) (word int32, hit bool) {
	wordOffset, setIndex, tag := c.decompose(addr)
	set := c.sets[setIndex]
	for i := range set {
		if set[i].valid && set[i].tag == tag {
			set[i].lastUsedCycle = cycle
			c.Hits++
			return set[i].words[wordOffset/4], true
		}
	}
	c.Misses++
	return 0, false
}

// ReadBlock returns a copy of the whole block containing addr, without
// touching hit/miss counters or last_used_cycle. Used by the memory
// hierarchy to move an entire block from one cache level into another
// without double-counting per-word accesses.
func (c *Cache) ReadBlock(addr uint64) (words []int32, hit bool) {
	_, setIndex, tag := c.decompose(addr)
	set := c.sets[setIndex]
	for i := range set {
		if set[i].valid && set[i].tag == tag {
			out := make([]int32, len(set[i].words))
			copy(out, set[i].words)
			return out, true
		}
	}
	return nil, false
}

// Write updates the word at addr if present (hit), marking the block
// dirty. It never allocates on its own — write-allocate is driven by the
// memory hierarchy, which calls Allocate on a miss and then Write again
// (spec.md §4.1 "write-allocate").
func (c *Cache) Write(addr uint64, word int32, cycle uint64) (hit bool) {
	wordOffset, setIndex, tag := c.decompose(addr)
	set := c.sets[setIndex]
	for i := range set {
		if set[i].valid && set[i].tag == tag {
			set[i].words[wordOffset/4] = word
			set[i].dirty = true
			set[i].lastUsedCycle = cycle
			c.Hits++
			return true
		}
	}
	c.Misses++
	return false
}

// selectVictim picks the way to evict within setIndex's ways, per the
// configured replacement policy (spec.md §4.1 "Victim selection").
func (c *Cache) selectVictim(setIndex int) int {
	set := c.sets[setIndex]
	for i := range set {
		if !set[i].valid {
			return i
		}
	}
	switch c.policy {
	case RANDOM:
		return rand.IntN(len(set))
	default: // LRU
		victim := 0
		for i := 1; i < len(set); i++ {
			if set[i].lastUsedCycle < set[victim].lastUsedCycle {
				victim = i
			}
		}
		return victim
	}
}

// Allocate installs a fresh block for addr, evicting a victim way if
// needed, and fills it with blockWords (spec.md §4.1 Allocate). It
// returns the evicted block's dirty flag, so the caller may account for
// write-back latency (spec.md §4.1 "Write-back is modeled only as
// latency accounting").
func (c *Cache) Allocate(addr uint64, blockWords []int32, cycle uint64) (evictedDirty bool) {
	_, setIndex, tag := c.decompose(addr)
	way := c.selectVictim(setIndex)
	b := &c.sets[setIndex][way]
	evictedDirty = b.valid && b.dirty

	b.valid = true
	b.dirty = false
	b.tag = tag
	b.lastUsedCycle = cycle
	copy(b.words, blockWords)
	return evictedDirty
}

// GetBlock returns the words stored at (set, way), for tests and
// diagnostics (spec.md §4.1 get_block).
func (c *Cache) GetBlock(setIndex, way int) []int32 {
	return c.sets[setIndex][way].words
}

// BlockWords returns the cache's block size in words.
func (c *Cache) BlockWords() int { return c.blockWords }

// NumSets returns the number of sets, for tests that need to construct
// set-colliding addresses.
func (c *Cache) NumSets() int { return c.numSets }

// MissRate returns misses / (hits+misses), or 0 if there have been no
// accesses (spec.md §8 property 4).
func (c *Cache) MissRate() float64 {
	total := c.Hits + c.Misses
	if total == 0 {
		return 0
	}
	return float64(c.Misses) / float64(total)
}
