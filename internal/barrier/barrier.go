// Package barrier implements the cross-core rendezvous used by the SYNC
// opcode (spec.md §4.3).
package barrier

import "sync"

// Barrier is an N-core rendezvous point. The core that observes the
// counter reach zero resets it and advances the generation, releasing
// every core waiting on the prior generation (spec.md §3 SyncBarrier).
type Barrier struct {
	mu         sync.Mutex
	numCores   int
	remaining  int
	generation uint64
}

// New constructs a Barrier for numCores participants.
func New(numCores int) *Barrier {
	return &Barrier{numCores: numCores, remaining: numCores}
}

// Arrival is the result of a core calling Arrive.
type Arrival struct {
	ReleasedByMe bool
	Generation   uint64
}

// Arrive registers one core's arrival at the barrier. The core that
// triggers remaining==0 gets ReleasedByMe=true and proceeds in the same
// cycle; every other core gets its arrival generation back and must poll
// Generation() until it exceeds that value (spec.md §4.3).
func (b *Barrier) Arrive() Arrival {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.remaining--
	if b.remaining == 0 {
		b.remaining = b.numCores
		b.generation++
		return Arrival{ReleasedByMe: true, Generation: b.generation}
	}
	return Arrival{ReleasedByMe: false, Generation: b.generation}
}

// Generation returns the current barrier generation.
func (b *Barrier) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}
