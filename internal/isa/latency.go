package isa

// LatencyTable maps opcodes to their functional-unit latency in cycles.
// A latency greater than 1 adds latency-1 cycles to the core's stall
// count in EX when forwarding is disabled (spec.md §4.4 EX); the
// instruction still leaves EX the next cycle. Loads/stores/branches/
// sync have no entry here: their timing is accounted in MEM or ID instead.
type LatencyTable struct {
	latencies map[Opcode]int
}

// DefaultLatencies returns the latency table with ADD=SUB=MUL=DIV=1, the
// baseline spec.md §8 end-to-end scenarios assume unless stated otherwise.
func DefaultLatencies() LatencyTable {
	return LatencyTable{latencies: map[Opcode]int{
		OpADD: 1,
		OpSUB: 1,
		OpMUL: 1,
		OpDIV: 1,
	}}
}

// WithLatency returns a copy of t with op's latency overridden, the
// runtime parameter described in spec.md §6.
func (t LatencyTable) WithLatency(op Opcode, cycles int) LatencyTable {
	next := LatencyTable{latencies: make(map[Opcode]int, len(t.latencies)+1)}
	for k, v := range t.latencies {
		next.latencies[k] = v
	}
	next.latencies[op] = cycles
	return next
}

// Latency returns op's functional-unit latency, defaulting to 1 cycle for
// any opcode without an explicit entry (ADDI, ARR, loads/stores, etc. are
// single-cycle in EX — their stall accounting, if any, happens in ID or
// MEM instead).
func (t LatencyTable) Latency(op Opcode) int {
	if l, ok := t.latencies[op]; ok {
		return l
	}
	return 1
}
