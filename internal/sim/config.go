package sim

import (
	"github.com/RohitVenkatMutyala/COA-Project/internal/isa"
	"github.com/RohitVenkatMutyala/COA-Project/internal/memsys"
)

// defaultCycleCeiling is the livelock safety bound (spec.md §4.4
// Termination) applied when Config.CycleCeiling is left at zero.
const defaultCycleCeiling = 1_000_000

// Config holds the runtime parameters spec.md §6 names: core count,
// forwarding on/off, per-op latency overrides, plus the cache
// configuration and the cycle ceiling safety bound.
type Config struct {
	NumCores     int // 1-4, per spec.md §6
	Forwarding   bool
	Latencies    isa.LatencyTable
	Mem          memsys.Config
	CycleCeiling uint64

	// Parallel runs each core's tick concurrently (spec.md §5's
	// "implementations may run these in parallel" option), serializing
	// the shared cache/barrier mutations with a mutex. The default,
	// sequential, core-index-order schedule is what spec.md calls "the
	// simplest correct implementation" and is what every ordering
	// guarantee in §5 is phrased against.
	Parallel bool
}

// DefaultConfig returns a single-core, forwarding-enabled configuration
// with default cache settings (memsys.DefaultConfig) and latencies
// (isa.DefaultLatencies).
func DefaultConfig() Config {
	return Config{
		NumCores:     1,
		Forwarding:   true,
		Latencies:    isa.DefaultLatencies(),
		Mem:          memsys.DefaultConfig(),
		CycleCeiling: defaultCycleCeiling,
	}
}
