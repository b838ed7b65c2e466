package sim

// CacheReport is a JSON-serializable snapshot of one cache's hit/miss
// counters (spec.md §6 Outputs "cache-level hits, misses, miss rate"),
// shaped after benchmarks.BenchmarkResult's JSON-tagged stats struct in
// the retrieved syifan-m2sim2 material.
type CacheReport struct {
	Hits     uint64  `json:"hits"`
	Misses   uint64  `json:"misses"`
	MissRate float64 `json:"miss_rate"`
}

// CoreResult is one core's final report (spec.md §6 Outputs "Per-core").
type CoreResult struct {
	Core                 int       `json:"core"`
	Registers            [32]int32 `json:"registers"`
	DRAMHead              [9]int32 `json:"dram_head"`
	ExecutedInstructions uint64    `json:"executed_instructions"`
	Stalls               uint64    `json:"stalls"`
	MemoryStalls         uint64    `json:"memory_stalls"`
	SyncStalls           uint64    `json:"sync_stalls"`
	Cycles               uint64    `json:"cycles"`
	IPC                  float64   `json:"ipc"`
	L1I                  CacheReport `json:"l1i"`
	L1D                  CacheReport `json:"l1d"`
}

// SystemResult is the system-wide rollup (spec.md §6 Outputs
// "System-wide").
type SystemResult struct {
	Cores       []CoreResult `json:"cores"`
	L2          CacheReport  `json:"l2"`
	TotalCycles uint64       `json:"total_cycles"`
	SystemIPC   float64      `json:"system_ipc"`
	Livelocked  bool         `json:"livelocked"`
}

func cacheReport(hits, misses uint64) CacheReport {
	total := hits + misses
	rate := 0.0
	if total > 0 {
		rate = float64(misses) / float64(total)
	}
	return CacheReport{Hits: hits, Misses: misses, MissRate: rate}
}
