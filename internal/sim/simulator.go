// Package sim drives the multi-core lockstep simulation: it owns the
// Program, MemoryHierarchy, SyncBarrier, and all Cores for the run
// (spec.md §3 "Ownership"), ticks them to quiescence or a cycle
// ceiling, and assembles the per-core and system-wide results (§6
// Outputs).
package sim

import (
	"sync"

	"github.com/RohitVenkatMutyala/COA-Project/internal/barrier"
	"github.com/RohitVenkatMutyala/COA-Project/internal/corepipe"
	"github.com/RohitVenkatMutyala/COA-Project/internal/memsys"
	"github.com/RohitVenkatMutyala/COA-Project/internal/program"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Simulator owns every Core plus the shared MemoryHierarchy and
// SyncBarrier for one run.
type Simulator struct {
	cfg    Config
	prog   *program.Program
	mem    *memsys.Hierarchy
	bar    *barrier.Barrier
	cores  []*corepipe.Core
	logger zerolog.Logger

	tickMu sync.Mutex // serializes shared cache/barrier mutation in Parallel mode

	cycles     uint64
	livelocked bool
}

// New builds a Simulator for prog under cfg. A zero-value logger
// (zerolog.Nop()) is used if logger isn't set, so library callers get
// silence by default (SPEC_FULL.md Ambient Stack "Logging").
func New(cfg Config, prog *program.Program, logger zerolog.Logger) *Simulator {
	if cfg.NumCores < 1 {
		cfg.NumCores = 1
	}
	if cfg.NumCores > 4 {
		cfg.NumCores = 4
	}
	mem := memsys.New(cfg.Mem, cfg.NumCores)
	bar := barrier.New(cfg.NumCores)

	s := &Simulator{cfg: cfg, prog: prog, mem: mem, bar: bar, logger: logger}
	s.cores = make([]*corepipe.Core, cfg.NumCores)
	for i := range s.cores {
		s.cores[i] = corepipe.New(i, cfg.NumCores, prog, mem, bar, s, cfg.Forwarding, cfg.Latencies)
	}
	return s
}

// WriteRegister implements corepipe.RegisterWriter, letting one core's
// ARR instruction reach another core's register file directly (spec.md
// §4.4 EX).
func (s *Simulator) WriteRegister(core, reg int, value int32) {
	if core < 0 || core >= len(s.cores) {
		return
	}
	s.cores[core].WriteRegister(reg, value)
}

// Run ticks every core in lockstep until all are inactive or the
// configured cycle ceiling is hit (spec.md §4.4 Termination), then logs
// any recorded decode-error / undefined-label events.
func (s *Simulator) Run() {
	ceiling := s.cfg.CycleCeiling
	if ceiling == 0 {
		ceiling = defaultCycleCeiling
	}

	for s.cycles < ceiling && s.anyActive() {
		s.tick()
		s.cycles++
	}
	if s.cycles >= ceiling && s.anyActive() {
		s.livelocked = true
		s.logger.Warn().Uint64("cycles", s.cycles).Msg("cycle ceiling reached, terminating run")
	}
	s.logEvents()
}

func (s *Simulator) anyActive() bool {
	for _, c := range s.cores {
		if c.Active() {
			return true
		}
	}
	return false
}

// tick runs one global cycle. Sequential (core-index order) is the
// default and is what every same-cycle ordering guarantee in spec.md §5
// is phrased against; Parallel fans each core's tick out onto its own
// goroutine but serializes them behind tickMu, admitting them in
// core-index order, so the shared caches and SyncBarrier (the only
// mutable state not private to a core, per §5) are never touched
// concurrently and are touched in the same order as the sequential path.
func (s *Simulator) tick() {
	if !s.cfg.Parallel {
		for _, c := range s.cores {
			c.Tick()
		}
		return
	}

	var g errgroup.Group
	turn := make(chan struct{})
	close(turn)
	for _, c := range s.cores {
		c := c
		myTurn, next := turn, make(chan struct{})
		turn = next
		g.Go(func() error {
			<-myTurn
			s.tickMu.Lock()
			defer s.tickMu.Unlock()
			defer close(next)
			c.Tick()
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Simulator) logEvents() {
	for _, c := range s.cores {
		for _, ev := range c.Events() {
			s.logger.Info().
				Int("core", c.ID()).
				Uint64("cycle", ev.Cycle).
				Int64("pc", ev.PC).
				Str("kind", ev.Kind).
				Str("detail", ev.Msg).
				Msg("pipeline event")
		}
	}
}

// Results assembles the per-core and system-wide report (spec.md §6
// Outputs).
func (s *Simulator) Results() SystemResult {
	res := SystemResult{
		Cores:      make([]CoreResult, len(s.cores)),
		Livelocked: s.livelocked,
	}

	var maxCycles uint64
	var totalExecuted uint64
	for i, c := range s.cores {
		regs := c.Registers()
		head := s.mem.DRAMHead(i, 9)
		var dram [9]int32
		copy(dram[:], head)

		cycles := c.Cycle()
		if cycles > maxCycles {
			maxCycles = cycles
		}
		executed := c.ExecutedInstructions()
		totalExecuted += executed

		ipc := 0.0
		if cycles > 0 {
			ipc = float64(executed) / float64(cycles)
		}

		l1i := s.mem.L1ICache(i)
		l1d := s.mem.L1DCache(i)

		res.Cores[i] = CoreResult{
			Core:                 i,
			Registers:            regs,
			DRAMHead:             dram,
			ExecutedInstructions: executed,
			Stalls:               c.Stalls(),
			MemoryStalls:         c.MemoryStalls(),
			SyncStalls:           c.SyncStalls(),
			Cycles:               cycles,
			IPC:                  ipc,
			L1I:                  cacheReport(l1i.Hits, l1i.Misses),
			L1D:                  cacheReport(l1d.Hits, l1d.Misses),
		}
	}

	l2 := s.mem.L2Cache()
	res.L2 = cacheReport(l2.Hits, l2.Misses)
	res.TotalCycles = maxCycles
	if maxCycles > 0 {
		res.SystemIPC = float64(totalExecuted) / float64(maxCycles)
	}
	return res
}
