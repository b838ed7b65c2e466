// Command suprax-sim is the CLI front end for the pipeline simulator:
// it loads a program and an optional cache-configuration file, runs the
// simulation, and prints per-core and system-wide results. Human-
// readable result printing and flag parsing live here and nowhere else
// under internal/, matching spec.md §1's "external parser/printer are
// out of scope for the core" boundary.
package main

import (
	"fmt"
	"os"

	"github.com/RohitVenkatMutyala/COA-Project/internal/isa"
	"github.com/RohitVenkatMutyala/COA-Project/internal/memsys"
	"github.com/RohitVenkatMutyala/COA-Project/internal/program"
	"github.com/RohitVenkatMutyala/COA-Project/internal/sim"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	programFile  string
	configFile   string
	numCores     int
	forwarding   bool
	parallel     bool
	verbose      bool
	cycleCeiling uint64
	latAdd       int
	latSub       int
	latMul       int
	latDiv       int
)

func main() {
	root := &cobra.Command{
		Use:          "suprax-sim",
		Short:        "Cycle-accurate multi-core in-order pipeline simulator",
		SilenceUsage: true,
		RunE:         run,
	}

	flags := root.Flags()
	flags.StringVarP(&programFile, "program", "p", "", "assembly program file (required)")
	flags.StringVarP(&configFile, "cache-config", "c", "", "cache configuration file")
	flags.IntVarP(&numCores, "cores", "n", 1, "number of cores (1-4)")
	flags.BoolVar(&forwarding, "forwarding", true, "enable EX/MEM forwarding")
	flags.BoolVar(&parallel, "parallel", false, "tick cores concurrently within each cycle")
	flags.Uint64Var(&cycleCeiling, "cycle-ceiling", 1_000_000, "livelock safety bound in cycles")
	flags.IntVar(&latAdd, "latency-add", 1, "ADD functional-unit latency")
	flags.IntVar(&latSub, "latency-sub", 1, "SUB functional-unit latency")
	flags.IntVar(&latMul, "latency-mul", 1, "MUL functional-unit latency")
	flags.IntVar(&latDiv, "latency-div", 1, "DIV functional-unit latency (reserved, no execute semantics)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log decode-error/undefined-label/livelock events to stderr")
	_ = root.MarkFlagRequired("program")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := zerolog.Nop()
	if verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}

	progFile, err := os.Open(programFile)
	if err != nil {
		return fmt.Errorf("opening program file: %w", err)
	}
	defer progFile.Close()
	prog, err := program.Load(progFile)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	memCfg := memsys.DefaultConfig()
	if configFile != "" {
		cfgFile, err := os.Open(configFile)
		if err != nil {
			return fmt.Errorf("opening cache config file: %w", err)
		}
		defer cfgFile.Close()
		memCfg, err = memsys.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("loading cache config: %w", err)
		}
	}

	latencies := isa.DefaultLatencies().
		WithLatency(isa.OpADD, latAdd).
		WithLatency(isa.OpSUB, latSub).
		WithLatency(isa.OpMUL, latMul).
		WithLatency(isa.OpDIV, latDiv)

	cfg := sim.Config{
		NumCores:     numCores,
		Forwarding:   forwarding,
		Latencies:    latencies,
		Mem:          memCfg,
		CycleCeiling: cycleCeiling,
		Parallel:     parallel,
	}

	s := sim.New(cfg, prog, logger)
	s.Run()
	printResults(s.Results())
	return nil
}

func printResults(res sim.SystemResult) {
	for _, c := range res.Cores {
		fmt.Printf("core %d: executed=%d cycles=%d ipc=%.3f stalls=%d memory_stalls=%d sync_stalls=%d\n",
			c.Core, c.ExecutedInstructions, c.Cycles, c.IPC, c.Stalls, c.MemoryStalls, c.SyncStalls)
		fmt.Printf("  registers: %v\n", c.Registers)
		fmt.Printf("  dram head: %v\n", c.DRAMHead)
		fmt.Printf("  L1I hits=%d misses=%d miss_rate=%.3f\n", c.L1I.Hits, c.L1I.Misses, c.L1I.MissRate)
		fmt.Printf("  L1D hits=%d misses=%d miss_rate=%.3f\n", c.L1D.Hits, c.L1D.Misses, c.L1D.MissRate)
	}
	fmt.Printf("system: total_cycles=%d system_ipc=%.3f l2_hits=%d l2_misses=%d l2_miss_rate=%.3f livelocked=%v\n",
		res.TotalCycles, res.SystemIPC, res.L2.Hits, res.L2.Misses, res.L2.MissRate, res.Livelocked)
}
