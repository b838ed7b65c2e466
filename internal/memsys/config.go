package memsys

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/RohitVenkatMutyala/COA-Project/internal/cache"
)

// Config holds the cache hierarchy's tunable parameters, loaded from the
// whitespace-separated KEY VALUE text format specified in spec.md §6.
type Config struct {
	L1ISize, L1DSize, L2Size int
	BlockSize                int
	L1IAssoc, L1DAssoc       int
	L2Assoc                  int
	L1Latency, L2Latency     int
	MemoryLatency            int
	SPMSize                  int
	Replacement              cache.Policy
}

// DefaultConfig returns the spec.md §6 defaults: 4 KiB L1s, 16 KiB L2,
// 64 B block, 2/2/4 associativity, latencies 1/10/100, 400 B SPM, LRU.
func DefaultConfig() Config {
	return Config{
		L1ISize: 4096, L1DSize: 4096, L2Size: 16384,
		BlockSize: 64,
		L1IAssoc:  2, L1DAssoc: 2, L2Assoc: 4,
		L1Latency: 1, L2Latency: 10, MemoryLatency: 100,
		SPMSize:     400,
		Replacement: cache.LRU,
	}
}

// LoadConfig reads a cache-config file. Unknown keys are ignored, as
// specified. Missing keys keep their DefaultConfig() value.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			continue // malformed line: ignore, per the "unknown keys ignored" spirit
		}
		key, value := fields[0], fields[1]
		if err := applyKey(&cfg, key, value); err != nil {
			return Config{}, fmt.Errorf("cache config line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyKey(cfg *Config, key, value string) error {
	intVal := func() (int, error) { return strconv.Atoi(value) }

	switch key {
	case "L1I_SIZE":
		v, err := intVal()
		if err != nil {
			return err
		}
		cfg.L1ISize = v
	case "L1D_SIZE":
		v, err := intVal()
		if err != nil {
			return err
		}
		cfg.L1DSize = v
	case "L2_SIZE":
		v, err := intVal()
		if err != nil {
			return err
		}
		cfg.L2Size = v
	case "BLOCK_SIZE":
		v, err := intVal()
		if err != nil {
			return err
		}
		cfg.BlockSize = v
	case "L1I_ASSOCIATIVITY":
		v, err := intVal()
		if err != nil {
			return err
		}
		cfg.L1IAssoc = v
	case "L1D_ASSOCIATIVITY":
		v, err := intVal()
		if err != nil {
			return err
		}
		cfg.L1DAssoc = v
	case "L2_ASSOCIATIVITY":
		v, err := intVal()
		if err != nil {
			return err
		}
		cfg.L2Assoc = v
	case "L1_LATENCY":
		v, err := intVal()
		if err != nil {
			return err
		}
		cfg.L1Latency = v
	case "L2_LATENCY":
		v, err := intVal()
		if err != nil {
			return err
		}
		cfg.L2Latency = v
	case "MEMORY_LATENCY":
		v, err := intVal()
		if err != nil {
			return err
		}
		cfg.MemoryLatency = v
	case "SPM_SIZE":
		v, err := intVal()
		if err != nil {
			return err
		}
		cfg.SPMSize = v
	case "REPLACEMENT_POLICY":
		cfg.Replacement = cache.ParsePolicy(value)
	default:
		// unknown keys ignored, per spec.md §6
	}
	return nil
}

