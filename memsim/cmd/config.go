package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sarchlab/memsim/mem/storage"
	"github.com/sarchlab/memsim/mem/vm/replacement"
)

// Environment variables that provide defaults for the command line.
const (
	envBackingStore = "MEMSIM_BACKING_STORE"
	envTLBEntries   = "MEMSIM_TLB_ENTRIES"
	envFrames       = "MEMSIM_FRAMES"
	envPolicy       = "MEMSIM_PRA"
)

const (
	defaultNumFrames     = 256
	defaultNumTLBEntries = 16
)

type config struct {
	addressFile   string
	backingStore  string
	numFrames     int
	numTLBEntries int
	policy        replacement.Policy

	quiet       bool
	verbose     bool
	record      string
	eventTrace  string
	monitor     bool
	monitorPort int
	openBrowser bool
}

// loadEnv loads the variables in the env file. A missing file is not an
// error.
func loadEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

func defaultConfig() (config, error) {
	cfg := config{
		backingStore:  storage.DefaultBackingStorePath,
		numFrames:     defaultNumFrames,
		numTLBEntries: defaultNumTLBEntries,
		policy:        replacement.FIFO,
	}

	if v, ok := os.LookupEnv(envBackingStore); ok && v != "" {
		cfg.backingStore = v
	}

	var err error

	if cfg.numFrames, err = intFromEnv(envFrames, cfg.numFrames); err != nil {
		return cfg, err
	}

	cfg.numTLBEntries, err = intFromEnv(envTLBEntries, cfg.numTLBEntries)
	if err != nil {
		return cfg, err
	}

	if v, ok := os.LookupEnv(envPolicy); ok && v != "" {
		cfg.policy, err = replacement.ParsePolicy(v)
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", envPolicy, err)
		}
	}

	return cfg, nil
}

func intFromEnv(name string, fallback int) (int, error) {
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", name, v)
	}

	return n, nil
}

// parseConfig combines, from lowest to highest priority, the built-in
// defaults, the environment, the flags, and the positional arguments.
func parseConfig(cmd *cobra.Command, args []string) (config, error) {
	cfg, err := defaultConfig()
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()

	if flags.Changed("backing-store") {
		cfg.backingStore, _ = flags.GetString("backing-store")
	}

	if flags.Changed("tlb-entries") {
		cfg.numTLBEntries, _ = flags.GetInt("tlb-entries")
	}

	cfg.quiet, _ = flags.GetBool("quiet")
	cfg.verbose, _ = flags.GetBool("verbose")
	cfg.record, _ = flags.GetString("record")
	cfg.eventTrace, _ = flags.GetString("event-trace")
	cfg.monitor, _ = flags.GetBool("monitor")
	cfg.monitorPort, _ = flags.GetInt("monitor-port")
	cfg.openBrowser, _ = flags.GetBool("open-browser")

	cfg.addressFile = args[0]

	if len(args) > 1 {
		cfg.numFrames, err = strconv.Atoi(args[1])
		if err != nil {
			return cfg, fmt.Errorf("frame count %q is not an integer", args[1])
		}
	}

	if len(args) > 2 {
		cfg.policy, err = replacement.ParsePolicy(args[2])
		if err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}
