// Package cmd provides the command-line interface for memsim.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/memsim/datarecording"
	"github.com/sarchlab/memsim/mem/storage"
	"github.com/sarchlab/memsim/mem/trace"
	"github.com/sarchlab/memsim/mem/vm/addresslist"
	"github.com/sarchlab/memsim/mem/vm/addresstranslator"
	"github.com/sarchlab/memsim/monitoring"
	"github.com/sarchlab/memsim/sim"
)

const envFile = ".env"

// autoRecordName is the value of a bare --record. It lets the data recorder
// generate the database name.
const autoRecordName = "auto"

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memsim <reference-sequence-file> [FRAMES] [PRA]",
		Short: "memsim translates logical addresses through a TLB and a page table.",
		Long: `memsim reads one logical address per line from the reference ` +
			`sequence file, translates every address through a TLB, a page ` +
			`table, and FRAMES physical frames (default 256), loading pages ` +
			`from the backing store on page faults and replacing them with ` +
			`PRA (FIFO, LRU, or OPT; default FIFO).`,
		Args:         cobra.RangeArgs(1, 3),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := parseConfig(cmd, args)
			if err != nil {
				return err
			}

			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.String("backing-store", storage.DefaultBackingStorePath,
		"The file that pages are loaded from.")
	flags.Int("tlb-entries", defaultNumTLBEntries,
		"The number of entries in the TLB.")
	flags.BoolP("quiet", "q", false,
		"Do not print a line for every translated address.")
	flags.BoolP("verbose", "v", false,
		"Log page loads and evictions to stderr.")
	flags.String("record", "",
		"Record translations into the SQLite database <name>.sqlite3. "+
			"Use --record=<name>; a bare --record generates the name.")
	flags.Lookup("record").NoOptDefVal = autoRecordName
	flags.String("event-trace", "",
		"Write one CSV line per translation event into the file.")
	flags.Bool("monitor", false,
		"Serve the progress and the translator state over HTTP.")
	flags.Int("monitor-port", 0,
		"The port of the monitoring server. A random port is used if 0.")
	flags.Bool("open-browser", false,
		"Open the monitoring page in a browser. Requires --monitor.")

	return cmd
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := loadEnv(envFile); err != nil {
		log.Fatalf("Error loading %s: %v", envFile, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func run(ctx context.Context, cfg config, out io.Writer) (err error) {
	addresses, err := addresslist.Load(cfg.addressFile)
	if err != nil {
		return err
	}

	builder := addresstranslator.MakeBuilder().
		WithNumFrames(cfg.numFrames).
		WithNumTLBEntries(cfg.numTLBEntries).
		WithPolicy(cfg.policy).
		WithBackingStore(storage.NewFileBackingStore(cfg.backingStore))

	if cfg.verbose {
		builder = builder.WithLogger(log.New(os.Stderr, "memsim: ", 0))
	}

	translator, err := builder.Build("Translator")
	if err != nil {
		return err
	}

	if !cfg.quiet {
		translator.AcceptHook(trace.NewTracer(log.New(out, "", 0)))
	}

	if cfg.eventTrace != "" {
		f, createErr := os.Create(cfg.eventTrace)
		if createErr != nil {
			return createErr
		}
		defer f.Close()

		translator.AcceptHook(trace.NewEventTracer(f))
	}

	var dbTracer *trace.DBTracer
	if cfg.record != "" {
		name := cfg.record
		if name == autoRecordName {
			name = ""
		}

		recorder, recordErr := datarecording.New(name)
		if recordErr != nil {
			return recordErr
		}

		defer func() {
			if closeErr := recorder.Close(); closeErr != nil && err == nil {
				err = closeErr
			}
		}()

		dbTracer, err = trace.NewDBTracer(recorder,
			sim.NewParallelIDGenerator())
		if err != nil {
			return err
		}

		translator.AcceptHook(dbTracer)
	}

	if cfg.monitor {
		startMonitor(cfg, translator)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	err = translator.Run(ctx, addresses)
	if err != nil {
		return err
	}

	if dbTracer != nil && dbTracer.Err() != nil {
		return dbTracer.Err()
	}

	err = translator.Stats().WriteSummary(out)
	if err != nil || !cfg.monitor {
		return err
	}

	fmt.Fprintln(os.Stderr,
		"Translation finished. The monitoring server keeps running; "+
			"press Ctrl-C to exit.")
	<-ctx.Done()

	return nil
}

func startMonitor(cfg config, translator *addresstranslator.Comp) {
	m := monitoring.NewMonitor().WithPortNumber(cfg.monitorPort)
	m.RegisterTranslator(translator)

	url := m.StartServer()

	if cfg.openBrowser {
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
		}
	}
}
