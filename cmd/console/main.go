// Headless runner: loads a ROM, executes it for a fixed number of cycles or
// until a fault, and prints the machine state dump.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"

	"gochip8/pkg/chip8"
	"gochip8/pkg/utils"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

type options struct {
	rom     string
	clockHz uint
	cycles  uint64
	dumpRAM bool
	debug   bool
	quiet   bool
}

func createLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

func readArguments() options {
	opts := options{}
	flag.StringVar(&opts.rom, "rom", "", "path of the CHIP-8 ROM to run")
	flag.UintVar(&opts.clockHz, "hz", 500, "instruction clock rate in Hz")
	flag.Uint64Var(&opts.cycles, "cycles", 0, "number of cycles to run (0: run until interrupted or faulted)")
	flag.BoolVar(&opts.dumpRAM, "dump-ram", false, "print the full memory dump after the run")
	flag.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flag.BoolVar(&opts.quiet, "q", false, "perform operations quietly")
	flag.Parse()

	if opts.rom == "" {
		fmt.Printf("usage: console [options] -rom <file to run>\n\n")
		flag.PrintDefaults()
		os.Exit(2)
	}
	return opts
}

func main() {
	opts := readArguments()
	logger := createLogger(opts.debug, opts.quiet)
	logger.Info("chip8 console runner",
		log.String("version", buildinfo.Version(version, commit, date)))

	if err := run(logger, opts); err != nil {
		logger.Error("Execution failed", log.Err(err))
		os.Exit(1)
	}
}

func run(logger *log.Logger, opts options) error {
	ctx := app.Context()

	rom, fullPath, err := utils.ReadROM(opts.rom)
	if err != nil {
		return fmt.Errorf("reading rom: %w", err)
	}

	vm := chip8.NewCPU(opts.clockHz)
	vm.Output = os.Stderr
	if err := vm.LoadROM(rom); err != nil {
		return err
	}
	logger.Info("rom loaded",
		log.String("path", fullPath),
		log.Int("bytes", len(rom)))

loop:
	for i := uint64(0); opts.cycles == 0 || i < opts.cycles; i++ {
		select {
		case <-ctx.Done():
			logger.Info("Run interrupted")
			break loop
		default:
		}
		if err := vm.Tick(); err != nil {
			// The core already wrote its diagnostic dump to vm.Output.
			return err
		}
	}

	logger.Info("run complete", log.String("cycles", fmt.Sprintf("%d", vm.Cycle)))
	vm.DumpRegisters(os.Stdout)
	vm.DumpStack(os.Stdout)
	if opts.dumpRAM {
		vm.DumpRAM(os.Stdout)
	}
	return nil
}
