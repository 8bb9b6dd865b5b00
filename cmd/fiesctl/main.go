// Command fiesctl runs the fault-injection engine against a 32-bit
// ARM/Thumb guest image, or drives it from the command line without
// emulating anything (reload/info against a catalogue alone).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dependableDOTspace/fieser/internal/armtarget"
	"github.com/dependableDOTspace/fieser/internal/config"
	"github.com/dependableDOTspace/fieser/internal/engine"
	"github.com/dependableDOTspace/fieser/internal/logx"
	"github.com/dependableDOTspace/fieser/internal/monitor"
)

var (
	verbose       bool
	configPath    string
	collectFaults bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fiesctl",
		Short: "Fault-injection engine for 32-bit ARM/Thumb guests",
		Long: `fiesctl loads a declarative XML fault catalogue and evaluates it against
a Unicorn-Engine ARM32 guest on every memory access, register access,
instruction fetch, and virtual-time tick.

Examples:
  fiesctl run guest.bin --catalogue faults.xml   # emulate with faults wired in
  fiesctl reload faults.xml                      # validate a catalogue and exit
  fiesctl monitor --catalogue faults.xml          # interactive fault_reload/info_faults`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logx.Init(verbose)
			return nil
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "session config (YAML)")
	rootCmd.PersistentFlags().BoolVar(&collectFaults, "fi", false, "start with fault collection enabled")

	rootCmd.AddCommand(
		newRunCmd(),
		newReloadCmd(),
		newInfoCmd(),
		newMonitorCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() config.Config {
	if configPath == "" {
		cfg := config.Default()
		cfg.CollectFaults = collectFaults
		return cfg
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fiesctl: %v\n", err)
		os.Exit(1)
	}
	if collectFaults {
		cfg.CollectFaults = true
	}
	return cfg
}

func newRunCmd() *cobra.Command {
	var cataloguePath string
	var entryPoint uint64

	var quiet bool

	cmd := &cobra.Command{
		Use:   "run <image.bin>",
		Short: "Emulate a guest image with the fault-injection hook wired in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if cataloguePath == "" {
				cataloguePath = cfg.CataloguePath
			}

			e := engine.New()
			if cataloguePath != "" {
				if res := e.Reload(cataloguePath); res.Err != nil {
					return fmt.Errorf("initial catalogue load failed: %w", res.Err)
				}
			}

			target, err := armtarget.New()
			if err != nil {
				return fmt.Errorf("create ARM32 target: %w", err)
			}
			defer target.Close()

			if err := target.Wire(e); err != nil {
				return fmt.Errorf("wire fault hook: %w", err)
			}
			if !quiet {
				target.SetTrace(os.Stdout)
			}

			image, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read guest image: %w", err)
			}
			if err := target.MapRegion(0x0, 0x1000000); err != nil {
				return fmt.Errorf("map guest memory: %w", err)
			}
			if err := target.LoadCode(entryPoint, image); err != nil {
				return fmt.Errorf("load guest image: %w", err)
			}

			until := entryPoint + uint64(len(image))
			runErr := target.Start(entryPoint, until)

			summaries := e.Counters().Summaries()
			fmt.Printf("fiesctl: executed %d byte(s) at 0x%x, %d activation summary row(s)\n",
				len(image), entryPoint, len(summaries))
			for _, s := range summaries {
				fmt.Printf("  %-10s %-13s %d\n", s.Component, s.Severity, s.Count)
			}
			return runErr
		},
	}
	cmd.Flags().StringVar(&cataloguePath, "catalogue", "", "XML fault catalogue to load at startup")
	cmd.Flags().Uint64Var(&entryPoint, "entry", 0, "guest image load address")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress the per-instruction trace")
	return cmd
}

func newReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload <catalogue.xml>",
		Short: "Validate a fault catalogue and report the outcome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := engine.New()
			res := e.Reload(args[0])
			if res.Err != nil {
				return res.Err
			}
			fmt.Printf("FIESER: Configuration file loaded successfully (%d faults, request %s)\n",
				res.FaultCount, res.RequestID)
			return nil
		},
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <catalogue.xml>",
		Short: "Load a catalogue and print its faults",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := engine.New()
			if res := e.Reload(args[0]); res.Err != nil {
				return res.Err
			}
			if verbose {
				e.Catalogue().DebugDump(os.Stdout)
				return nil
			}
			for _, f := range e.Catalogue().All() {
				fmt.Println(f.String())
			}
			return nil
		},
	}
}

func newMonitorCmd() *cobra.Command {
	var cataloguePath string
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Interactive fault_reload/info_faults monitor over stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			e := engine.New()
			if cataloguePath != "" {
				if res := e.Reload(cataloguePath); res.Err != nil {
					return fmt.Errorf("initial catalogue load failed: %w", res.Err)
				}
			}
			m := monitor.New(e, os.Stdout)
			return m.Run(os.Stdin)
		},
	}
	cmd.Flags().StringVar(&cataloguePath, "catalogue", "", "XML fault catalogue to load at startup")
	return cmd
}
