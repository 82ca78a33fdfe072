// Package cmd implements the riscv-monitor command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/config"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/debugger"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/emulator"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/expr"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/util"
)

const Version = "0.1.0"

var (
	cfgFile string
	debug   bool
	elfPath string
)

var rootCmd = &cobra.Command{
	Use:   "riscv-monitor",
	Short: "Expression debugger for the 2035 RISC-V emulator",
	Long: `riscv-monitor loads a RISC-V ELF program into the emulator and lets you
inspect it with expressions such as "*($sp + 8) == 0x2a", either once from
the command line or interactively over JSON-RPC.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.DefaultConfig()
		if cfgFile != "" {
			loaded, err := config.LoadConfig(cfgFile)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		if debug {
			util.LoggingEnabled = true
			cfg.Log.Level = "debug"
		}
		config.SetConfig(cfg)
		util.InitLogger(&cfg.Log)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		util.Sync()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging and instruction tracing")
	rootCmd.PersistentFlags().StringVar(&elfPath, "elf", "", "RISC-V ELF program to load")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetRootCmd returns the root command for tests.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// newMonitor builds a monitor over the program at path, or over an empty
// machine if path is empty.
func newMonitor(cfg *config.Config, path string, logger *zap.Logger) (*debugger.Monitor, error) {
	emuConfig := emulator.EmulatorConfig{
		StackStartAddress: cfg.Emulator.StackStartAddress,
		HeapStartAddress:  cfg.Emulator.HeapStartAddress,
		RuntimeLimit:      cfg.Emulator.RuntimeLimit,
	}

	var emu *emulator.EmulatorInstance
	var symbols emulator.SymbolTable
	if path != "" {
		program, err := emulator.LoadELF(path, emuConfig)
		if err != nil {
			return nil, err
		}
		emu = program.Emulator
		symbols = program.Symbols
	} else {
		emu = emulator.NewEmulator(emuConfig)
	}

	return debugger.NewMonitor(emu, symbols, debugger.Options{
		Limits: expr.Limits{
			MaxTokens:    cfg.Expr.MaxTokens,
			MaxTokenText: cfg.Expr.MaxTokenText,
		},
		MaxWatchpoints:  cfg.Debugger.MaxWatchpoints,
		MaxExamineWords: cfg.Debugger.MaxExamineWords,
		Logger:          logger.Named("debugger"),
	}), nil
}
