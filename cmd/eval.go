package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/config"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/expr"
	"github.gatech.edu/ECEInnovation/RISC-V-Monitor/util"
)

var evalSteps int

var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate an expression once",
	Long: `Evaluate an expression against the initial state of the loaded program, or
after running it for --steps instructions. Without --elf only literals and
operators are meaningful.`,
	Example: `  riscv-monitor eval "0x10 + 2 * 3"
  riscv-monitor eval --elf prog.elf "*(counter + 4)"
  riscv-monitor eval --elf prog.elf --steps 100 '$a0 == 3'
  riscv-monitor eval -- -1`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().IntVar(&evalSteps, "steps", 0, "instructions to execute before evaluating")
}

func runEval(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	monitor, err := newMonitor(config.GetConfig(), elfPath, util.L())
	if err != nil {
		return err
	}
	if evalSteps > 0 {
		ev := monitor.Step(evalSteps)
		if ev.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "stopped after %d steps: %v\n", ev.Steps, ev.Err)
		}
	}

	value, err := monitor.Evaluate(text)
	if err != nil {
		var exprErr *expr.Error
		if errors.As(err, &exprErr) {
			if pos, ok := exprErr.Position(); ok {
				fmt.Fprintln(cmd.ErrOrStderr(), text)
				fmt.Fprintln(cmd.ErrOrStderr(), strings.Repeat(" ", pos)+"^")
			}
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d (0x%08x)\n", value, value)
	return nil
}
