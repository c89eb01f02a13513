package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lucidlang/lucidc/internal/driver"
)

// newRunCmd implements structural validation only: parse, typecheck, lower
// and generate a Module, then report the entry export a host embedding a
// WASM runtime would call. No WASM VM is bundled (spec.md's explicit
// non-goal), so this never actually executes the program.
func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Validate that a program compiles, without executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			_, mod, err := driver.Validate(src, args[0])
			if err != nil {
				printReportOrError(err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d functions, %d exports\n", green(bold("ok")), len(mod.Functions), len(mod.Exports))
			fmt.Fprintf(cmd.OutOrStdout(), "entry export a host would call: %s\n", yellow("main"))
			return nil
		},
	}
	return cmd
}
