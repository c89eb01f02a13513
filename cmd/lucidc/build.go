package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lucidlang/lucidc/internal/driver"
)

func newBuildCmd() *cobra.Command {
	var out string
	var emitIR bool
	cmd := &cobra.Command{
		Use:   "build <file>",
		Short: "Compile a program to a WebAssembly binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}

			if emitIR {
				irProg, err := driver.Lower(src, args[0])
				if err != nil {
					printReportOrError(err)
					return err
				}
				for _, d := range irProg.Declarations {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", yellow(d.Name), d.Body.String())
				}
			}

			wasmBytes, err := driver.Build(src, args[0])
			if err != nil {
				printReportOrError(err)
				return err
			}
			if out == "" {
				out = outputName(args[0])
			}
			if err := os.WriteFile(out, wasmBytes, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s (%d bytes)\n", green(bold("ok")), out, len(wasmBytes))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output .wasm path (defaults to the input file with a .wasm extension)")
	cmd.Flags().BoolVar(&emitIR, "emit-ir", false, "print the lowered IR declarations before encoding")
	return cmd
}

func outputName(inputPath string) string {
	for i := len(inputPath) - 1; i >= 0 && inputPath[i] != '/'; i-- {
		if inputPath[i] == '.' {
			return inputPath[:i] + ".wasm"
		}
	}
	return inputPath + ".wasm"
}
