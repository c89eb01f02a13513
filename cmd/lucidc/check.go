package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lucidlang/lucidc/internal/ast"
	"github.com/lucidlang/lucidc/internal/driver"
)

func newCheckCmd() *cobra.Command {
	var traceTypes bool
	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Type-check a program and print its principal type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			res, err := driver.Check(src, args[0])
			if err != nil {
				printReportOrError(err)
				return err
			}
			if traceTypes {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", yellow(ast.Print(res.Program.Expr)))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green(bold("ok")), res.Type.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&traceTypes, "trace-types", false, "print the checked expression alongside its type")
	return cmd
}
