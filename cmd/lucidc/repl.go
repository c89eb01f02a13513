package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lucidlang/lucidc/internal/repl"
)

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive type-checking session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repl.New(version).Start(os.Stdout)
			return nil
		},
	}
}
