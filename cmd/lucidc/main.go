// Command lucidc is the compiler's command-line entry point: check, build
// and run drive internal/driver's pipeline stages, and repl launches the
// interactive type explorer (internal/repl). Grounded on the teacher's
// cmd/ailang/main.go for the colorized-diagnostics convention (green/red/
// yellow SprintFuncs via fatih/color), generalized from stdlib flag to
// spf13/cobra for this command's richer per-subcommand flag surface
// (spec.md section 8).
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// version is stamped by the release build's ldflags; "dev" otherwise.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "lucidc",
		Short:   "Type-check and compile lucid programs to WebAssembly",
		Version: version,
	}
	root.AddCommand(newCheckCmd())
	root.AddCommand(newBuildCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newReplCmd())
	return root
}

func readSource(path string) ([]byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return src, nil
}

func printReportOrError(err error) {
	if rep, ok := asReport(err); ok {
		fmt.Fprintf(os.Stderr, "%s %s[%s]: %s\n", red(bold("error")), rep.Phase, rep.Code, rep.Message)
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %v\n", red(bold("error")), err)
}
