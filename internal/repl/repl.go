// Package repl is an interactive type explorer: it reads an expression,
// typechecks it against the ADT declarations made on earlier lines of the
// session, and prints its principal type. It never evaluates a program - no WASM VM
// is bundled (spec.md's explicit non-goal) - so this is strictly a
// typechecking front end, unlike the teacher's repl.go, which drives a full
// tree-walking evaluator. The session loop itself (liner history file in
// os.TempDir, multiline continuation on a trailing " in"/",", colorized
// prompt) is grounded directly on that file.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/lucidlang/lucidc/internal/check"
	"github.com/lucidlang/lucidc/internal/parser"
	"github.com/lucidlang/lucidc/internal/report"
	"github.com/lucidlang/lucidc/internal/types"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	dim    = color.New(color.Faint).SprintFunc()
)

// REPL is a session's accumulated state: every ADT declared so far (used to
// resolve constructors on later lines) and the type environment each line is
// checked in. No line adds bindings to that environment, so a `let` binding
// does not outlive its own line.
type REPL struct {
	version string
	types   types.TypeMap
	env     *types.Environment
	history []string
}

// New returns an empty session.
func New(version string) *REPL {
	if version == "" {
		version = "dev"
	}
	return &REPL{version: version, types: types.NewTypeMap(), env: types.NewEnvironment()}
}

// Start runs the read-eval-print loop until EOF or :quit.
func (r *REPL) Start(out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	historyFile := filepath.Join(os.TempDir(), ".lucidc_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Fprintf(out, "%s %s\n", bold("lucidc"), bold(r.version))
	fmt.Fprintln(out, dim("Type :help for help, :quit to exit"))
	fmt.Fprintln(out, dim("Only the inferred type is printed - no execution is performed"))
	fmt.Fprintln(out)

	line.SetCompleter(func(input string) (c []string) {
		if strings.HasPrefix(input, ":") {
			for _, cmd := range []string{":help", ":quit", ":type", ":clear", ":history"} {
				if strings.HasPrefix(cmd, input) {
					c = append(c, cmd)
				}
			}
		}
		return
	})

	for {
		input, err := line.Prompt("λ> ")
		if err == io.EOF {
			fmt.Fprintln(out, green("\nGoodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("Error"), err)
			continue
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasSuffix(input, " in") || strings.HasSuffix(input, ",") {
			var lines []string
			lines = append(lines, input)
			for {
				cont, err := line.Prompt("... ")
				if err != nil {
					break
				}
				lines = append(lines, cont)
				trimmed := strings.TrimSpace(cont)
				if trimmed != "" && !strings.HasSuffix(trimmed, " in") && !strings.HasSuffix(trimmed, ",") {
					break
				}
			}
			input = strings.Join(lines, "\n")
		}

		line.AppendHistory(input)
		r.history = append(r.history, input)

		if strings.HasPrefix(input, ":") {
			if strings.HasPrefix(input, ":quit") || strings.HasPrefix(input, ":q") {
				fmt.Fprintln(out, green("Goodbye!"))
				break
			}
			r.handleCommand(input, out)
			continue
		}

		r.evalLine(input, out)
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

func (r *REPL) handleCommand(input string, out io.Writer) {
	switch {
	case strings.HasPrefix(input, ":help"):
		fmt.Fprintln(out, "Commands: :type <expr>  :history  :clear  :quit")
	case strings.HasPrefix(input, ":history"):
		for i, h := range r.history {
			fmt.Fprintf(out, "%3d  %s\n", i+1, h)
		}
	case strings.HasPrefix(input, ":clear"):
		r.env = types.NewEnvironment()
		r.types = types.NewTypeMap()
		fmt.Fprintln(out, yellow("session cleared"))
	case strings.HasPrefix(input, ":type "):
		r.evalLine(strings.TrimPrefix(input, ":type "), out)
	default:
		fmt.Fprintf(out, "%s: unknown command %q\n", red("Error"), input)
	}
}

// evalLine parses expr, merges any ADT declarations it carries into the
// session's TypeMap (so a later line's match expressions can reference
// constructors declared on an earlier one), and prints its principal type.
// A `let`/`let rec`'s own binding is always self-contained within its one
// line (the grammar requires a body), so - unlike the teacher's REPL, which
// persists evaluated values across lines - there is nothing further to
// carry into the session environment here.
func (r *REPL) evalLine(src string, out io.Writer) {
	prog, err := parser.ParseProgram([]byte(src), "<repl>")
	if err != nil {
		printErr(out, err)
		return
	}
	for _, d := range prog.Decls {
		info := &types.TypeInfo{TyArgs: d.TyArgs}
		for _, c := range d.Constructors {
			argTypes := make([]types.Monotype, len(c.ArgTypes))
			for i, te := range c.ArgTypes {
				argTypes[i] = check.ResolveTypeExpr(te)
			}
			info.Constructors = append(info.Constructors, types.DataConstructor{Name: c.Name, ArgTypes: argTypes})
		}
		r.types.Declare(d.Name, info)
	}

	cs := check.NewCheckState(r.types)
	ty, err := cs.Infer(r.env, prog.Expr)
	if err != nil {
		printErr(out, err)
		return
	}
	zonked := cs.Sub.Apply(ty)
	fmt.Fprintf(out, "%s %s\n", dim(":"), green(zonked.String()))
}

func printErr(out io.Writer, err error) {
	if rep, ok := report.As(err); ok {
		fmt.Fprintf(out, "%s %s[%s]: %s\n", red(bold("error")), rep.Phase, rep.Code, rep.Message)
		return
	}
	fmt.Fprintf(out, "%s: %v\n", red(bold("error")), err)
}
