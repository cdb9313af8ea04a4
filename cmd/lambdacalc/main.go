// Command lambdacalc is an interactive REPL for the untyped lambda
// calculus: each line is parsed, reduced to normal form against a
// process-scoped dictionary of named definitions, and the result printed.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kvance/lambdacalc/pkgs/ast"
	"github.com/kvance/lambdacalc/pkgs/diagnostics"
	"github.com/kvance/lambdacalc/pkgs/parser"
	"github.com/kvance/lambdacalc/pkgs/reducer"
)

const (
	exitSuccess = 0
	exitIOError = 2
)

func main() {
	var maxSteps int
	var color bool

	rootCmd := &cobra.Command{
		Use:   "lambdacalc",
		Short: "An interactive untyped lambda calculus evaluator",
		Run: func(cmd *cobra.Command, args []string) {
			runREPL(cmd.InOrStdin(), cmd.OutOrStdout(), maxSteps, color)
		},
	}
	rootCmd.Flags().IntVar(&maxSteps, "steps", reducer.DefaultMaxSteps, "maximum reduction steps before giving up on a normal form")
	rootCmd.Flags().BoolVar(&color, "color", false, "highlight error spans with ANSI color")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitIOError)
	}
	os.Exit(exitSuccess)
}

func runREPL(in interface{ Read([]byte) (int, error) }, out interface{ Write([]byte) (int, error) }, maxSteps int, color bool) {
	dict := ast.NewDictionary()
	defer dict.Shutdown()

	sess := reducer.NewSession(dict)
	sess.MaxSteps = maxSteps

	scanner := bufio.NewScanner(in)
	w := bufio.NewWriter(out)
	defer w.Flush()

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			return
		}

		term, err := parser.Parse(line)
		if err != nil {
			fmt.Fprintln(w, renderError(err, color))
			w.Flush()
			continue
		}

		result, _, err := sess.Solve(term, line)
		if err != nil {
			fmt.Fprintln(w, renderError(err, color))
			w.Flush()
			continue
		}

		fmt.Fprintf(w, "= %s\n", result)
		w.Flush()
	}
}

// renderError formats err for the REPL, optionally wrapping it in ANSI
// red (spec.md §6's "--color" external-collaborator concern, kept out of
// the diagnostics package itself since it is purely a terminal-rendering
// preference, not part of the error's data).
func renderError(err error, color bool) string {
	de, ok := err.(*diagnostics.Error)
	if !ok {
		return err.Error()
	}
	if !color {
		return de.Error()
	}
	const red = "\x1b[31m"
	const reset = "\x1b[0m"
	return red + de.Error() + reset
}
