// This is the main-driver for our compiler.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/skx/math-compiler/codegen"
	"github.com/skx/math-compiler/compiler"
	"github.com/skx/math-compiler/lexer"
	"github.com/skx/math-compiler/parser"
	"github.com/skx/math-compiler/sema"
	"github.com/skx/math-compiler/token"
)

var (
	outFlag   string
	debugFlag bool

	redColor    = color.New(color.FgRed)
	greenColor  = color.New(color.FgGreen)
	yellowColor = color.New(color.FgYellow)
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "muarrab <file>",
		Short: "Compile مُعرّب source into x86-64 assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// runCompile reports a compile error itself; keep cobra from
			// printing it a second time along with the usage text.
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true
			return runCompile(args[0])
		},
	}
	root.Flags().StringVarP(&outFlag, "output", "o", "", "assembly output path (default: input path with .s extension)")
	root.Flags().BoolVar(&debugFlag, "debug", false, "insert a debug breakpoint at the start of every function")

	root.AddCommand(newTokensCmd())
	root.AddCommand(newReplCmd())
	return root
}

// runCompile implements the default (no subcommand) invocation: read the
// source file, compile it, and write the assembly to outFlag (or its
// default derivation). Any error is printed once, colorized, to stderr;
// no output file is written on failure.
func runCompile(path string) error {
	outPath, err := compiler.CompileFile(path, outFlag, debugFlag)
	if err != nil {
		printCompileError(err)
		return err
	}
	greenColor.Fprintf(os.Stdout, "wrote %s\n", outPath)
	return nil
}

// printCompileError prints err to stderr in red, with the error kind
// named so the four payload shapes spec.md §7 describes are visually
// distinguishable.
func printCompileError(err error) {
	kind := "Error"
	switch err.(type) {
	case *lexer.Error:
		kind = "LexError"
	case *parser.Error:
		kind = "ParseError"
	case *sema.Error:
		kind = "SemanticError"
	case *codegen.InternalError:
		kind = "InternalError"
	}
	redColor.Fprintf(os.Stderr, "%s: %s\n", kind, err.Error())
}

// newTokensCmd builds the `muarrab tokens <file>` debug subcommand: it
// lexes the file and dumps every token as a table row (kind, lexeme,
// line, column), stopping at the first lex error.
func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Dump the token stream for a مُعرّب source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			lex := lexer.New(string(data))
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Kind", "Lexeme", "Line", "Column"})

			for {
				tok, err := lex.NextToken()
				if err != nil {
					printCompileError(err)
					break
				}
				table.Append([]string{
					string(tok.Kind),
					tok.Lexeme,
					fmt.Sprintf("%d", tok.Pos.Line),
					fmt.Sprintf("%d", tok.Pos.Column),
				})
				if tok.Kind == token.EOF {
					break
				}
			}
			table.Render()
			return nil
		},
	}
}

// newReplCmd builds the `muarrab repl` debug subcommand: a single-line
// expression evaluator that parses one expression wrapped in a throwaway
// main function, type-checks it, and prints the assembly it lowers to.
// There is no top-level expression in the language itself, so this is
// debug tooling over the pipeline, not a second entry point into it.
func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactively compile single expressions for debugging",
		RunE: func(cmd *cobra.Command, args []string) error {
			runRepl(os.Stdin, os.Stdout)
			return nil
		},
	}
}

func runRepl(in io.Reader, out io.Writer) {
	greenColor.Fprintln(out, "مُعرّب debug REPL — one expression per line, Ctrl+D to quit")

	// readline drives an interactive terminal on os.Stdin; any other input
	// (a pipe, a file, a test's reader), or a readline setup failure, is
	// read line by line with a plain scanner instead.
	var rl *readline.Instance
	if f, ok := in.(*os.File); ok && f == os.Stdin {
		if fi, err := f.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
			rl, _ = readline.New("muarrab> ")
		}
	}
	if rl == nil {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			evalReplLine(out, scanner.Text())
		}
		return
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		evalReplLine(out, line)
	}
}

func evalReplLine(out io.Writer, line string) {
	src := "دالة رئيسية() { اطبع(" + line + ")؛ ارجع 0؛ }"

	p, err := parser.New(src)
	if err != nil {
		redColor.Fprintf(out, "%s\n", err.Error())
		return
	}

	prog, err := p.ParseProgram()
	if err != nil {
		redColor.Fprintf(out, "%s\n", err.Error())
		return
	}

	if err := sema.Check(prog); err != nil {
		redColor.Fprintf(out, "%s\n", err.Error())
		return
	}

	asm := codegen.New().Generate(prog)
	yellowColor.Fprintf(out, "%s\n", asm)
}
