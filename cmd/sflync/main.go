// Command sflync runs the lexer, parser, type checker and evaluator over
// one .sf source file. It is deliberately thin: spec.md §6.2 scopes out
// project discovery, an init/add workflow, and any settings format —
// this binary reads one path from argv and turns the pipeline's result
// into a process exit code.
package main

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/sflynlang/sflync/internal/env"
	"github.com/sflynlang/sflync/internal/eval"
	"github.com/sflynlang/sflync/internal/lexer"
	"github.com/sflynlang/sflync/internal/parser"
	"github.com/sflynlang/sflync/internal/position"
	"github.com/sflynlang/sflync/internal/report"
	"github.com/sflynlang/sflync/internal/typecheck"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var path string
	debug := false
	dumpEnv := false

	for _, a := range args {
		switch a {
		case "-debug":
			debug = true
		case "-dump-env":
			dumpEnv = true
		default:
			if path == "" {
				path = a
			}
		}
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "usage: sflync [-debug] [-dump-env] <file.sf>")
		return 2
	}

	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sflync: %s\n", err)
		return 2
	}

	buf := position.NewBuffer(path, string(content))
	renderer := &report.Renderer{Writer: os.Stderr, Buffer: buf}

	tokens, diag := lexer.Lex(buf)
	if diag != nil {
		renderer.Render(diag)
		return 1
	}

	prog, diag := parser.Parse(tokens)
	if diag != nil {
		renderer.Render(diag)
		return 1
	}

	checkEnv := env.New(debug)
	checker := typecheck.New(checkEnv)
	if code := checker.Run(prog); code != 0 {
		checkEnv.ShowErrors(renderer)
		return code
	}

	evalEnv := env.New(debug)
	evaluator := eval.New(evalEnv, os.Stdout)
	code := evaluator.Run(prog)
	evalEnv.ShowErrors(renderer)

	if dumpEnv {
		spew.Fdump(os.Stderr, evalEnv.Store.ValueNames())
	}

	return code
}
