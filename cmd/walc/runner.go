package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/chazu/walc/compiler"
	"github.com/chazu/walc/history"
	"github.com/chazu/walc/interp"
	"github.com/chazu/walc/vm"
	"github.com/chazu/walc/vm/dist"
)

// runner evaluates programs for the command line and the REPL.
type runner struct {
	out io.Writer
	err io.Writer

	disassemble bool // print bytecode instead of running
	showAST     bool // print the parse tree before the result
	treeWalk    bool // evaluate with compiler.Evaluate instead of the VM

	chunkPath     string // write a chunk here instead of running
	includeSource bool

	store *history.Store // nil disables run history
}

func newRunner() *runner {
	return &runner{out: os.Stdout, err: os.Stderr}
}

// run compiles and executes one program and prints its result. It reports
// whether the program succeeded; failures are printed to r.err.
func (r *runner) run(ctx context.Context, source string) bool {
	prog, err := interp.Compile(source)
	if err != nil {
		r.record(ctx, history.Run{Source: source, Error: err.Error()})
		fmt.Fprintln(r.err, err)
		return false
	}

	if r.showAST {
		fmt.Fprintln(r.out, compiler.Format(prog.Expr))
	}
	if r.disassemble {
		fmt.Fprintln(r.out, vm.Disassemble(prog.Code))
		return true
	}
	if r.chunkPath != "" {
		return r.writeChunk(prog)
	}

	var value float64
	if r.treeWalk {
		value, err = compiler.Evaluate(prog.Expr, vm.NewBindings(nil))
	} else {
		value, err = vm.Execute(prog.Code)
	}

	run := history.Run{Source: source, Bytecode: prog.Code}
	if err != nil {
		run.Error = err.Error()
		r.record(ctx, run)
		fmt.Fprintln(r.err, err)
		return false
	}
	run.Result = interp.FormatValue(value)
	r.record(ctx, run)
	fmt.Fprintln(r.out, run.Result)
	return true
}

func (r *runner) writeChunk(prog *interp.Program) bool {
	chunk := dist.NewChunk(prog.Source, prog.Code, r.includeSource)
	data, err := dist.MarshalChunk(chunk)
	if err != nil {
		fmt.Fprintln(r.err, err)
		return false
	}
	if err := os.WriteFile(r.chunkPath, data, 0644); err != nil {
		fmt.Fprintln(r.err, err)
		return false
	}
	log.Infof("wrote %s (%d bytes of bytecode)", r.chunkPath, len(chunk.Bytecode))
	return true
}

// runChunk loads, verifies and executes a chunk file.
func (r *runner) runChunk(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(r.err, err)
		return false
	}
	chunk, err := dist.UnmarshalChunk(data)
	if err != nil {
		fmt.Fprintln(r.err, err)
		return false
	}
	if err := dist.VerifyChunk(chunk, compileSource); err != nil {
		fmt.Fprintln(r.err, err)
		return false
	}

	if r.disassemble {
		fmt.Fprintln(r.out, vm.Disassemble(chunk.Bytecode))
		return true
	}
	value, err := vm.Execute(chunk.Bytecode)
	if err != nil {
		fmt.Fprintln(r.err, err)
		return false
	}
	fmt.Fprintln(r.out, interp.FormatValue(value))
	return true
}

func compileSource(source string) ([]byte, error) {
	prog, err := interp.Compile(source)
	if err != nil {
		return nil, err
	}
	return prog.Code, nil
}

func (r *runner) record(ctx context.Context, run history.Run) {
	if r.store == nil {
		return
	}
	if _, err := r.store.Record(ctx, run); err != nil {
		log.Warningf("recording run: %s", err)
	}
}

// printHistory lists the latest runs.
func (r *runner) printHistory(ctx context.Context, limit int) {
	if r.store == nil {
		fmt.Fprintln(r.out, "run history is disabled (use -history or [server] history)")
		return
	}
	runs, err := r.store.List(ctx, limit)
	if err != nil {
		fmt.Fprintln(r.err, err)
		return
	}
	for _, run := range runs {
		outcome := run.Result
		if run.Failed() {
			outcome = "error: " + run.Error
		}
		fmt.Fprintf(r.out, "%s  %s  %q => %s\n",
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"), shortID(run.ID), run.Source, outcome)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
