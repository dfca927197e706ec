package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

const replHistoryLimit = 10

// runREPL reads one program per line. Bindings do not carry over between
// lines: every line runs on a fresh machine.
func runREPL(ctx context.Context, r *runner, in io.Reader) {
	fmt.Fprintln(r.out, "walc REPL (type 'exit' to quit, ':help' for commands)")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, ">> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "exit" || line == "quit":
			return
		case strings.HasPrefix(line, ":"):
			handleREPLCommand(ctx, r, line)
			continue
		}

		r.run(ctx, line)
	}
	fmt.Fprintln(r.out)
}

// handleREPLCommand handles REPL meta-commands
func handleREPLCommand(ctx context.Context, r *runner, cmd string) {
	switch cmd {
	case ":help", ":h", ":?":
		fmt.Fprintln(r.out, "REPL Commands:")
		fmt.Fprintln(r.out, "  :help, :h, :?     Show this help")
		fmt.Fprintln(r.out, "  :dis              Toggle bytecode listing instead of running")
		fmt.Fprintln(r.out, "  :ast              Toggle parse tree display")
		fmt.Fprintln(r.out, "  :tree             Toggle tree-walking evaluation")
		fmt.Fprintln(r.out, "  :history          Show recent runs")
		fmt.Fprintln(r.out, "  exit, quit        Exit REPL")
	case ":dis":
		r.disassemble = !r.disassemble
		fmt.Fprintf(r.out, "disassemble: %v\n", r.disassemble)
	case ":ast":
		r.showAST = !r.showAST
		fmt.Fprintf(r.out, "ast: %v\n", r.showAST)
	case ":tree":
		r.treeWalk = !r.treeWalk
		fmt.Fprintf(r.out, "tree-walking evaluation: %v\n", r.treeWalk)
	case ":history":
		r.printHistory(ctx, replHistoryLimit)
	default:
		fmt.Fprintf(r.out, "Unknown command: %s (type :help for commands)\n", cmd)
	}
}
