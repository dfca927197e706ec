// walc CLI - compiles and runs arithmetic expressions on the stack machine
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/tliron/commonlog"

	"github.com/chazu/walc/history"
	"github.com/chazu/walc/manifest"
	"github.com/chazu/walc/server"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("walc")

func main() {
	expr := flag.String("e", "", "Evaluate the given expression")
	interactive := flag.Bool("i", false, "Start interactive REPL")
	disassemble := flag.Bool("d", false, "Print bytecode instead of running")
	showAST := flag.Bool("ast", false, "Print the parse tree")
	treeWalk := flag.Bool("tree", false, "Evaluate the parse tree directly instead of running bytecode")
	chunkOut := flag.String("o", "", "Write the compiled program to a chunk file instead of running it")
	build := flag.Bool("build", false, "Write the program to the [image] output path from walc.toml")
	runChunk := flag.String("run-chunk", "", "Verify and run a chunk file")
	serveMode := flag.Bool("serve", false, "Start the evaluation service (Connect, CBOR codec)")
	servePort := flag.Int("port", 0, "Evaluation service port (default from walc.toml, else 4567)")
	lspMode := flag.Bool("lsp", false, "Start the language server on stdio")
	historyPath := flag.String("history", "", "Record runs in this SQLite database")
	encoding := flag.String("encoding", "", "Source file encoding (WHATWG label, default utf-8)")
	verbosity := flag.Int("v", -1, "Log verbosity 0-5 (default from walc.toml, else 1)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: walc [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Compiles each file (or -e expression) to bytecode and runs it.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  walc -e '(3 + 5) * 3 / -2'     # prints -12\n")
		fmt.Fprintf(os.Stderr, "  walc -d -e 'x = 2 ** 8'        # show bytecode\n")
		fmt.Fprintf(os.Stderr, "  walc -o prog.walcc prog.walc    # write a chunk\n")
		fmt.Fprintf(os.Stderr, "  walc -run-chunk prog.walcc      # verify and run it\n")
		fmt.Fprintf(os.Stderr, "  walc -build                     # entry from walc.toml to [image] output\n")
		fmt.Fprintf(os.Stderr, "  walc -serve -history runs.db    # evaluation service on :4567\n")
		fmt.Fprintf(os.Stderr, "  walc -lsp                       # language server on stdio\n")
	}
	flag.Parse()

	m, err := loadManifest()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	configureLogging(m, *verbosity)

	if *encoding == "" {
		*encoding = m.Source.Encoding
	}
	if *historyPath == "" {
		*historyPath = m.HistoryPath()
	}

	ctx := context.Background()

	if *lspMode {
		if err := server.NewLSP().Run(); err != nil {
			fmt.Fprintf(os.Stderr, "LSP error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	var store *history.Store
	if *historyPath != "" {
		store, err = history.Open(*historyPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	if *serveMode {
		addr, err := serveAddr(m.Server.Addr, *servePort)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		var opts []server.ServerOption
		if store != nil {
			opts = append(opts, server.WithHistory(store))
		}
		if err := server.New(opts...).ListenAndServe(addr); err != nil {
			fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	r := newRunner()
	r.disassemble = *disassemble
	r.showAST = *showAST
	r.treeWalk = *treeWalk
	r.chunkPath = *chunkOut
	r.includeSource = m.Image.IncludeSource
	r.store = store
	if *build && r.chunkPath == "" {
		r.chunkPath = m.ImageOutputPath()
		if r.chunkPath == "" {
			fmt.Fprintln(os.Stderr, "Error: -build needs [image] output in walc.toml")
			os.Exit(1)
		}
	}

	if *runChunk != "" {
		if !r.runChunk(*runChunk) {
			os.Exit(1)
		}
		os.Exit(0)
	}

	paths := flag.Args()
	if len(paths) == 0 && *expr == "" {
		if entry := m.EntryPath(); entry != "" {
			paths = []string{entry}
		}
	}

	programs := len(paths)
	if *expr != "" {
		programs++
	}
	if programs > 1 && r.chunkPath != "" {
		fmt.Fprintln(os.Stderr, "Error: -o takes a single program")
		os.Exit(1)
	}

	ok := true
	if *expr != "" {
		ok = r.run(ctx, *expr) && ok
	}
	for _, path := range paths {
		source, err := readSourceFile(path, *encoding)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			ok = false
			continue
		}
		log.Debugf("running %s", path)
		ok = r.run(ctx, source) && ok
	}

	if *interactive || (len(paths) == 0 && *expr == "") {
		r.chunkPath = ""
		runREPL(ctx, r, os.Stdin)
	}
	if !ok {
		os.Exit(1)
	}
}

// loadManifest finds walc.toml above the working directory, falling back
// to the defaults when there is none.
func loadManifest() (*manifest.Manifest, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	m, err := manifest.FindAndLoad(wd)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = manifest.Default(wd)
	}
	return m, nil
}

func configureLogging(m *manifest.Manifest, verbosity int) {
	if verbosity < 0 {
		verbosity = m.Log.Verbosity
	}
	var path *string
	if p := m.LogFilePath(); p != "" {
		path = &p
	}
	commonlog.Configure(verbosity, path)
}

// serveAddr combines the configured address with a -port override.
func serveAddr(configured string, port int) (string, error) {
	if port == 0 {
		return configured, nil
	}
	host, _, err := net.SplitHostPort(configured)
	if err != nil {
		return "", fmt.Errorf("invalid server address %q: %w", configured, err)
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}
