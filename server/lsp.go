package server

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/chazu/walc/compiler"
	"github.com/chazu/walc/interp"
	"github.com/chazu/walc/vm"

	_ "github.com/tliron/commonlog/simple"
)

const lspName = "walc-lsp"

var lspLog = commonlog.GetLogger("walc.lsp")

// LspServer reports walc diagnostics and hover information to editors.
// Each open document holds a single program.
type LspServer struct {
	mu   sync.Mutex
	docs map[string]string // URI → full document content

	handler protocol.Handler
	server  *glspserver.Server
	version string
}

// NewLSP creates a new LSP server.
func NewLSP() *LspServer {
	s := &LspServer{
		docs:    make(map[string]string),
		version: "0.1.0",
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentHover: s.textDocumentHover,
	}

	s.server = glspserver.NewServer(&s.handler, lspName, false)

	return s
}

// Run starts the LSP server on stdio. Blocks until the client disconnects.
func (s *LspServer) Run() error {
	return s.server.RunStdio()
}

// --- LSP lifecycle handlers ---

func (s *LspServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	lspLog.Info("walc LSP initializing")

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
	}
	capabilities.HoverProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lspName,
			Version: &s.version,
		},
	}, nil
}

func (s *LspServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func (s *LspServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (s *LspServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	return nil
}

// --- Document synchronization ---

func (s *LspServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[string(uri)] = text
	s.mu.Unlock()

	s.publishDiagnostics(ctx, uri, text)
	return nil
}

func (s *LspServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	// With Full sync, the last change event contains the full text
	if len(params.ContentChanges) > 0 {
		last := params.ContentChanges[len(params.ContentChanges)-1]
		if whole, ok := last.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.mu.Lock()
			s.docs[string(uri)] = whole.Text
			s.mu.Unlock()

			s.publishDiagnostics(ctx, uri, whole.Text)
		}
	}
	return nil
}

func (s *LspServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, string(uri))
	s.mu.Unlock()

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *LspServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	s.mu.Lock()
	text, ok := s.docs[string(params.TextDocument.URI)]
	s.mu.Unlock()

	if !ok {
		return nil, nil
	}
	return hover(text, params.Position), nil
}

// --- Diagnostics ---

func (s *LspServer) publishDiagnostics(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	diagnostics := documentDiagnostics(text)
	lspLog.Debugf("%s: %d diagnostics", uri, len(diagnostics))

	go ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// documentDiagnostics compiles and runs text. Lex and parse problems are
// errors on their own line; run-time faults are warnings on the line of
// the root expression, since bytecode carries no positions.
func documentDiagnostics(text string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	if strings.TrimSpace(text) == "" {
		return diagnostics
	}

	lines := strings.Split(text, "\n")
	source := lspName

	prog, err := interp.Compile(text)
	if err != nil {
		severity := protocol.DiagnosticSeverityError
		for _, d := range compiler.Diagnostics(err) {
			code := protocol.IntegerOrString{Value: d.Kind.String()}
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Range:    lineRange(lines, d.Line-1),
				Severity: &severity,
				Code:     &code,
				Source:   &source,
				Message:  d.Message,
			})
		}
		return diagnostics
	}

	if _, err := prog.Run(); err != nil {
		severity := protocol.DiagnosticSeverityWarning
		line := 0
		if prog.Expr != nil {
			line = prog.Expr.Line() - 1
		}
		for _, f := range vm.Faults(err) {
			code := protocol.IntegerOrString{Value: f.Kind.String()}
			diagnostics = append(diagnostics, protocol.Diagnostic{
				Range:    lineRange(lines, line),
				Severity: &severity,
				Code:     &code,
				Source:   &source,
				Message:  f.Message,
			})
		}
	}
	return diagnostics
}

// lineRange spans the whole of a 0-based line, clamped to the document.
func lineRange(lines []string, line int) protocol.Range {
	if line < 0 {
		line = 0
	}
	if line >= len(lines) {
		line = len(lines) - 1
	}
	return protocol.Range{
		Start: protocol.Position{Line: protocol.UInteger(line), Character: 0},
		End:   protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(len(lines[line]))},
	}
}

// --- Hover ---

// hover shows the document's result and bytecode. Over an assigned name it
// leads with that name's binding.
func hover(text string, pos protocol.Position) *protocol.Hover {
	prog, err := interp.Compile(text)
	if err != nil || prog.Expr == nil {
		return nil
	}

	m := vm.New(prog.Code)
	value, runErr := m.Run()

	var b strings.Builder
	if word := extractWord(text, pos); word != "" {
		if v, ok := m.Bindings().Get(word); ok {
			fmt.Fprintf(&b, "`%s` = %s\n\n", word, interp.FormatValue(v))
		}
	}
	if runErr != nil {
		fmt.Fprintf(&b, "**error:** %s\n\n", strings.ReplaceAll(runErr.Error(), "\n", " "))
	} else {
		fmt.Fprintf(&b, "**result:** `%s`\n\n", interp.FormatValue(value))
	}
	b.WriteString("```\n")
	b.WriteString(vm.Disassemble(prog.Code))
	b.WriteString("\n```")

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: b.String(),
		},
	}
}

// --- Text extraction helpers ---

// extractWord returns the full identifier under the cursor.
func extractWord(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := []rune(lines[pos.Line])
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	isWord := func(ch rune) bool {
		return unicode.IsLetter(ch) || unicode.IsNumber(ch) || ch == '_'
	}

	start := col
	for start > 0 && isWord(line[start-1]) {
		start--
	}
	end := col
	for end < len(line) && isWord(line[end]) {
		end++
	}

	if start == end || !unicode.IsLetter(line[start]) {
		return ""
	}
	return string(line[start:end])
}

func boolPtr(b bool) *bool {
	return &b
}
