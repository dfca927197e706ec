package server

import (
	"net/http"

	"connectrpc.com/connect"
	"github.com/tliron/commonlog"

	"github.com/chazu/walc/history"
)

var log = commonlog.GetLogger("walc.server")

// WalcServer serves the EvaluationService over Connect with a CBOR codec.
type WalcServer struct {
	eval *EvalService
	mux  *http.ServeMux
}

// ServerOption configures a WalcServer.
type ServerOption func(*serverConfig)

type serverConfig struct {
	store *history.Store
}

// WithHistory records every evaluation in store and enables the History
// procedure.
func WithHistory(store *history.Store) ServerOption {
	return func(c *serverConfig) { c.store = store }
}

// New creates a WalcServer.
func New(opts ...ServerOption) *WalcServer {
	cfg := &serverConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &WalcServer{
		eval: NewEvalService(cfg.store),
		mux:  http.NewServeMux(),
	}

	codec := connect.WithCodec(cborCodec{})
	s.mux.Handle(EvaluateProcedure, connect.NewUnaryHandler(EvaluateProcedure, s.eval.Evaluate, codec))
	s.mux.Handle(CheckSyntaxProcedure, connect.NewUnaryHandler(CheckSyntaxProcedure, s.eval.CheckSyntax, codec))
	s.mux.Handle(CompileProcedure, connect.NewUnaryHandler(CompileProcedure, s.eval.Compile, codec))
	s.mux.Handle(DisassembleProcedure, connect.NewUnaryHandler(DisassembleProcedure, s.eval.Disassemble, codec))
	s.mux.Handle(HistoryProcedure, connect.NewUnaryHandler(HistoryProcedure, s.eval.History, codec))

	return s
}

// Handler returns the HTTP handler serving all procedures.
func (s *WalcServer) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts the HTTP server on the given address.
// The address should be in the form "host:port" or ":port".
func (s *WalcServer) ListenAndServe(addr string) error {
	log.Noticef("walc server listening on %s", addr)
	log.Infof("  Connect (CBOR): http://%s%s", addr, EvaluateProcedure)
	return http.ListenAndServe(addr, s.mux)
}
