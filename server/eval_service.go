package server

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/chazu/walc/compiler"
	"github.com/chazu/walc/history"
	"github.com/chazu/walc/interp"
	"github.com/chazu/walc/vm"
	"github.com/chazu/walc/vm/dist"
)

const defaultHistoryLimit = 20

// EvalService implements the EvaluationService Connect handler. Every
// request runs on its own machine, so the service holds no VM state.
type EvalService struct {
	store *history.Store // nil disables run history
}

// NewEvalService creates an EvalService. store may be nil.
func NewEvalService(store *history.Store) *EvalService {
	return &EvalService{store: store}
}

// Evaluate compiles and executes a walc expression. Language errors are
// reported in the response; only storage problems fail the call.
func (s *EvalService) Evaluate(
	ctx context.Context,
	req *connect.Request[EvaluateRequest],
) (*connect.Response[EvaluateResponse], error) {
	source := req.Msg.Source
	if source == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("source is required"))
	}

	resp := &EvaluateResponse{}
	run := history.Run{Source: source}

	prog, err := interp.Compile(source)
	if err == nil {
		run.Bytecode = prog.Code
		var res *interp.Result
		res, err = prog.Run()
		if err == nil {
			resp.Success = true
			resp.Value = res.Value
			resp.Result = interp.FormatValue(res.Value)
			resp.Bindings = bindingsMap(res.Bindings)
			run.Result = resp.Result
		}
	}
	if err != nil {
		resp.ErrorMessage = err.Error()
		resp.Diagnostics = diagnosticsFromError(err)
		run.Error = resp.ErrorMessage
	}

	if s.store != nil {
		saved, err := s.store.Record(ctx, run)
		if err != nil {
			log.Errorf("recording run: %s", err)
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		resp.RunID = saved.ID
	}

	return connect.NewResponse(resp), nil
}

// CheckSyntax lexes and parses source without executing it.
func (s *EvalService) CheckSyntax(
	ctx context.Context,
	req *connect.Request[CheckSyntaxRequest],
) (*connect.Response[CheckSyntaxResponse], error) {
	source := req.Msg.Source
	if source == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("source is required"))
	}

	if _, err := interp.Compile(source); err != nil {
		return connect.NewResponse(&CheckSyntaxResponse{
			Valid:       false,
			Diagnostics: diagnosticsFromError(err),
		}), nil
	}
	return connect.NewResponse(&CheckSyntaxResponse{Valid: true}), nil
}

// Compile returns the program as an encoded chunk.
func (s *EvalService) Compile(
	ctx context.Context,
	req *connect.Request[CompileRequest],
) (*connect.Response[CompileResponse], error) {
	source := req.Msg.Source
	if source == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("source is required"))
	}

	prog, err := interp.Compile(source)
	if err != nil {
		return connect.NewResponse(&CompileResponse{
			Diagnostics: diagnosticsFromError(err),
		}), nil
	}

	chunk := dist.NewChunk(source, prog.Code, req.Msg.IncludeSource)
	data, err := dist.MarshalChunk(chunk)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&CompileResponse{
		Success: true,
		Chunk:   data,
		Hash:    hex.EncodeToString(chunk.Hash[:]),
	}), nil
}

// Disassemble lists the bytecode for source, or for raw bytecode.
func (s *EvalService) Disassemble(
	ctx context.Context,
	req *connect.Request[DisassembleRequest],
) (*connect.Response[DisassembleResponse], error) {
	code := req.Msg.Bytecode
	if req.Msg.Source != "" {
		prog, err := interp.Compile(req.Msg.Source)
		if err != nil {
			return connect.NewResponse(&DisassembleResponse{
				Diagnostics: diagnosticsFromError(err),
			}), nil
		}
		code = prog.Code
	} else if len(code) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("source or bytecode is required"))
	}

	return connect.NewResponse(&DisassembleResponse{
		Success: true,
		Listing: vm.Disassemble(code),
	}), nil
}

// History returns a recorded run by ID, or the most recent runs.
func (s *EvalService) History(
	ctx context.Context,
	req *connect.Request[HistoryRequest],
) (*connect.Response[HistoryResponse], error) {
	if s.store == nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, fmt.Errorf("run history is disabled"))
	}

	if id := req.Msg.ID; id != "" {
		run, err := s.store.Get(ctx, id)
		if errors.Is(err, history.ErrRunNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("run %q not found", id))
		}
		if err != nil {
			return nil, connect.NewError(connect.CodeInternal, err)
		}
		return connect.NewResponse(&HistoryResponse{Runs: []HistoryEntry{historyEntry(run)}}), nil
	}

	limit := req.Msg.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	runs, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	resp := &HistoryResponse{}
	for _, run := range runs {
		resp.Runs = append(resp.Runs, historyEntry(run))
	}
	return connect.NewResponse(resp), nil
}

func historyEntry(run *history.Run) HistoryEntry {
	return HistoryEntry{
		ID:           run.ID,
		Source:       run.Source,
		Result:       run.Result,
		ErrorMessage: run.Error,
		CreatedAt:    run.CreatedAt.UnixNano(),
	}
}

func bindingsMap(b *vm.Bindings) map[string]float64 {
	if b == nil || b.Len() == 0 {
		return nil
	}
	m := make(map[string]float64, b.Len())
	for _, name := range b.Names() {
		v, _ := b.Get(name)
		m[name] = v
	}
	return m
}

// diagnosticsFromError flattens compiler diagnostics or VM faults.
func diagnosticsFromError(err error) []Diagnostic {
	var out []Diagnostic
	for _, d := range compiler.Diagnostics(err) {
		out = append(out, Diagnostic{
			Severity: SeverityError,
			Line:     d.Line,
			Kind:     d.Kind.String(),
			Message:  d.Message,
		})
	}
	for _, f := range vm.Faults(err) {
		out = append(out, Diagnostic{
			Severity: SeverityError,
			Kind:     f.Kind.String(),
			Message:  f.Message,
		})
	}
	if out == nil && err != nil {
		out = append(out, Diagnostic{Severity: SeverityError, Message: err.Error()})
	}
	return out
}
