package server

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// Client calls a remote EvaluationService.
type Client struct {
	evaluate    *connect.Client[EvaluateRequest, EvaluateResponse]
	checkSyntax *connect.Client[CheckSyntaxRequest, CheckSyntaxResponse]
	compile     *connect.Client[CompileRequest, CompileResponse]
	disassemble *connect.Client[DisassembleRequest, DisassembleResponse]
	history     *connect.Client[HistoryRequest, HistoryResponse]
}

// NewClient creates a client for the service at baseURL, e.g.
// "http://localhost:4567".
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(cborCodec{})}, opts...)
	return &Client{
		evaluate:    connect.NewClient[EvaluateRequest, EvaluateResponse](httpClient, baseURL+EvaluateProcedure, opts...),
		checkSyntax: connect.NewClient[CheckSyntaxRequest, CheckSyntaxResponse](httpClient, baseURL+CheckSyntaxProcedure, opts...),
		compile:     connect.NewClient[CompileRequest, CompileResponse](httpClient, baseURL+CompileProcedure, opts...),
		disassemble: connect.NewClient[DisassembleRequest, DisassembleResponse](httpClient, baseURL+DisassembleProcedure, opts...),
		history:     connect.NewClient[HistoryRequest, HistoryResponse](httpClient, baseURL+HistoryProcedure, opts...),
	}
}

func (c *Client) Evaluate(ctx context.Context, req *connect.Request[EvaluateRequest]) (*connect.Response[EvaluateResponse], error) {
	return c.evaluate.CallUnary(ctx, req)
}

func (c *Client) CheckSyntax(ctx context.Context, req *connect.Request[CheckSyntaxRequest]) (*connect.Response[CheckSyntaxResponse], error) {
	return c.checkSyntax.CallUnary(ctx, req)
}

func (c *Client) Compile(ctx context.Context, req *connect.Request[CompileRequest]) (*connect.Response[CompileResponse], error) {
	return c.compile.CallUnary(ctx, req)
}

func (c *Client) Disassemble(ctx context.Context, req *connect.Request[DisassembleRequest]) (*connect.Response[DisassembleResponse], error) {
	return c.disassemble.CallUnary(ctx, req)
}

func (c *Client) History(ctx context.Context, req *connect.Request[HistoryRequest]) (*connect.Response[HistoryResponse], error) {
	return c.history.CallUnary(ctx, req)
}
