// Package mcpserver exposes the market views as Model Context Protocol tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"net/http"

	"index-pulse/internal/domain"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/trace"
)

type MarketReader interface {
	MarketView(ctx context.Context) domain.MarketView
	FreshMarketView(ctx context.Context) (domain.MarketView, error)
	PreOpenView(ctx context.Context) domain.PreOpenView
	TriggerPreOpenScan(ctx context.Context) (domain.PreOpenView, error)
}

type MarketViewInput struct {
	Fresh bool `json:"fresh,omitempty" jsonschema:"perform a one-off upstream fetch instead of returning the cached view"`
}

type PreOpenViewInput struct{}

type TriggerScanInput struct{}

type tools struct {
	tracer trace.Tracer
	market MarketReader
}

// New builds an MCP server with the market_view, preopen_view and
// trigger_preopen_scan tools.
func New(tracer trace.Tracer, market MarketReader, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "index-pulse", Version: version}, nil)
	t := &tools{tracer: tracer, market: market}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "market_view",
		Description: "Latest NIFTY 50 quote with technical indicators, sentiment and entry/exit plan.",
	}, t.marketView)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "preopen_view",
		Description: "Latest pre-open gainers, losers, sector impact and opening gap prediction.",
	}, t.preopenView)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "trigger_preopen_scan",
		Description: "Run a pre-open scan now, outside the scheduled window, and return the result.",
	}, t.triggerScan)
	return server
}

// Handler serves the server over streamable HTTP.
func Handler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)
}

func (t *tools) marketView(ctx context.Context, _ *mcp.CallToolRequest, in MarketViewInput) (*mcp.CallToolResult, any, error) {
	ctx, span := t.tracer.Start(ctx, "mcp.market-view")
	defer span.End()

	if !in.Fresh {
		return jsonResult(t.market.MarketView(ctx))
	}
	view, err := t.market.FreshMarketView(ctx)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return jsonResult(view)
}

func (t *tools) preopenView(ctx context.Context, _ *mcp.CallToolRequest, _ PreOpenViewInput) (*mcp.CallToolResult, any, error) {
	ctx, span := t.tracer.Start(ctx, "mcp.preopen-view")
	defer span.End()

	return jsonResult(t.market.PreOpenView(ctx))
}

func (t *tools) triggerScan(ctx context.Context, _ *mcp.CallToolRequest, _ TriggerScanInput) (*mcp.CallToolResult, any, error) {
	ctx, span := t.tracer.Start(ctx, "mcp.trigger-preopen-scan")
	defer span.End()

	view, err := t.market.TriggerPreOpenScan(ctx)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return jsonResult(view)
}

func jsonResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: string(domain.KindOf(err)) + ": " + err.Error()}},
	}
}
