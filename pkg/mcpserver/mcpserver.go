// Package mcpserver exposes analysis and model-catalog tools over the Model
// Context Protocol, using the official MCP Go SDK.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/vectora-ai/vectora/pkg/session"
)

// Handler executes a tool with the given JSON input. The returned value is
// sent as JSON text and, when it encodes to a JSON object, as structured
// content too.
type Handler func(ctx context.Context, input json.RawMessage) (any, error)

// Tool is an executable tool with a name, description, JSON Schema, and handler.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Handler     Handler
}

// MCPServer serves tools over the MCP protocol.
type MCPServer struct {
	server *mcp.Server
}

// New creates a new MCPServer with the given name and version.
func New(name, version string) *MCPServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
	}, nil)

	return &MCPServer{server: server}
}

// Register adds tools to the server.
func (s *MCPServer) Register(tools ...Tool) {
	for _, t := range tools {
		s.server.AddTool(toSDKTool(t), toSDKHandler(t.Handler))
	}
}

// Serve reads requests from in and writes responses to out. It blocks until
// ctx is cancelled or the transport closes.
func (s *MCPServer) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	transport := &mcp.IOTransport{
		Reader: io.NopCloser(in),
		Writer: nopWriteCloser{out},
	}

	return s.run(ctx, transport)
}

func (s *MCPServer) run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

func toSDKTool(t Tool) *mcp.Tool {
	return &mcp.Tool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: t.InputSchema,
	}
}

// toSDKHandler reports handler errors and rejected session responses as tool
// errors rather than protocol errors. A rejected response keeps its message
// as text and its full body (model, capabilities) as structured content.
func toSDKHandler(h Handler) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.Params.Arguments
		if args == nil {
			args = json.RawMessage("{}")
		}

		out, err := h(ctx, args)
		if err != nil {
			return errorResult(err.Error(), nil), nil
		}

		if resp, ok := out.(session.Response); ok && !resp.Success {
			return errorResult(resp.Message, resp), nil
		}

		data, err := json.Marshal(out)
		if err != nil {
			return errorResult(fmt.Sprintf("mcpserver: marshal: %v", err), nil), nil
		}

		return &mcp.CallToolResult{
			Content:           []mcp.Content{&mcp.TextContent{Text: string(data)}},
			StructuredContent: structured(data, out),
		}, nil
	}
}

func errorResult(msg string, body any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: msg}},
		StructuredContent: body,
		IsError:           true,
	}
}

// structured returns v when its encoding is a JSON object; MCP structured
// content may not be an array or scalar.
func structured(data []byte, v any) any {
	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	return v
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
