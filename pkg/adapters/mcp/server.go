// Package mcp exposes document editing and evaluation as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/nodegraph"
	"github.com/aretw0/nodegraph/internal/editor"
	"github.com/aretw0/nodegraph/internal/logging"
	"github.com/aretw0/nodegraph/internal/runtime"
	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/registry"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Documents gives serialized access to open documents.
type Documents interface {
	WithDocument(ctx context.Context, name string, fn func(context.Context, *nodegraph.Document) error) error
	List() []string
}

// EditResult is returned by the edit tool.
type EditResult struct {
	Generation uint64            `json:"generation" jsonschema_description:"Network generation after the edit"`
	Responses  []json.RawMessage `json:"responses" jsonschema_description:"Editor responses in emission order"`
	Errors     []string          `json:"errors,omitempty" jsonschema_description:"Requests that were rejected"`
}

// EvaluateResult is returned by the evaluate tool.
type EvaluateResult struct {
	Generation uint64           `json:"generation" jsonschema_description:"Network generation that was evaluated"`
	Kind       domain.ValueKind `json:"kind" jsonschema_description:"Kind of the primary output"`
	Output     string           `json:"output" jsonschema_description:"Summary of the primary output"`
	Outputs    []string         `json:"outputs" jsonschema_description:"Summaries of every network output"`
	Errors     []string         `json:"errors,omitempty" jsonschema_description:"Failures of secondary outputs that did not evaluate"`
}

// Server wraps the documents and exposes them as an MCP server.
type Server struct {
	docs      Documents
	catalog   *registry.Registry
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP server.
func NewServer(docs Documents, catalog *registry.Registry, opts ...Option) *Server {
	s := &Server{
		docs:      docs,
		catalog:   catalog,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("nodegraph-mcp", strings.TrimSpace(nodegraph.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the server over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_node_types",
		mcp.WithDescription("List the node types that can be created."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(s.catalog.Types())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get a snapshot of the active network of a document."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Document name")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, _ := request.GetArguments()["document"].(string)
		var snapshot nodegraph.Snapshot
		err := s.docs.WithDocument(ctx, name, func(ctx context.Context, doc *nodegraph.Document) error {
			var err error
			snapshot, err = doc.Snapshot(ctx)
			return err
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("get_graph failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(snapshot)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})

	editTool := mcp.NewTool("edit",
		mcp.WithDescription("Apply edit requests to a document. Each request is an object {\"request\": name, \"params\": {...}}."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Document name")),
		mcp.WithString("requests", mcp.Required(), mcp.Description("JSON array of request envelopes. Known requests: "+strings.Join(editor.RequestNames(), ", "))),
		mcp.WithOutputSchema[EditResult](),
	)
	s.mcpServer.AddTool(editTool, mcp.NewStructuredToolHandler(s.handleEdit))

	evaluateTool := mcp.NewTool("evaluate",
		mcp.WithDescription("Evaluate a document and summarize its outputs."),
		mcp.WithString("document", mcp.Required(), mcp.Description("Document name")),
		mcp.WithOutputSchema[EvaluateResult](),
	)
	s.mcpServer.AddTool(evaluateTool, mcp.NewStructuredToolHandler(s.handleEvaluate))
}

func (s *Server) handleEdit(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (EditResult, error) {
	name, _ := args["document"].(string)
	raw, _ := args["requests"].(string)

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return EditResult{}, fmt.Errorf("requests must be a JSON array: %w", err)
	}
	reqs := make([]editor.Request, 0, len(items))
	for i, item := range items {
		req, err := editor.DecodeRequest(item)
		if err != nil {
			return EditResult{}, fmt.Errorf("request %d: %w", i, err)
		}
		reqs = append(reqs, req)
	}

	result := EditResult{Responses: []json.RawMessage{}}
	err := s.docs.WithDocument(ctx, name, func(ctx context.Context, doc *nodegraph.Document) error {
		responses, dispatchErr := doc.Dispatch(ctx, reqs...)
		result.Generation = doc.Generation()
		for _, out := range responses {
			data, err := editor.EncodeResponse(out)
			if err != nil {
				return err
			}
			result.Responses = append(result.Responses, data)
		}
		if dispatchErr != nil {
			s.logger.Warn("MCP edit: requests rejected", "document", name, "error", dispatchErr)
			if joined, ok := dispatchErr.(interface{ Unwrap() []error }); ok {
				for _, e := range joined.Unwrap() {
					result.Errors = append(result.Errors, e.Error())
				}
			} else {
				result.Errors = append(result.Errors, dispatchErr.Error())
			}
		}
		return nil
	})
	if err != nil {
		return EditResult{}, fmt.Errorf("edit failed: %w", err)
	}
	return result, nil
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (EvaluateResult, error) {
	name, _ := args["document"].(string)

	var result EvaluateResult
	err := s.docs.WithDocument(ctx, name, func(ctx context.Context, doc *nodegraph.Document) error {
		res, err := doc.Evaluate(ctx)
		if err != nil {
			return err
		}
		result = EvaluateResult{
			Generation: doc.Generation(),
			Kind:       res.Output.Kind(),
			Output:     runtime.Describe(res.Output),
			Errors:     res.OutputErrors(),
		}
		for _, out := range res.Outputs {
			result.Outputs = append(result.Outputs, runtime.Describe(out))
		}
		return nil
	})
	if err != nil {
		return EvaluateResult{}, fmt.Errorf("evaluate failed: %w", err)
	}
	return result, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("nodegraph://documents", "Open documents",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, _ := json.Marshal(s.docs.List())
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "nodegraph://documents",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
