// Package http exposes document editing and evaluation over HTTP.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/nodegraph"
	"github.com/aretw0/nodegraph/internal/editor"
	"github.com/aretw0/nodegraph/internal/logging"
	"github.com/aretw0/nodegraph/internal/runtime"
	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/observability"
	"github.com/aretw0/nodegraph/pkg/ports"
	"github.com/aretw0/nodegraph/pkg/registry"
	"github.com/go-chi/chi/v5"
)

//go:generate go tool oapi-codegen -package http -generate types,chi-server,spec -o api.gen.go ../../../api/openapi.yaml

const maxBodyBytes = 4 << 20

// Documents gives serialized access to open documents.
type Documents interface {
	WithDocument(ctx context.Context, name string, fn func(context.Context, *nodegraph.Document) error) error
	List() []string
}

// Server implements the generated ServerInterface.
type Server struct {
	Docs    Documents
	Catalog *registry.Registry
	Streams *StreamManager
	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// Ensure Server implements ServerInterface
var _ ServerInterface = (*Server)(nil)

// Option configures the handler.
type Option func(*Server)

// WithMetrics serves /metrics from m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.Metrics = m
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates the HTTP handler for docs.
func NewHandler(docs Documents, catalog *registry.Registry, opts ...Option) http.Handler {
	s := &Server{
		Docs:    docs,
		Catalog: catalog,
		Streams: NewStreamManager(),
		Logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		spec, err := rawSpec()
		if err != nil {
			http.Error(w, "Failed to load spec", http.StatusInternalServerError)
			s.Logger.Error("failed to load OpenAPI spec", "error", err)
			return
		}
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(spec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}

	handler := HandlerWithOptions(s, ChiServerOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			s.fail(w, "bind", fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err))
		},
	})
	return enableCORS(handler)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Nodegraph API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Health{Status: "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}
	writeJSON(w, http.StatusOK, Info{
		App:        "nodegraph-http",
		Version:    strings.TrimSpace(nodegraph.Version),
		ApiVersion: apiVersion,
		Requests:   editor.RequestNames(),
	})
}

// GetTypes handles GET /types.
func (s *Server) GetTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Catalog.Types())
}

// ListDocuments handles GET /documents.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Docs.List())
}

// GetGraph handles GET /documents/{name}/graph.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request, name DocumentName) {
	var resp Graph
	err := s.Docs.WithDocument(r.Context(), name, func(ctx context.Context, doc *nodegraph.Document) error {
		snapshot, err := doc.Snapshot(ctx)
		if err != nil {
			return err
		}
		resp = Graph{
			Generation:       doc.Generation(),
			Breadcrumb:       doc.Breadcrumb(),
			Selected:         doc.Selection(),
			SelectionActions: doc.SelectionActions(),
			Snapshot:         snapshot,
		}
		return nil
	})
	if err != nil {
		s.fail(w, "GetGraph", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// PostRequests handles POST /documents/{name}/requests. The body is one
// request envelope or an array of them; they are dispatched in order.
func (s *Server) PostRequests(w http.ResponseWriter, r *http.Request, name DocumentName) {
	var body PostRequestsJSONRequestBody
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil {
		s.fail(w, "PostRequests", fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err))
		return
	}
	reqs, err := decodeRequests(body)
	if err != nil {
		s.fail(w, "PostRequests", err)
		return
	}

	resp := EditResult{Responses: []Envelope{}}
	err = s.Docs.WithDocument(r.Context(), name, func(ctx context.Context, doc *nodegraph.Document) error {
		responses, dispatchErr := doc.Dispatch(ctx, reqs...)
		resp.Generation = doc.Generation()
		for _, out := range responses {
			data, err := editor.EncodeResponse(out)
			if err != nil {
				return err
			}
			resp.Responses = append(resp.Responses, data)
			s.Streams.Broadcast(name, string(data))
		}
		if dispatchErr != nil {
			resp.Errors = ptr(splitErrors(dispatchErr))
		}
		return nil
	})
	if err != nil {
		s.fail(w, "PostRequests", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Evaluate handles POST /documents/{name}/evaluate. A failed primary output
// is an error; failed secondary outputs are listed in the response.
func (s *Server) Evaluate(w http.ResponseWriter, r *http.Request, name DocumentName) {
	var resp Evaluation
	err := s.Docs.WithDocument(r.Context(), name, func(ctx context.Context, doc *nodegraph.Document) error {
		res, err := doc.Evaluate(ctx)
		if err != nil {
			return err
		}
		resp = Evaluation{
			Generation:    doc.Generation(),
			Kind:          res.Output.Kind(),
			Output:        runtime.Describe(res.Output),
			Outputs:       []string{},
			Intermediates: make(map[string]string, len(res.Intermediates)),
		}
		for _, out := range res.Outputs {
			resp.Outputs = append(resp.Outputs, runtime.Describe(out))
		}
		for key, im := range res.Intermediates {
			resp.Intermediates[key] = runtime.Describe(im.Value)
		}
		if failed := res.OutputErrors(); len(failed) > 0 {
			resp.Errors = &failed
		}
		return nil
	})
	if err != nil {
		s.fail(w, "Evaluate", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeRequests(raw EditRequests) ([]editor.Request, error) {
	var items []json.RawMessage
	if trimmed := strings.TrimSpace(string(raw)); strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
		}
	} else {
		items = []json.RawMessage{raw}
	}

	reqs := make([]editor.Request, 0, len(items))
	for i, item := range items {
		req, err := editor.DecodeRequest(item)
		if err != nil {
			return nil, fmt.Errorf("request %d: %w", i, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func splitErrors(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ports.ErrDocumentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidPayload):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrTypeMismatch), errors.Is(err, domain.ErrCyclicNetwork), errors.Is(err, runtime.ErrOperationPanicked):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.Logger.Error("request failed", "op", op, "error", err)
	} else {
		s.Logger.Warn("request rejected", "op", op, "status", status, "error", err)
	}
	writeJSON(w, status, Error{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ptr[T any](v T) *T {
	return &v
}
