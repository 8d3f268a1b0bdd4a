// Package file loads node networks from YAML or JSON documents on disk.
//
// A document lists its nodes with their inputs, plus the network boundary:
//
//	outputs: [{node: 2}]
//	nodes:
//	  - id: 1
//	    type: Number
//	    inputs: [3]
//	  - id: 2
//	    type: Add
//	    inputs:
//	      - link: 1
//	      - {value: 4, exposed: true}
//
// Inputs are either a bare value (a hidden literal), a literal map with
// optional kind and exposed, a link with output and lambda, or
// {boundary: true}. A node holding a network instead of a type is nested.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/nodegraph/internal/compiler"
	"github.com/aretw0/nodegraph/internal/logging"
	"github.com/aretw0/nodegraph/internal/validator"
	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/ports"
	"gopkg.in/yaml.v3"
)

var extensions = []string{".yaml", ".yml", ".json"}

// Loader implements ports.DocumentLoader over a directory of documents.
// The document name is the file name without its extension.
type Loader struct {
	dir     string
	catalog compiler.Catalog
	logger  *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithCatalog fills inputs omitted from a node with the type's defaults and
// rejects documents that fail validation.
func WithCatalog(catalog compiler.Catalog) Option {
	return func(l *Loader) {
		l.catalog = catalog
	}
}

// WithLogger configures a logger for validation warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New creates a Loader reading from dir.
func New(dir string, opts ...Option) *Loader {
	l := &Loader{dir: dir, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadDocument parses the named document. Every call returns a fresh network.
func (l *Loader) LoadDocument(ctx context.Context, name string) (*domain.NodeNetwork, error) {
	for _, ext := range extensions {
		path := filepath.Join(l.dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return l.LoadFile(path)
		}
	}
	return nil, fmt.Errorf("%w: %s", ports.ErrDocumentNotFound, name)
}

// ListDocuments returns the names of all documents in the directory.
func (l *Loader) ListDocuments(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	var names []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || !slices.Contains(extensions, ext) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// LoadFile parses a single document, choosing the format from its extension.
func (l *Loader) LoadFile(path string) (*domain.NodeNetwork, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	n, err := l.Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return n, nil
}

// Parse decodes a document in the given format ("yaml" or "json").
func (l *Loader) Parse(data []byte, format string) (*domain.NodeNetwork, error) {
	var raw map[string]any
	switch format {
	case "json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
		}
	}

	var doc documentFile
	if err := decode(raw, &doc, true); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	n, err := doc.network()
	if err != nil {
		return nil, err
	}

	if l.catalog == nil {
		return n, nil
	}
	l.fillDefaults(n)
	report := validator.Validate(n, l.catalog)
	for _, w := range report.Warnings {
		l.logger.Warn("document warning", "warning", w)
	}
	if err := report.Err(); err != nil {
		return nil, err
	}
	return n, nil
}

// fillDefaults appends the catalog defaults for inputs a node left out.
func (l *Loader) fillDefaults(n *domain.NodeNetwork) {
	for _, node := range n.Nodes {
		if nested := node.Network(); nested != nil {
			l.fillDefaults(nested)
			continue
		}
		t, err := l.catalog.Resolve(node.TypeName())
		if err != nil {
			continue
		}
		for i := len(node.Inputs); i < len(t.Inputs); i++ {
			if def, ok := l.catalog.DefaultInput(node, i); ok {
				node.Inputs = append(node.Inputs, def)
			}
		}
	}
}
