// Package runtime evaluates proto networks produced by the compiler, renders
// thumbnails of intermediate values and runs evaluations on background workers.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/nodegraph/internal/compiler"
	"github.com/aretw0/nodegraph/internal/logging"
	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/observability"
	"github.com/aretw0/nodegraph/pkg/registry"
)

var (
	// ErrUnresolvedRef is returned when a proto input refers to a node that has
	// not been evaluated. It means the proto network is malformed.
	ErrUnresolvedRef = errors.New("unresolved proto reference")
	// ErrOperationPanicked is returned when a primitive operation panics.
	ErrOperationPanicked = errors.New("operation panicked")
)

// EvaluationError reports the node whose operation failed.
type EvaluationError struct {
	Path []domain.NodeID
	Type string
	Err  error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate %s (%s): %v", compiler.PathKey(e.Path), e.Type, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one evaluation.
type Result struct {
	// Output is the value of the primary output.
	Output  domain.TaggedValue
	Outputs []domain.TaggedValue
	// Errors holds, per output, the failure that kept it from evaluating.
	// A failed output reads as None in Outputs.
	Errors []error
	// Failures lists the nodes whose own operation failed, in evaluation
	// order. Nodes that only read a failed node are not listed.
	Failures []*EvaluationError
	// Intermediates holds the first output of every evaluated node, keyed by
	// compiler.PathKey of its document path. Lambda bodies are not recorded.
	Intermediates map[string]Intermediate
}

// Err returns the failure of the primary output, if any.
func (r *Result) Err() error {
	if r == nil || len(r.Errors) == 0 {
		return nil
	}
	return r.Errors[0]
}

// OutputErrors describes the failed outputs as "output <index>: <error>".
func (r *Result) OutputErrors() []string {
	var out []string
	for i, err := range r.Errors {
		if err != nil {
			out = append(out, fmt.Sprintf("output %d: %v", i, err))
		}
	}
	return out
}

// Intermediate is the first output of one evaluated node.
type Intermediate struct {
	Path  []domain.NodeID
	Value domain.TaggedValue
}

// Executor evaluates proto networks.
type Executor struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// Option configures the Executor.
type Option func(*Executor)

// WithLogger configures a logger for the Executor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithMetrics records evaluation counts and durations.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Executor) {
		e.metrics = m
	}
}

// NewExecutor creates an Executor.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs every node of p in order. A failing operation, including a
// type mismatch, poisons that node and every node reading it, but independent
// nodes and outputs still evaluate. The Result is returned whenever the run
// completes, and the error is the failure of the primary output, if any.
// Only cancellation returns a nil Result.
func (e *Executor) Evaluate(ctx context.Context, p *compiler.ProtoNetwork) (*Result, error) {
	start := time.Now()
	res, err := e.evaluate(ctx, p)
	elapsed := time.Since(start)
	if err != nil {
		e.metrics.Evaluation(observability.OutcomeError, elapsed)
		e.logger.Warn("evaluation cancelled", "error", err, "elapsed", elapsed)
		return nil, err
	}
	for _, f := range res.Failures {
		e.logger.Warn("node failed", "path", compiler.PathKey(f.Path), "type", f.Type, "error", f.Err)
	}
	if err := res.Err(); err != nil {
		e.metrics.Evaluation(observability.OutcomeError, elapsed)
		e.logger.Warn("evaluation failed", "error", err, "elapsed", elapsed)
		return res, err
	}
	e.metrics.Evaluation(observability.OutcomeOK, elapsed)
	e.logger.Debug("evaluation finished", "nodes", len(p.Nodes), "failures", len(res.Failures), "elapsed", elapsed)
	return res, nil
}

func (e *Executor) evaluate(ctx context.Context, p *compiler.ProtoNetwork) (*Result, error) {
	root := newScope(nil)
	res := &Result{Intermediates: make(map[string]Intermediate, len(p.Nodes))}
	failures, err := e.run(ctx, p.Nodes, root, res.Intermediates)
	if err != nil {
		return nil, err
	}
	res.Failures = failures
	res.Outputs = make([]domain.TaggedValue, len(p.Outputs))
	res.Errors = make([]error, len(p.Outputs))
	for i, out := range p.Outputs {
		v, err := e.resolve(root, out)
		if err != nil {
			v, res.Errors[i] = domain.None{}, err
		}
		res.Outputs[i] = v
	}
	res.Output = domain.None{}
	if len(res.Outputs) > 0 {
		res.Output = res.Outputs[0]
	}
	return res, nil
}

// run evaluates nodes into s. A node that fails is recorded in s as failed,
// and so is every node with an input resolving to a failed node. The
// returned failures are the nodes that failed on their own. The error is
// non-nil only when ctx is done.
func (e *Executor) run(ctx context.Context, nodes []compiler.ProtoNode, s *scope, intermediates map[string]Intermediate) ([]*EvaluationError, error) {
	var failures []*EvaluationError
	fail := func(node compiler.ProtoNode, err error) {
		failure := &EvaluationError{Path: node.Path, Type: node.Type, Err: err}
		s.failed[node.ID] = failure
		failures = append(failures, failure)
	}

nodes:
	for _, node := range nodes {
		if err := ctx.Err(); err != nil {
			return failures, err
		}
		values := make([]domain.TaggedValue, len(node.Inputs))
		for i, in := range node.Inputs {
			v, err := e.resolve(s, in)
			var upstream *EvaluationError
			switch {
			case errors.As(err, &upstream):
				s.failed[node.ID] = upstream
				continue nodes
			case err != nil:
				fail(node, err)
				continue nodes
			}
			values[i] = v
		}

		outs, err := call(ctx, node, registry.NewArgs(node.Type, values...))
		if err != nil {
			fail(node, err)
			continue
		}
		s.values[node.ID] = outs
		if intermediates != nil && len(outs) > 0 {
			intermediates[compiler.PathKey(node.Path)] = Intermediate{Path: node.Path, Value: outs[0]}
		}
	}
	return failures, nil
}

func call(ctx context.Context, node compiler.ProtoNode, args registry.Args) (outs []domain.TaggedValue, err error) {
	if node.Operation == nil {
		return nil, fmt.Errorf("node type %q has no operation", node.Type)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrOperationPanicked, r)
		}
	}()
	return node.Operation(ctx, args)
}

func (e *Executor) resolve(s *scope, in compiler.ProtoInput) (domain.TaggedValue, error) {
	switch v := in.(type) {
	case compiler.Const:
		return v.Value, nil
	case compiler.Ref:
		outs, failure, ok := s.lookup(v.Node)
		if failure != nil {
			return nil, failure
		}
		if !ok {
			return nil, fmt.Errorf("%w: node %d", ErrUnresolvedRef, v.Node)
		}
		if v.Output < 0 || v.Output >= len(outs) || outs[v.Output] == nil {
			return domain.None{}, nil
		}
		return outs[v.Output], nil
	case compiler.Argument:
		return s.argument(), nil
	case compiler.Lambda:
		return e.lambda(s, v.Body), nil
	default:
		return nil, fmt.Errorf("unsupported proto input %T", in)
	}
}

// lambda wraps body as a function value. Each call evaluates the body in a
// fresh scope whose parent is s, so values shared by reference come from the
// enclosing evaluation and per-call values never leak between calls.
func (e *Executor) lambda(s *scope, body *compiler.ProtoNetwork) domain.Func {
	name := "identity"
	if n := len(body.Nodes); n > 0 {
		name = body.Nodes[n-1].Type
	}
	return domain.Func{
		Name: name,
		Call: func(ctx context.Context, arg domain.TaggedValue) (domain.TaggedValue, error) {
			child := newScope(s)
			child.arg, child.hasArg = arg, true
			if _, err := e.run(ctx, body.Nodes, child, nil); err != nil {
				return nil, err
			}
			return e.resolve(child, body.Output())
		},
	}
}

type scope struct {
	parent *scope
	values map[compiler.ProtoID][]domain.TaggedValue
	failed map[compiler.ProtoID]*EvaluationError
	arg    domain.TaggedValue
	hasArg bool
}

func newScope(parent *scope) *scope {
	return &scope{
		parent: parent,
		values: make(map[compiler.ProtoID][]domain.TaggedValue),
		failed: make(map[compiler.ProtoID]*EvaluationError),
	}
}

// lookup finds the outputs of id, or the failure that poisoned it.
func (s *scope) lookup(id compiler.ProtoID) ([]domain.TaggedValue, *EvaluationError, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if outs, ok := cur.values[id]; ok {
			return outs, nil, true
		}
		if failure, ok := cur.failed[id]; ok {
			return nil, failure, true
		}
	}
	return nil, nil, false
}

func (s *scope) argument() domain.TaggedValue {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.hasArg {
			if cur.arg == nil {
				return domain.None{}
			}
			return cur.arg
		}
	}
	return domain.None{}
}
