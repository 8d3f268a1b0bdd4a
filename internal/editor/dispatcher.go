package editor

import (
	"context"
	"errors"

	"github.com/aretw0/nodegraph/pkg/domain"
	"github.com/aretw0/nodegraph/pkg/observability"
)

// Dispatcher drains a FIFO queue of requests through a Handler. A follow-up is
// processed only after the request that emitted it, and after every request
// queued before it.
type Dispatcher struct {
	handler *Handler
}

// NewDispatcher creates a Dispatcher for h.
func NewDispatcher(h *Handler) *Dispatcher {
	return &Dispatcher{handler: h}
}

// Handler returns the underlying handler.
func (d *Dispatcher) Handler() *Handler {
	return d.handler
}

// Dispatch processes reqs and every follow-up they emit until the queue is empty.
// Failed requests are logged and skipped; their errors are joined in the result.
func (d *Dispatcher) Dispatch(ctx context.Context, root *domain.NodeNetwork, reqs ...Request) ([]Response, error) {
	h := d.handler
	queue := append([]Request(nil), reqs...)

	var responses []Response
	var errs []error
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		req := queue[0]
		queue = queue[1:]

		out, err := h.Process(ctx, root, req)
		responses = append(responses, out.Responses...)
		queue = append(queue, out.Requests...)

		if err != nil {
			outcome := observability.OutcomeError
			if isRejection(err) {
				outcome = observability.OutcomeRejected
			}
			h.logger.Warn("edit request failed", "request", req.Name(), "outcome", outcome, "error", err)
			h.metrics.EditRequest(req.Name(), outcome)
			errs = append(errs, err)
			continue
		}
		h.logger.Debug("edit request processed", "request", req.Name(), "followups", len(out.Requests))
		h.metrics.EditRequest(req.Name(), observability.OutcomeOK)
	}
	return responses, errors.Join(errs...)
}

// isRejection reports whether err is a precondition failure rather than a fault.
func isRejection(err error) bool {
	for _, target := range []error{
		domain.ErrBoundaryNode,
		domain.ErrNodeNotFound,
		domain.ErrNodeExists,
		domain.ErrInvalidInputIndex,
		domain.ErrInvalidOutputIndex,
		domain.ErrCyclicNetwork,
		domain.ErrInvalidPayload,
		domain.ErrUnknownNodeType,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
