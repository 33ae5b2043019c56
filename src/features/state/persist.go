package state

import (
	"context"
	"log/slog"
)

// persister applies store mutations to the gateway asynchronously, in the
// order they were enqueued. A failed write is logged and dropped; the
// in-memory store stays authoritative for the session either way.
type persister struct {
	ops     chan persistOp
	logger  *slog.Logger
	flushed chan struct{}
}

type persistOp struct {
	name string
	fn   func(context.Context) error
}

func newPersister(logger *slog.Logger) *persister {
	return &persister{
		ops:     make(chan persistOp, 256),
		logger:  logger,
		flushed: make(chan struct{}),
	}
}

// Run consumes the write-behind queue until ctx is cancelled.
func (p *persister) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.drain(ctx)
			close(p.flushed)
			return
		case op := <-p.ops:
			p.apply(ctx, op)
		}
	}
}

// drain flushes whatever is still queued at shutdown.
func (p *persister) drain(ctx context.Context) {
	for {
		select {
		case op := <-p.ops:
			p.apply(context.WithoutCancel(ctx), op)
		default:
			return
		}
	}
}

func (p *persister) apply(ctx context.Context, op persistOp) {
	if err := op.fn(ctx); err != nil {
		p.logger.Error("Failed to persist state change", "op", op.name, "error", err)
	}
}

// enqueue hands a write to the background queue, blocking when it is full.
func (p *persister) enqueue(name string, fn func(context.Context) error) {
	p.ops <- persistOp{name: name, fn: fn}
}
