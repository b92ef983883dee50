package services

import (
	"context"

	"github.com/streamvault/accountd/internal/logging"
)

// compensations is an ordered stack of cleanup actions, one pushed after each
// committed side effect of a multi-step operation. When a later step fails,
// unwind runs them in reverse order. A cleanup failure is logged and never
// masks the primary error.
type compensations struct {
	steps []func(ctx context.Context) error
}

func (c *compensations) push(fn func(ctx context.Context) error) {
	c.steps = append(c.steps, fn)
}

func (c *compensations) unwind(ctx context.Context, logger logging.Logger) {
	for i := len(c.steps) - 1; i >= 0; i-- {
		if err := c.steps[i](ctx); err != nil {
			logger.Error(ctx, "compensating cleanup failed", "error", err.Error())
		}
	}
	c.steps = nil
}
