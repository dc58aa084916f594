package fetch

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/mo"
)

type fetchContext struct {
	duration prometheus.Observer
}

type contextKey struct{}

// WithContext attaches a request duration observer to all fetches made with the context.
func WithContext(ctx context.Context, duration prometheus.Observer) context.Context {
	return context.WithValue(ctx, contextKey{}, &fetchContext{
		duration: duration,
	})
}

func getContext(ctx context.Context) mo.Option[*fetchContext] {
	context, ok := ctx.Value(contextKey{}).(*fetchContext)
	return mo.TupleToOption(context, ok)
}

func observeDuration(ctx context.Context, startTime time.Time) {
	if fetchCtx, ok := getContext(ctx).Get(); ok {
		fetchCtx.duration.Observe(time.Since(startTime).Seconds())
	}
}
