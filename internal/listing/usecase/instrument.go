// internal/listing/usecase/instrument.go
package usecase

import (
	"context"
	"time"

	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/apperr"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/rental-listing/internal/platform/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/Abdurahmanit/GroupProject/rental-listing/internal/listing/usecase"

// instrumentation wraps every public operation with a span, a latency
// observation and error normalization.
type instrumentation struct {
	tracer  trace.Tracer
	metrics *metrics.Manager
	logger  *logger.Logger
}

func newInstrumentation(m *metrics.Manager, log *logger.Logger) instrumentation {
	return instrumentation{
		tracer:  otel.Tracer(tracerName),
		metrics: m,
		logger:  log,
	}
}

// start opens a span for op. The returned finish func must be called with the
// operation's error; it returns the normalized error (or nil).
func (in instrumentation) start(ctx context.Context, op string) (context.Context, func(error) error) {
	ctx, span := in.tracer.Start(ctx, op)
	began := time.Now()

	return ctx, func(err error) error {
		defer span.End()
		in.metrics.OperationLatency.WithLabelValues(op).Observe(time.Since(began).Seconds())
		if err == nil {
			return nil
		}
		norm := apperr.Normalize(op, err)
		kind := apperr.KindOf(norm)
		span.RecordError(norm)
		span.SetStatus(codes.Error, string(kind))
		in.metrics.OperationErrors.WithLabelValues(op, string(kind)).Inc()
		in.logger.Error(op+": failed", zap.String("kind", string(kind)), zap.Error(err))
		return norm
	}
}
