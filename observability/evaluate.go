package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
)

// Evaluate runs fn inside a query.evaluate span named after the query. A
// failure marks the span as errored and tags it with the error code; it is
// also logged at debug level with the trace IDs. When metrics is non-nil the
// evaluation duration is recorded with its status.
//
//	top, err := observability.Evaluate(ctx, "top-scores", metrics, func(context.Context) ([]int, error) {
//	    return query.OrderByDescending(scores, score).Take(3).ToSlice()
//	})
func Evaluate[T any](ctx context.Context, name string, metrics *QueryMetrics, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := StartSpan(ctx, SpanEvaluate,
		trace.WithAttributes(attribute.String(AttrQueryName, name)),
	)
	defer span.End()

	start := time.Now()
	v, err := fn(ctx)
	elapsed := time.Since(start)

	status := StatusOK
	if err != nil {
		status = StatusError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		code := string(errors.CodeOf(err))
		span.SetAttributes(attribute.String(AttrErrorCode, code))
		logger.Get("observability").WithSpan(ctx).Debug("evaluation failed", logger.Fields(
			AttrQueryName, name,
			logger.FieldCode, code,
			logger.FieldError, err.Error(),
		))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(attribute.String(AttrStatus, status))

	if metrics != nil {
		metrics.RecordEvaluation(ctx, name, status, elapsed)
	}
	return v, err
}
