// Package observability wires the query engine to OpenTelemetry.
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.MeterConfigFrom(cfg))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewQueryMetrics(observability.Meter("seqkit"))
//	query.Configure(query.WithObserver(metrics))
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.TracerConfigFrom(cfg))
//	defer tp.Shutdown(ctx)
//
//	top, err := observability.Evaluate(ctx, "top-scores", metrics, func(context.Context) ([]int, error) {
//		return query.OrderByDescending(scores, score).Take(3).ToSlice()
//	})
package observability
