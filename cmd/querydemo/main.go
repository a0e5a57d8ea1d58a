// Command querydemo runs a handful of queries through the engine with
// logging, metrics and tracing wired from configuration.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kbukum/seqkit/config"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/observability"
	"github.com/kbukum/seqkit/query"
	"github.com/kbukum/seqkit/version"
)

type order struct {
	ID       int
	Customer string
	Total    float64
}

type customer struct {
	Name   string
	Region string
}

func main() {
	cfgPath := flag.String("config", "", "Path to config file (optional)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	build := version.Get()
	if *showVersion {
		fmt.Println(build)
		return
	}

	var loadOpts []config.LoaderOption
	if *cfgPath != "" {
		loadOpts = append(loadOpts, config.WithConfigFile(*cfgPath))
	}
	cfg, err := config.Load("querydemo", loadOpts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	if cfg.Version == "" {
		cfg.Version = build.Short()
	}

	logger.Init(cfg.Logging)
	log := logger.WithComponent("querydemo")
	log.Info("starting", logger.Fields("version", cfg.Version, "engine", build.Engine))
	query.Configure(cfg.Query.Options()...)

	ctx := context.Background()
	shutdown, metrics, err := setupTelemetry(ctx, cfg)
	if err != nil {
		log.Error("telemetry setup failed", logger.ErrorFields("setup", err))
		os.Exit(1)
	}
	defer shutdown()

	if err := run(ctx, log, metrics); err != nil {
		log.Error("demo failed", logger.ErrorFields("run", err))
		shutdown()
		os.Exit(1)
	}
}

// setupTelemetry starts the exporters enabled in cfg. The returned shutdown
// func is safe to call more than once.
func setupTelemetry(ctx context.Context, cfg *config.Config) (func(), *observability.QueryMetrics, error) {
	var closers []func(context.Context) error
	var metrics *observability.QueryMetrics

	if cfg.Metrics.Enabled {
		mp, err := observability.InitMeter(ctx, observability.MeterConfigFrom(cfg))
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, mp.Shutdown)
		metrics, err = observability.NewQueryMetrics(observability.Meter("seqkit"))
		if err != nil {
			return nil, nil, err
		}
		query.Configure(query.WithObserver(metrics))
	}
	if cfg.Tracing.Enabled {
		tp, err := observability.InitTracer(ctx, observability.TracerConfigFrom(cfg))
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, tp.Shutdown)
	}

	done := false
	return func() {
		if done {
			return
		}
		done = true
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, c := range closers {
			if err := c(sctx); err != nil {
				logger.Warn("telemetry shutdown", logger.ErrorFields("shutdown", err))
			}
		}
	}, metrics, nil
}

func run(ctx context.Context, log *logger.Logger, metrics *observability.QueryMetrics) error {
	source := query.Of(1, 2, 3, 4, 5)

	scaled, err := observability.Evaluate(ctx, "even-times-ten", metrics, func(context.Context) ([]int, error) {
		evens := source.Where(func(x int) bool { return x%2 == 0 })
		return query.Select(evens, func(x int) int { return x * 10 }).ToSlice()
	})
	if err != nil {
		return err
	}
	log.Info("even times ten", logger.Fields("result", scaled))

	desc, err := observability.Evaluate(ctx, "descending", metrics, func(context.Context) ([]int, error) {
		return query.OrderByDescending(source, func(x int) int { return x }).ToSlice()
	})
	if err != nil {
		return err
	}
	log.Info("descending", logger.Fields("result", desc))

	parity, err := observability.Evaluate(ctx, "parity-groups", metrics, func(context.Context) ([]string, error) {
		groups := query.GroupBy(query.Of(1, 2, 3, 4), func(x int) int { return x % 2 })
		return query.Select(groups, func(g *query.Grouping[int, int]) string {
			return fmt.Sprintf("%d -> %v", g.Key(), g.Values())
		}).ToSlice()
	})
	if err != nil {
		return err
	}
	log.Info("parity groups", logger.Fields("result", parity))

	customers := query.Of(
		customer{Name: "ann", Region: "emea"},
		customer{Name: "bob", Region: "amer"},
		customer{Name: "cyd", Region: "emea"},
	)
	orders := query.Of(
		order{ID: 1, Customer: "ann", Total: 120},
		order{ID: 2, Customer: "bob", Total: 40},
		order{ID: 3, Customer: "ann", Total: 15.5},
		order{ID: 4, Customer: "cyd", Total: 300},
	)

	byRegion, err := observability.Evaluate(ctx, "revenue-by-region", metrics, func(context.Context) (map[string]float64, error) {
		type sale struct {
			region string
			total  float64
		}
		sales := query.Join(orders, customers,
			func(o order) string { return o.Customer },
			func(c customer) string { return c.Name },
			func(o order, c customer) sale { return sale{region: c.Region, total: o.Total} },
		)
		lookup, err := query.ToLookup(sales, func(s sale) string { return s.region })
		if err != nil {
			return nil, err
		}
		out := make(map[string]float64, lookup.Len())
		for i := 0; i < lookup.Len(); i++ {
			g := lookup.At(i)
			sum, err := query.Sum(query.Select(g.Query(), func(s sale) float64 { return s.total }))
			if err != nil {
				return nil, err
			}
			out[g.Key()] = sum
		}
		return out, nil
	})
	if err != nil {
		return err
	}
	log.Info("revenue by region", logger.Fields("result", byRegion))

	// A failing evaluation is logged, not fatal.
	_, err = observability.Evaluate(ctx, "single-emea", metrics, func(context.Context) (customer, error) {
		return customers.Where(func(c customer) bool { return c.Region == "emea" }).Single()
	})
	if err != nil {
		log.Warn("single emea customer", logger.ErrorFields("single", err))
	}

	words := query.FromSeq(strings.SplitSeq("the quick brown fox jumps over the lazy dog", " "))
	distinct, err := query.Distinct(words).Count()
	if err != nil {
		return err
	}
	log.Info("distinct words", logger.Fields("count", distinct))
	return nil
}
