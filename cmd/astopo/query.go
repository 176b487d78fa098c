package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-astopo/pkg/graphql"
	"github.com/dd0wney/cluso-astopo/pkg/health"
	"github.com/dd0wney/cluso-astopo/pkg/logging"
	"github.com/dd0wney/cluso-astopo/pkg/metrics"
	"github.com/dd0wney/cluso-astopo/pkg/pipeline"
)

var (
	queryListen    string
	queryVariables string
	queryMaxDepth  int
	queryMaxCost   int
	queryMaxAge    time.Duration
)

var queryCmd = &cobra.Command{
	Use:   "query [graphql]",
	Short: "Analyze the datasets, then answer GraphQL queries over the result",
	Long: `Runs the analysis without writing a report, then either executes the
given GraphQL document once or, with --listen, serves /graphql and /metrics.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if queryListen == "" && len(args) == 0 {
			return errors.New("a query argument or --listen is required")
		}

		var vars map[string]any
		if queryVariables != "" {
			if err := json.Unmarshal([]byte(queryVariables), &vars); err != nil {
				return fmt.Errorf("invalid --variables: %w", err)
			}
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := newLogger(cfg)
		reg := metrics.NewRegistry()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := pipeline.Analyze(ctx, cfg, pipeline.Deps{Logger: logger, Metrics: reg})
		if err != nil {
			return err
		}

		schema, err := graphql.NewSchema(&graphql.Dataset{
			RunID:         res.RunID,
			Graph:         res.Graph,
			Rankings:      res.Rankings,
			Distributions: res.Distributions,
		})
		if err != nil {
			return err
		}
		executor := graphql.NewExecutor(schema, queryMaxDepth, reg, logger)
		complexity := graphql.DefaultComplexityConfig()
		complexity.MaxComplexity = queryMaxCost
		if err := executor.SetComplexity(complexity); err != nil {
			return err
		}

		if queryListen != "" {
			return serve(ctx, executor, newHealthChecker(res), reg, logger)
		}

		result := executor.Execute(ctx, args[0], vars)
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
		if result.HasErrors() {
			return fmt.Errorf("query returned %d error(s)", len(result.Errors))
		}
		return nil
	},
}

func init() {
	flags := queryCmd.Flags()
	flags.StringVarP(&queryListen, "listen", "l", "", "Serve GraphQL over HTTP on this address")
	flags.StringVar(&queryVariables, "variables", "", "Query variables as a JSON object")
	flags.IntVar(&queryMaxDepth, "max-depth", graphql.DefaultMaxDepth, "Maximum selection depth")
	flags.DurationVar(&queryMaxAge, "max-age", 0, "Report degraded health once the analysis is older than this")
	flags.IntVar(&queryMaxCost, "max-complexity", graphql.DefaultComplexityConfig().MaxComplexity, "Maximum query complexity score")
}

// newHealthChecker registers the checks of a served analysis
func newHealthChecker(res *pipeline.Result) *health.HealthChecker {
	hc := health.NewHealthChecker()
	graphCheck := health.GraphCheck(res.Graph.GetStatistics)
	tier1Check := health.Tier1Check(func() int { return len(res.Tier1.Members) })

	hc.RegisterCheck("graph", graphCheck)
	hc.RegisterCheck("tier1", tier1Check)
	hc.RegisterCheck("dataset_age", health.DatasetAgeCheck(res.StartedAt, queryMaxAge, nil))
	hc.RegisterCheck("memory", health.MemoryCheck(health.RuntimeMemory))

	hc.RegisterReadinessCheck("graph", graphCheck)
	hc.RegisterLivenessCheck("process", func() health.Check { return health.SimpleCheck("process") })
	return hc
}

// serve blocks until ctx is cancelled, then drains in-flight requests
func serve(ctx context.Context, executor *graphql.Executor, hc *health.HealthChecker, reg *metrics.Registry, logger logging.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/graphql", graphql.NewGraphQLHandler(executor))
	mux.Handle("/health", hc.HTTPHandler())
	mux.Handle("/health/ready", hc.ReadinessHandler())
	mux.Handle("/health/live", hc.LivenessHandler())
	mux.Handle("/metrics", promhttp.HandlerFor(reg.GetPrometheusRegistry(), promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              queryListen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("graphql server starting", logging.String("addr", queryListen))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
