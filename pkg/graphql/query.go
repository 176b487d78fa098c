package graphql

import (
	"context"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"

	"github.com/dd0wney/cluso-astopo/pkg/logging"
	"github.com/dd0wney/cluso-astopo/pkg/metrics"
)

// DefaultMaxDepth bounds nested customers/neighbors selections
const DefaultMaxDepth = 6

// Executor runs queries against a schema with depth and complexity limiting
// and metrics
type Executor struct {
	schema     graphql.Schema
	maxDepth   int
	complexity ComplexityConfig
	metrics    *metrics.Registry
	logger     logging.Logger
}

// NewExecutor creates an executor. A nil registry or logger disables that
// concern.
func NewExecutor(schema graphql.Schema, maxDepth int, reg *metrics.Registry, logger logging.Logger) *Executor {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Executor{
		schema:     schema,
		maxDepth:   maxDepth,
		complexity: DefaultComplexityConfig(),
		metrics:    reg,
		logger:     logger,
	}
}

// SetComplexity replaces the complexity limit
func (e *Executor) SetComplexity(config ComplexityConfig) error {
	if err := ValidateComplexityConfig(&config); err != nil {
		return err
	}
	e.complexity = config
	return nil
}

// validate applies the depth limit, then the complexity limit
func (e *Executor) validate(query string, variables map[string]any) error {
	if err := ValidateQueryDepth(query, e.maxDepth); err != nil {
		return err
	}
	_, err := ValidateQueryComplexity(query, &e.complexity, variables)
	return err
}

// Execute validates the query depth and complexity, then runs it
func (e *Executor) Execute(ctx context.Context, query string, variables map[string]any) *graphql.Result {
	start := time.Now()

	var result *graphql.Result
	if err := e.validate(query, variables); err != nil {
		result = &graphql.Result{
			Errors: []gqlerrors.FormattedError{gqlerrors.FormatError(err)},
		}
	} else {
		result = graphql.Do(graphql.Params{
			Schema:         e.schema,
			RequestString:  query,
			VariableValues: variables,
			Context:        ctx,
		})
	}

	status := "success"
	if result.HasErrors() {
		status = "error"
		e.logger.Debug("query failed",
			logging.String("error", result.Errors[0].Message),
			logging.Latency(time.Since(start)))
	}
	if e.metrics != nil {
		e.metrics.RecordQuery(status, time.Since(start))
	}

	return result
}

// ExecuteQuery executes a GraphQL query against a schema
func ExecuteQuery(query string, schema graphql.Schema) *graphql.Result {
	return ExecuteQueryWithVariables(query, schema, nil)
}

// ExecuteQueryWithVariables executes a GraphQL query with variables
func ExecuteQueryWithVariables(query string, schema graphql.Schema, variables map[string]any) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  query,
		VariableValues: variables,
	})
}
