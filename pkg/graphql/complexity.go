package graphql

import (
	"fmt"
	"strconv"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

// ComplexityConfig defines configuration for query complexity analysis
type ComplexityConfig struct {
	MaxComplexity    int // Maximum allowed complexity score
	DefaultListLimit int // Assumed size of list fields without an explicit limit
}

// DefaultComplexityConfig allows a full top-N page with a level of neighbors
func DefaultComplexityConfig() ComplexityConfig {
	return ComplexityConfig{
		MaxComplexity:    100000,
		DefaultListLimit: 100,
	}
}

// ValidateComplexityConfig validates the complexity configuration
func ValidateComplexityConfig(config *ComplexityConfig) error {
	if config.MaxComplexity <= 0 {
		return fmt.Errorf("max complexity must be greater than 0, got %d", config.MaxComplexity)
	}
	if config.DefaultListLimit <= 0 {
		config.DefaultListLimit = 100
	}
	return nil
}

// listFields return one object per element; their cost multiplies nested
// selections by the requested limit
var listFields = map[string]bool{
	"tier1":         true,
	"topByCone":     true,
	"topByOutreach": true,
	"customers":     true,
	"neighbors":     true,
}

// calculateQueryComplexity sums the cost of every operation in document
func calculateQueryComplexity(document *ast.Document, config *ComplexityConfig, variables map[string]any) int {
	fragments := make(map[string]*ast.FragmentDefinition)
	for _, definition := range document.Definitions {
		if frag, ok := definition.(*ast.FragmentDefinition); ok {
			fragments[frag.Name.Value] = frag
		}
	}

	total := 0
	for _, definition := range document.Definitions {
		if op, ok := definition.(*ast.OperationDefinition); ok {
			total += selectionSetComplexity(op.SelectionSet, config, variables, fragments, map[string]bool{}, 1)
		}
	}
	return total
}

// selectionSetComplexity charges each field once per parent element
func selectionSetComplexity(set *ast.SelectionSet, config *ComplexityConfig, variables map[string]any,
	fragments map[string]*ast.FragmentDefinition, visiting map[string]bool, multiplier int) int {
	if set == nil {
		return 0
	}

	complexity := 0
	for _, selection := range set.Selections {
		switch sel := selection.(type) {
		case *ast.Field:
			complexity += multiplier
			if sel.SelectionSet == nil {
				continue
			}
			nested := multiplier
			if listFields[sel.Name.Value] {
				nested *= extractLimit(sel.Arguments, variables, config.DefaultListLimit)
			}
			complexity += selectionSetComplexity(sel.SelectionSet, config, variables, fragments, visiting, nested)

		case *ast.InlineFragment:
			complexity += selectionSetComplexity(sel.SelectionSet, config, variables, fragments, visiting, multiplier)

		case *ast.FragmentSpread:
			name := sel.Name.Value
			frag, ok := fragments[name]
			if !ok || visiting[name] {
				continue
			}
			visiting[name] = true
			complexity += selectionSetComplexity(frag.SelectionSet, config, variables, fragments, visiting, multiplier)
			delete(visiting, name)
		}
	}
	return complexity
}

// extractLimit reads a literal or variable limit argument
func extractLimit(arguments []*ast.Argument, variables map[string]any, defaultLimit int) int {
	for _, arg := range arguments {
		if arg.Name.Value != "limit" {
			continue
		}
		switch value := arg.Value.(type) {
		case *ast.IntValue:
			// GetValue returns the literal text
			if s, ok := value.GetValue().(string); ok {
				if limit, err := strconv.Atoi(s); err == nil && limit > 0 {
					return limit
				}
			}
		case *ast.Variable:
			switch v := variables[value.Name.Value].(type) {
			case int:
				if v > 0 {
					return v
				}
			case float64:
				// JSON-decoded variables arrive as float64
				if v > 0 {
					return int(v)
				}
			}
		}
	}
	return defaultLimit
}

// ValidateQueryComplexity validates a query against the complexity limit and
// returns its score
func ValidateQueryComplexity(query string, config *ComplexityConfig, variables map[string]any) (int, error) {
	document, err := parser.Parse(parser.ParseParams{
		Source: query,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to parse query: %w", err)
	}

	score := calculateQueryComplexity(document, config, variables)
	if score > config.MaxComplexity {
		return score, fmt.Errorf("query complexity %d exceeds maximum allowed complexity %d", score, config.MaxComplexity)
	}
	return score, nil
}
