package graphql

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

// calculateQueryDepth returns the deepest selection nesting of any operation
func calculateQueryDepth(document *ast.Document) int {
	fragments := make(map[string]*ast.FragmentDefinition)
	for _, definition := range document.Definitions {
		if frag, ok := definition.(*ast.FragmentDefinition); ok {
			fragments[frag.Name.Value] = frag
		}
	}

	maxDepth := 0
	for _, definition := range document.Definitions {
		if op, ok := definition.(*ast.OperationDefinition); ok {
			depth := selectionSetDepth(op.SelectionSet, 0, fragments, map[string]bool{})
			maxDepth = max(maxDepth, depth)
		}
	}
	return maxDepth
}

// selectionSetDepth counts object-valued fields; leaf fields add nothing
func selectionSetDepth(set *ast.SelectionSet, depth int, fragments map[string]*ast.FragmentDefinition, visiting map[string]bool) int {
	if set == nil {
		return depth
	}

	maxDepth := depth
	for _, selection := range set.Selections {
		switch sel := selection.(type) {
		case *ast.Field:
			// Skip introspection fields
			if strings.HasPrefix(sel.Name.Value, "__") || sel.SelectionSet == nil {
				continue
			}
			maxDepth = max(maxDepth, selectionSetDepth(sel.SelectionSet, depth+1, fragments, visiting))

		case *ast.InlineFragment:
			maxDepth = max(maxDepth, selectionSetDepth(sel.SelectionSet, depth, fragments, visiting))

		case *ast.FragmentSpread:
			name := sel.Name.Value
			frag, ok := fragments[name]
			if !ok || visiting[name] {
				continue
			}
			visiting[name] = true
			maxDepth = max(maxDepth, selectionSetDepth(frag.SelectionSet, depth, fragments, visiting))
			delete(visiting, name)
		}
	}
	return maxDepth
}

// ValidateQueryDepth validates a query against the depth limit
func ValidateQueryDepth(query string, maxDepth int) error {
	document, err := parser.Parse(parser.ParseParams{
		Source: query,
	})
	if err != nil {
		return fmt.Errorf("failed to parse query: %w", err)
	}

	if depth := calculateQueryDepth(document); depth > maxDepth {
		return fmt.Errorf("query depth %d exceeds maximum allowed depth %d", depth, maxDepth)
	}
	return nil
}
