package graphql

import (
	"math"
	"strconv"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"github.com/dd0wney/cluso-astopo/pkg/topology"
)

// ASNScalar carries 32-bit AS numbers, which overflow the signed 32-bit
// GraphQL Int
var ASNScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "ASN",
	Description: "An autonomous system number",
	Serialize: func(value any) any {
		switch v := value.(type) {
		case topology.ASN:
			return int64(v)
		case int64:
			return v
		case int:
			return int64(v)
		}
		return nil
	},
	ParseValue: func(value any) any {
		switch v := value.(type) {
		case int:
			return topology.ASN(v)
		case int64:
			return topology.ASN(v)
		case float64:
			if v != math.Trunc(v) {
				return nil
			}
			return topology.ASN(v)
		case string:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil
			}
			return topology.ASN(n)
		}
		return nil
	},
	ParseLiteral: func(valueAST ast.Value) any {
		switch v := valueAST.(type) {
		case *ast.IntValue:
			n, err := strconv.ParseInt(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			return topology.ASN(n)
		case *ast.StringValue:
			n, err := strconv.ParseInt(v.Value, 10, 64)
			if err != nil {
				return nil
			}
			return topology.ASN(n)
		}
		return nil
	},
})
