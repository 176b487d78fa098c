package graphql

import (
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-astopo/pkg/algorithms"
	"github.com/dd0wney/cluso-astopo/pkg/topology"
	"github.com/dd0wney/cluso-astopo/pkg/validation"
)

// Dataset is the finished analysis the schema reads from
type Dataset struct {
	RunID         string
	Graph         *topology.Graph
	Rankings      *algorithms.Rankings
	Distributions *algorithms.Distributions
}

// summary is the source object of the Summary type
type summary struct {
	RunID         string
	Stats         topology.Statistics
	Tier1Members  int
	Tier1Rejected int
}

// NewSchema builds a read-only schema over ds
func NewSchema(ds *Dataset) (graphql.Schema, error) {
	if ds == nil || ds.Graph == nil || ds.Rankings == nil {
		return graphql.Schema{}, errors.New("dataset requires a graph and rankings")
	}

	asType := newASType(ds)
	rankedType := newRankedType(asType)
	binType := newBinType()

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"health": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return "ok", nil
				},
			},
			"as": &graphql.Field{
				Type: asType,
				Args: graphql.FieldConfigArgument{
					"asn": &graphql.ArgumentConfig{Type: graphql.NewNonNull(ASNScalar)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					asn, err := asnArg(p)
					if err != nil {
						return nil, err
					}
					node, ok := ds.Graph.Lookup(asn)
					if !ok {
						return nil, nil
					}
					return node, nil
				},
			},
			"cone": &graphql.Field{
				Type: newConeType(),
				Args: graphql.FieldConfigArgument{
					"asn": &graphql.ArgumentConfig{Type: graphql.NewNonNull(ASNScalar)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					asn, err := asnArg(p)
					if err != nil {
						return nil, err
					}
					res, err := algorithms.ComputeCone(ds.Graph, asn)
					if errors.Is(err, topology.ErrNodeNotFound) {
						return nil, nil
					}
					return res, err
				},
			},
			"tier1": &graphql.Field{
				Type: graphql.NewList(rankedType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return ds.Rankings.Tier1Rows(), nil
				},
			},
			"topByCone": &graphql.Field{
				Type: graphql.NewList(rankedType),
				Args: limitArgs(),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return rankedPrefix(ds.Rankings, ds.Rankings.ByCone, p)
				},
			},
			"topByOutreach": &graphql.Field{
				Type: graphql.NewList(rankedType),
				Args: limitArgs(),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return rankedPrefix(ds.Rankings, ds.Rankings.ByOutreach, p)
				},
			},
			"summary": &graphql.Field{
				Type: newSummaryType(),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return summary{
						RunID:         ds.RunID,
						Stats:         ds.Graph.GetStatistics(),
						Tier1Members:  len(ds.Rankings.Tier1.Members),
						Tier1Rejected: ds.Rankings.Tier1.Rejected,
					}, nil
				},
			},
			"distributions": &graphql.Field{
				Type: newDistributionsType(binType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if ds.Distributions == nil {
						return algorithms.ComputeDistributions(ds.Graph), nil
					}
					return ds.Distributions, nil
				},
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}

func asnArg(p graphql.ResolveParams) (topology.ASN, error) {
	asn, ok := p.Args["asn"].(topology.ASN)
	if !ok {
		return 0, errors.New("asn: invalid AS number")
	}
	if err := validation.ValidateASN(int64(asn)); err != nil {
		return 0, err
	}
	return asn, nil
}

func limitArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"limit": &graphql.ArgumentConfig{
			Type:        graphql.Int,
			Description: "Number of rows; defaults to the configured top-N",
		},
	}
}

func rankedPrefix(rk *algorithms.Rankings, nodes []*topology.Node, p graphql.ResolveParams) (any, error) {
	limit := rk.TopN
	if v, ok := p.Args["limit"].(int); ok {
		if err := validation.ValidateLimit(v); err != nil {
			return nil, err
		}
		limit = v
	}

	top := algorithms.TopN(nodes, limit)
	rows := make([]algorithms.RankedAS, len(top))
	for i, n := range top {
		rows[i] = algorithms.NewRankedAS(i+1, n, rk.Totals)
	}
	return rows, nil
}

func nodeField(typ graphql.Output, get func(n *topology.Node) any) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			if n, ok := p.Source.(*topology.Node); ok {
				return get(n), nil
			}
			return nil, nil
		},
	}
}

func newASType(ds *Dataset) *graphql.Object {
	var asType *graphql.Object

	lookupAll := func(asns []topology.ASN, p graphql.ResolveParams) ([]*topology.Node, error) {
		if v, ok := p.Args["limit"].(int); ok {
			if err := validation.ValidateLimit(v); err != nil {
				return nil, err
			}
			if v < len(asns) {
				asns = asns[:v]
			}
		}
		out := make([]*topology.Node, 0, len(asns))
		for _, asn := range asns {
			if n, ok := ds.Graph.Lookup(asn); ok {
				out = append(out, n)
			}
		}
		return out, nil
	}

	asType = graphql.NewObject(graphql.ObjectConfig{
		Name:        "AS",
		Description: "An autonomous system with its derived cone figures",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"asn":            nodeField(graphql.NewNonNull(ASNScalar), func(n *topology.Node) any { return n.ASN }),
				"classification": nodeField(graphql.String, func(n *topology.Node) any { return string(n.Classification) }),
				"degree":         nodeField(graphql.NewNonNull(graphql.Int), func(n *topology.Node) any { return n.Degree() }),
				"customerCount":  nodeField(graphql.NewNonNull(graphql.Int), func(n *topology.Node) any { return n.CustomerCount() }),
				"prefixCount":    nodeField(graphql.NewNonNull(graphql.Int), func(n *topology.Node) any { return n.PrefixCount() }),
				"ipv4Addresses":  nodeField(graphql.NewNonNull(graphql.Float), func(n *topology.Node) any { return n.IPv4AddressCount() }),
				"ipv6Addresses":  nodeField(graphql.NewNonNull(graphql.Float), func(n *topology.Node) any { return n.IPv6AddressCount() }),
				"coneSize":       nodeField(graphql.NewNonNull(graphql.Int), func(n *topology.Node) any { return n.ConeSize }),
				"prefixOutreach": nodeField(graphql.NewNonNull(graphql.Int), func(n *topology.Node) any { return n.PrefixOutreach }),
				"ipv4Outreach":   nodeField(graphql.NewNonNull(graphql.Float), func(n *topology.Node) any { return n.IPv4Outreach }),
				"orgId":          nodeField(graphql.String, func(n *topology.Node) any { return n.OrgID }),
				"orgName":        nodeField(graphql.String, func(n *topology.Node) any { return n.OrgName }),
				"tier1": nodeField(graphql.NewNonNull(graphql.Boolean), func(n *topology.Node) any {
					return ds.Rankings.Tier1.Contains(n.ASN)
				}),
				"customers": &graphql.Field{
					Type: graphql.NewList(asType),
					Args: graphql.FieldConfigArgument{"limit": &graphql.ArgumentConfig{Type: graphql.Int}},
					Resolve: func(p graphql.ResolveParams) (any, error) {
						n, ok := p.Source.(*topology.Node)
						if !ok {
							return nil, nil
						}
						return lookupAll(n.Customers(), p)
					},
				},
				"neighbors": &graphql.Field{
					Type: graphql.NewList(asType),
					Args: graphql.FieldConfigArgument{"limit": &graphql.ArgumentConfig{Type: graphql.Int}},
					Resolve: func(p graphql.ResolveParams) (any, error) {
						n, ok := p.Source.(*topology.Node)
						if !ok {
							return nil, nil
						}
						return lookupAll(n.Connections(), p)
					},
				},
			}
		}),
	})

	return asType
}

func newRankedType(asType *graphql.Object) *graphql.Object {
	rowField := func(typ graphql.Output, get func(r algorithms.RankedAS) any) *graphql.Field {
		return &graphql.Field{
			Type: typ,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if r, ok := p.Source.(algorithms.RankedAS); ok {
					return get(r), nil
				}
				return nil, nil
			},
		}
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "RankedAS",
		Fields: graphql.Fields{
			"rank":         rowField(graphql.NewNonNull(graphql.Int), func(r algorithms.RankedAS) any { return r.Rank }),
			"as":           rowField(asType, func(r algorithms.RankedAS) any { return r.Node }),
			"coneShare":    rowField(graphql.Float, func(r algorithms.RankedAS) any { return r.ConeShare }),
			"prefixShare":  rowField(graphql.Float, func(r algorithms.RankedAS) any { return r.PrefixShare }),
			"addressShare": rowField(graphql.Float, func(r algorithms.RankedAS) any { return r.AddressShare }),
		},
	})
}

func newConeType() *graphql.Object {
	coneField := func(typ graphql.Output, get func(c algorithms.ConeResult) any) *graphql.Field {
		return &graphql.Field{
			Type: typ,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if c, ok := p.Source.(algorithms.ConeResult); ok {
					return get(c), nil
				}
				return nil, nil
			},
		}
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Cone",
		Fields: graphql.Fields{
			"asn":            coneField(ASNScalar, func(c algorithms.ConeResult) any { return c.ASN }),
			"size":           coneField(graphql.Int, func(c algorithms.ConeResult) any { return c.Size }),
			"prefixOutreach": coneField(graphql.Int, func(c algorithms.ConeResult) any { return c.PrefixOutreach }),
			"ipv4Outreach":   coneField(graphql.Float, func(c algorithms.ConeResult) any { return c.IPv4Outreach }),
		},
	})
}

func newSummaryType() *graphql.Object {
	sumField := func(typ graphql.Output, get func(s summary) any) *graphql.Field {
		return &graphql.Field{
			Type: typ,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if s, ok := p.Source.(summary); ok {
					return get(s), nil
				}
				return nil, nil
			},
		}
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Summary",
		Fields: graphql.Fields{
			"runId":         sumField(graphql.String, func(s summary) any { return s.RunID }),
			"nodes":         sumField(graphql.Int, func(s summary) any { return s.Stats.NodeCount }),
			"relationships": sumField(graphql.Int, func(s summary) any { return s.Stats.RelationshipCount }),
			"ipv4Prefixes":  sumField(graphql.Int, func(s summary) any { return s.Stats.IPv4PrefixCount }),
			"ipv6Prefixes":  sumField(graphql.Int, func(s summary) any { return s.Stats.IPv6PrefixCount }),
			"tier1Members":  sumField(graphql.Int, func(s summary) any { return s.Tier1Members }),
			"tier1Rejected": sumField(graphql.Int, func(s summary) any { return s.Tier1Rejected }),
		},
	})
}

func newBinType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Bin",
		Fields: graphql.Fields{
			"label": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if b, ok := p.Source.(algorithms.Bin); ok {
						return b.Label, nil
					}
					return nil, nil
				},
			},
			"count": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if b, ok := p.Source.(algorithms.Bin); ok {
						return b.Count, nil
					}
					return nil, nil
				},
			},
		},
	})
}

func newDistributionsType(binType *graphql.Object) *graphql.Object {
	binsField := func(get func(d *algorithms.Distributions) []algorithms.Bin) *graphql.Field {
		return &graphql.Field{
			Type: graphql.NewList(binType),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if d, ok := p.Source.(*algorithms.Distributions); ok {
					return get(d), nil
				}
				return nil, nil
			},
		}
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Distributions",
		Fields: graphql.Fields{
			"degree":         binsField(func(d *algorithms.Distributions) []algorithms.Bin { return d.Degree }),
			"ipv4Space":      binsField(func(d *algorithms.Distributions) []algorithms.Bin { return d.IPv4Space }),
			"ipv6Space":      binsField(func(d *algorithms.Distributions) []algorithms.Bin { return d.IPv6Space }),
			"classification": binsField(func(d *algorithms.Distributions) []algorithms.Bin { return d.Classification }),
			"unclassified": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if d, ok := p.Source.(*algorithms.Distributions); ok {
						return d.Unclassified, nil
					}
					return nil, nil
				},
			},
		},
	})
}
