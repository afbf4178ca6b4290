package graph

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/agenthands/trellis/internal/driver"
)

// SubgraphRequest parametrizes one traversal or scan.
type SubgraphRequest struct {
	// Seed is the entity to traverse from; empty means preview mode, a
	// flat scan over the first 100 directed edges.
	Seed  string
	Depth int
	// SourceDoc filters relations by provenance. With a seed, every hop
	// of a path must match; without one, the single scanned edge must.
	SourceDoc string
	// MinConfidence is applied after the traversal as a post-filter over
	// edges. Edges without a confidence always pass.
	MinConfidence *float64
}

// QueryEngine is the read side: subgraph views plus the smaller lookups
// (sources, search, centrality, paths, stats). Every call re-reads the
// store; nothing is cached in process.
type QueryEngine struct {
	Store *Store
}

func NewQueryEngine(store *Store) *QueryEngine {
	return &QueryEngine{Store: store}
}

func (q *QueryEngine) Subgraph(ctx context.Context, req SubgraphRequest) (*SubgraphView, error) {
	if req.Seed != "" && req.Depth < 1 {
		return nil, &ValidationError{Msg: "depth must be at least 1"}
	}

	view := &SubgraphView{Nodes: []NodeView{}, Edges: []EdgeView{}}
	if !q.Store.Ready() {
		log.Warn("Graph store unavailable, returning empty subgraph")
		return view, nil
	}

	query, params := subgraphQuery(req)
	res, err := q.Store.Driver.ExecuteQuery(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to query subgraph: %w", err)
	}

	nodeOrder := []string{}
	nodes := map[string]NodeView{}
	seenEdges := map[string]bool{}
	edges := []EdgeView{}

	addNode := func(n dbtype.Node) string {
		name := asString(n.Props["name"])
		if name == "" {
			return ""
		}
		if _, ok := nodes[name]; !ok {
			nodes[name] = NodeView{
				ID:    name,
				Label: name,
				Props: sanitizeProps(n.Props),
			}
			nodeOrder = append(nodeOrder, name)
		}
		return name
	}

	for _, rec := range res.Records {
		av, _ := rec.Get("a")
		rv, _ := rec.Get("r")
		bv, _ := rec.Get("b")

		a, okA := av.(dbtype.Node)
		b, okB := bv.(dbtype.Node)
		rel, okR := rv.(dbtype.Relationship)
		if !okA || !okB || !okR {
			continue
		}

		source := addNode(a)
		target := addNode(b)
		if source == "" || target == "" {
			continue
		}

		edge := edgeView(rel, source, target)
		if seenEdges[edge.ID] {
			continue
		}
		seenEdges[edge.ID] = true
		edges = append(edges, edge)
	}

	if req.MinConfidence != nil {
		edges, nodeOrder = filterByConfidence(edges, *req.MinConfidence)
	}

	for _, name := range nodeOrder {
		view.Nodes = append(view.Nodes, nodes[name])
	}
	view.Edges = edges

	return view, nil
}

func subgraphQuery(req SubgraphRequest) (string, map[string]interface{}) {
	params := map[string]interface{}{}

	if req.Seed != "" {
		params["seed"] = req.Seed
		if req.SourceDoc != "" {
			params["source_doc"] = req.SourceDoc
		}
		return driver.SubgraphSeedQuery(req.Depth, req.SourceDoc != ""), params
	}

	if req.SourceDoc != "" {
		params["source_doc"] = req.SourceDoc
		return driver.SubgraphScanBySourceQuery, params
	}
	return driver.SubgraphScanQuery, params
}

func edgeView(rel dbtype.Relationship, source, target string) EdgeView {
	predicate := asString(rel.Props["predicate"])
	if predicate == "" {
		predicate = rel.Type
	}

	edge := EdgeView{
		Source:     source,
		Target:     target,
		Predicate:  predicate,
		Confidence: asFloatPtr(rel.Props["confidence"]),
		SourceDoc:  asString(rel.Props["source_doc"]),
		Span:       asString(rel.Props["span"]),
	}
	edge.ID = edge.Key().ID()
	return edge
}

// filterByConfidence drops edges scored below the threshold (unscored edges
// pass) and then drops nodes no surviving edge touches. The row cap was
// already applied, so this can only shrink the view.
func filterByConfidence(edges []EdgeView, min float64) ([]EdgeView, []string) {
	kept := make([]EdgeView, 0, len(edges))
	touchedOrder := []string{}
	touched := map[string]bool{}

	for _, e := range edges {
		if e.Confidence != nil && *e.Confidence < min {
			continue
		}
		kept = append(kept, e)
		for _, name := range []string{e.Source, e.Target} {
			if !touched[name] {
				touched[name] = true
				touchedOrder = append(touchedOrder, name)
			}
		}
	}

	return kept, touchedOrder
}
