// Package graph holds the core engines: triple extraction, idempotent
// upsert, subgraph queries, and maintenance operations.
package graph

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Triple is one extracted (subject, predicate, object) fact with provenance.
// A nil Confidence means "unscored" and passes every confidence filter.
type Triple struct {
	Subject    string   `json:"subject"`
	Predicate  string   `json:"predicate"`
	Object     string   `json:"object"`
	Confidence *float64 `json:"confidence,omitempty"`
	Span       string   `json:"span,omitempty"`
	SourceDoc  string   `json:"source_doc,omitempty"`
}

// Key returns the identity of the relation this triple upserts into.
func (t Triple) Key() EdgeKey {
	return EdgeKey{Subject: t.Subject, Predicate: t.Predicate, Object: t.Object}
}

// EdgeKey is the external address of a relation. It travels over the API as
// an opaque id encoding the full tuple, so field values containing any
// delimiter cannot corrupt the addressing.
type EdgeKey struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

func (k EdgeKey) ID() string {
	raw, _ := json.Marshal([3]string{k.Subject, k.Predicate, k.Object})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// InvalidEdgeIDError marks an edge id that does not decode to a key.
type InvalidEdgeIDError struct {
	ID string
}

func (e *InvalidEdgeIDError) Error() string {
	return fmt.Sprintf("invalid edge id: %q", e.ID)
}

// ParseEdgeID decodes an edge id back into its key.
func ParseEdgeID(id string) (EdgeKey, error) {
	raw, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return EdgeKey{}, &InvalidEdgeIDError{ID: id}
	}

	var parts [3]string
	if err := json.Unmarshal(raw, &parts); err != nil {
		return EdgeKey{}, &InvalidEdgeIDError{ID: id}
	}
	if parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return EdgeKey{}, &InvalidEdgeIDError{ID: id}
	}

	return EdgeKey{Subject: parts[0], Predicate: parts[1], Object: parts[2]}, nil
}

// ValidationError marks bad caller input. The HTTP layer maps it to 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NodeView is one entity in a query response.
type NodeView struct {
	ID    string                 `json:"id"`
	Label string                 `json:"label"`
	Props map[string]interface{} `json:"props,omitempty"`
}

// EdgeView is one relation in a query response, addressable by ID.
type EdgeView struct {
	ID         string   `json:"id"`
	Source     string   `json:"source"`
	Target     string   `json:"target"`
	Predicate  string   `json:"predicate"`
	Confidence *float64 `json:"confidence,omitempty"`
	SourceDoc  string   `json:"source_doc,omitempty"`
	Span       string   `json:"span,omitempty"`
}

// Key reconstructs the relation identity of this edge.
func (e EdgeView) Key() EdgeKey {
	return EdgeKey{Subject: e.Source, Predicate: e.Predicate, Object: e.Target}
}

// SubgraphView is the deduplicated result of one traversal or scan. It is
// built fresh per query and never cached.
type SubgraphView struct {
	Nodes []NodeView `json:"nodes"`
	Edges []EdgeView `json:"edges"`
}

// Stats summarizes the whole graph.
type Stats struct {
	Entities  int64   `json:"entities"`
	Relations int64   `json:"relationships"`
	AvgDegree float64 `json:"avg_degree"`
}

// EntityDegree is one row of the degree-centrality ranking.
type EntityDegree struct {
	Name   string `json:"name"`
	Degree int64  `json:"degree"`
}

// PathRelation is one hop of a shortest path.
type PathRelation struct {
	Predicate  string   `json:"predicate"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Path is one shortest path between two entities.
type Path struct {
	Nodes         []string       `json:"nodes"`
	Relationships []PathRelation `json:"relationships"`
}
