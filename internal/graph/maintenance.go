package graph

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"

	"github.com/agenthands/trellis/internal/driver"
)

// Maintenance covers admin mutations: relation delete/update, per-source
// deletion with orphan pruning, and entity merge. All mutations are
// skip-with-log no-ops when the store is unavailable; counts are then zero,
// never fabricated.
type Maintenance struct {
	Store *Store
	// DeleteBatch caps how many relations one DeleteSource statement
	// removes before looping.
	DeleteBatch int
}

func NewMaintenance(store *Store, deleteBatch int) *Maintenance {
	if deleteBatch <= 0 {
		deleteBatch = 1000
	}
	return &Maintenance{Store: store, DeleteBatch: deleteBatch}
}

// ListRelations returns addressable edge records, optionally filtered by
// source document.
func (m *Maintenance) ListRelations(ctx context.Context, sourceDoc string, limit int) ([]EdgeView, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	if !m.Store.Ready() {
		return []EdgeView{}, nil
	}

	query := driver.ListRelationsQuery
	params := map[string]interface{}{"limit": limit}
	if sourceDoc != "" {
		query = driver.ListRelationsBySourceQuery
		params["source_doc"] = sourceDoc
	}

	res, err := m.Store.Driver.ExecuteQuery(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list relations: %w", err)
	}

	edges := []EdgeView{}
	for _, rec := range res.Records {
		subjectV, _ := rec.Get("subject")
		predicateV, _ := rec.Get("predicate")
		objectV, _ := rec.Get("object")
		confidenceV, _ := rec.Get("confidence")
		sourceV, _ := rec.Get("source_doc")
		spanV, _ := rec.Get("span")

		edge := EdgeView{
			Source:     asString(subjectV),
			Target:     asString(objectV),
			Predicate:  asString(predicateV),
			Confidence: asFloatPtr(confidenceV),
			SourceDoc:  asString(sourceV),
			Span:       asString(spanV),
		}
		edge.ID = edge.Key().ID()
		edges = append(edges, edge)
	}
	return edges, nil
}

// DeleteRelation removes the relation addressed by the edge id.
func (m *Maintenance) DeleteRelation(ctx context.Context, id string) (int64, error) {
	key, err := ParseEdgeID(id)
	if err != nil {
		return 0, err
	}
	if !m.Store.Ready() {
		log.Warn("Graph store unavailable, skipping relation delete", "id", id)
		return 0, nil
	}

	params := map[string]interface{}{
		"subject":   key.Subject,
		"predicate": key.Predicate,
		"object":    key.Object,
	}
	res, err := m.Store.Driver.ExecuteQuery(ctx, driver.DeleteRelationQuery, params)
	if err != nil {
		return 0, fmt.Errorf("failed to delete relation: %w", err)
	}
	return singleCount(res.Records, "deleted"), nil
}

// UpdateConfidence overwrites the confidence of the relation addressed by
// the edge id. Only confidence is mutable this way; provenance is fixed at
// ingestion.
func (m *Maintenance) UpdateConfidence(ctx context.Context, id string, confidence float64) (int64, error) {
	key, err := ParseEdgeID(id)
	if err != nil {
		return 0, err
	}
	if confidence < 0 || confidence > 1 {
		return 0, &ValidationError{Msg: "confidence must be between 0 and 1"}
	}
	if !m.Store.Ready() {
		log.Warn("Graph store unavailable, skipping confidence update", "id", id)
		return 0, nil
	}

	params := map[string]interface{}{
		"subject":    key.Subject,
		"predicate":  key.Predicate,
		"object":     key.Object,
		"confidence": confidence,
	}
	res, err := m.Store.Driver.ExecuteQuery(ctx, driver.UpdateRelationConfidenceQuery, params)
	if err != nil {
		return 0, fmt.Errorf("failed to update relation: %w", err)
	}
	return singleCount(res.Records, "updated"), nil
}

// DeleteSource removes every relation tagged with the source document in
// bounded batches, then prunes entities left without any relation. Returns
// (relations deleted, entities pruned).
func (m *Maintenance) DeleteSource(ctx context.Context, sourceDoc string) (int64, int64, error) {
	if sourceDoc == "" {
		return 0, 0, &ValidationError{Msg: "source is required"}
	}
	if !m.Store.Ready() {
		log.Warn("Graph store unavailable, skipping source delete", "source", sourceDoc)
		return 0, 0, nil
	}

	var deleted int64
	for {
		params := map[string]interface{}{
			"source_doc": sourceDoc,
			"batch":      m.DeleteBatch,
		}
		res, err := m.Store.Driver.ExecuteQuery(ctx, driver.DeleteSourceRelationsQuery, params)
		if err != nil {
			return deleted, 0, fmt.Errorf("failed to delete source relations: %w", err)
		}
		n := singleCount(res.Records, "deleted")
		deleted += n
		if n < int64(m.DeleteBatch) {
			break
		}
	}

	var pruned int64
	for {
		params := map[string]interface{}{"batch": m.DeleteBatch}
		res, err := m.Store.Driver.ExecuteQuery(ctx, driver.PruneOrphanEntitiesQuery, params)
		if err != nil {
			return deleted, pruned, fmt.Errorf("failed to prune orphan entities: %w", err)
		}
		n := singleCount(res.Records, "pruned")
		pruned += n
		if n < int64(m.DeleteBatch) {
			break
		}
	}

	log.Info("Source deleted", "source", sourceDoc, "relations", deleted, "orphans", pruned)
	return deleted, pruned, nil
}

// MergeEntities redirects every relation of `from` onto `into` and removes
// `from`, as one transactional statement. Redirected edges fold onto an
// existing equivalent (same endpoint and predicate) instead of duplicating
// it, so the upsert uniqueness key survives the merge.
func (m *Maintenance) MergeEntities(ctx context.Context, from, into string) (int64, error) {
	if from == "" || into == "" {
		return 0, &ValidationError{Msg: "both 'from' and 'into' entities are required"}
	}
	if from == into {
		return 0, &ValidationError{Msg: "cannot merge an entity into itself"}
	}
	if !m.Store.Ready() {
		log.Warn("Graph store unavailable, skipping entity merge", "from", from, "into", into)
		return 0, nil
	}

	params := map[string]interface{}{"from": from, "into": into}
	res, err := m.Store.Driver.ExecuteQuery(ctx, driver.MergeEntitiesQuery, params)
	if err != nil {
		return 0, fmt.Errorf("failed to merge entities: %w", err)
	}
	redirected := singleCount(res.Records, "redirected")
	log.Info("Entities merged", "from", from, "into", into, "redirected", redirected)
	return redirected, nil
}

func singleCount(records []*db.Record, key string) int64 {
	if len(records) == 0 {
		return 0
	}
	v, _ := records[0].Get(key)
	return asInt64(v)
}
