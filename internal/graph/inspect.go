package graph

import (
	"context"
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/agenthands/trellis/internal/driver"
)

// Sources lists the distinct source documents tagged on any relation.
func (q *QueryEngine) Sources(ctx context.Context) ([]string, error) {
	if !q.Store.Ready() {
		return []string{}, nil
	}

	res, err := q.Store.Driver.ExecuteQuery(ctx, driver.DistinctSourcesQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}

	sources := []string{}
	for _, rec := range res.Records {
		v, _ := rec.Get("source_doc")
		if s := asString(v); s != "" {
			sources = append(sources, s)
		}
	}
	return sources, nil
}

// GraphStats returns entity count, relation count and average degree.
func (q *QueryEngine) GraphStats(ctx context.Context) (Stats, error) {
	stats := Stats{}
	if !q.Store.Ready() {
		log.Warn("Graph store unavailable, returning empty stats")
		return stats, nil
	}

	res, err := q.Store.Driver.ExecuteQuery(ctx, driver.EntityCountQuery, nil)
	if err != nil {
		return stats, fmt.Errorf("failed to count entities: %w", err)
	}
	if len(res.Records) > 0 {
		v, _ := res.Records[0].Get("count")
		stats.Entities = asInt64(v)
	}

	res, err = q.Store.Driver.ExecuteQuery(ctx, driver.RelationCountQuery, nil)
	if err != nil {
		return stats, fmt.Errorf("failed to count relations: %w", err)
	}
	if len(res.Records) > 0 {
		v, _ := res.Records[0].Get("count")
		stats.Relations = asInt64(v)
	}

	res, err = q.Store.Driver.ExecuteQuery(ctx, driver.AvgDegreeQuery, nil)
	if err != nil {
		return stats, fmt.Errorf("failed to compute average degree: %w", err)
	}
	if len(res.Records) > 0 {
		v, _ := res.Records[0].Get("avg_degree")
		stats.AvgDegree = math.Round(asFloat64(v)*100) / 100
	}

	return stats, nil
}

// SearchEntities returns entity names containing the keyword.
func (q *QueryEngine) SearchEntities(ctx context.Context, keyword string, limit int) ([]string, error) {
	if keyword == "" {
		return nil, &ValidationError{Msg: "keyword is required"}
	}
	if limit <= 0 {
		limit = 20
	}
	if !q.Store.Ready() {
		return []string{}, nil
	}

	params := map[string]interface{}{"keyword": keyword, "limit": limit}
	res, err := q.Store.Driver.ExecuteQuery(ctx, driver.SearchEntitiesQuery, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search entities: %w", err)
	}

	names := []string{}
	for _, rec := range res.Records {
		v, _ := rec.Get("name")
		if s := asString(v); s != "" {
			names = append(names, s)
		}
	}
	return names, nil
}

// TopEntities returns the highest-degree entities.
func (q *QueryEngine) TopEntities(ctx context.Context, limit int) ([]EntityDegree, error) {
	if limit <= 0 {
		limit = 10
	}
	if !q.Store.Ready() {
		return []EntityDegree{}, nil
	}

	params := map[string]interface{}{"limit": limit}
	res, err := q.Store.Driver.ExecuteQuery(ctx, driver.TopEntitiesQuery, params)
	if err != nil {
		return nil, fmt.Errorf("failed to rank entities: %w", err)
	}

	entities := []EntityDegree{}
	for _, rec := range res.Records {
		nameV, _ := rec.Get("name")
		degreeV, _ := rec.Get("degree")
		entities = append(entities, EntityDegree{
			Name:   asString(nameV),
			Degree: asInt64(degreeV),
		})
	}
	return entities, nil
}

// FindPath returns shortest paths between two entities, bounded by hop count.
func (q *QueryEngine) FindPath(ctx context.Context, from, to string, maxDepth int) ([]Path, error) {
	if from == "" || to == "" {
		return nil, &ValidationError{Msg: "both path endpoints are required"}
	}
	if maxDepth < 1 {
		maxDepth = 5
	}
	if !q.Store.Ready() {
		return []Path{}, nil
	}

	params := map[string]interface{}{"from": from, "to": to}
	res, err := q.Store.Driver.ExecuteQuery(ctx, driver.ShortestPathQuery(maxDepth), params)
	if err != nil {
		return nil, fmt.Errorf("failed to find path: %w", err)
	}

	paths := []Path{}
	for _, rec := range res.Records {
		namesV, _ := rec.Get("names")
		predicatesV, _ := rec.Get("predicates")
		confidencesV, _ := rec.Get("confidences")

		predicates := asStringSlice(predicatesV)
		confidences, _ := confidencesV.([]interface{})

		relations := make([]PathRelation, 0, len(predicates))
		for i, predicate := range predicates {
			rel := PathRelation{Predicate: predicate}
			if i < len(confidences) {
				rel.Confidence = asFloatPtr(confidences[i])
			}
			relations = append(relations, rel)
		}

		paths = append(paths, Path{
			Nodes:         asStringSlice(namesV),
			Relationships: relations,
		})
	}
	return paths, nil
}
