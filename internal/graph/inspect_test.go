package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphStats(t *testing.T) {
	mock := &MockDriver{Results: []neo4j.EagerResult{
		countResult("count", 12),
		countResult("count", 30),
		result(record([]string{"avg_degree"}, 2.4999)),
	}}
	engine := NewQueryEngine(NewStore(mock, true))

	stats, err := engine.GraphStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.Entities)
	assert.Equal(t, int64(30), stats.Relations)
	assert.Equal(t, 2.5, stats.AvgDegree)
}

func TestGraphStatsUnavailableStore(t *testing.T) {
	mock := &MockDriver{}
	engine := NewQueryEngine(NewStore(mock, false))

	stats, err := engine.GraphStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)
	assert.Empty(t, mock.Queries)
}

func TestSearchEntitiesRequiresKeyword(t *testing.T) {
	engine := NewQueryEngine(NewStore(&MockDriver{}, true))

	_, err := engine.SearchEntities(context.Background(), "", 10)

	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestSearchEntitiesDefaultLimit(t *testing.T) {
	mock := &MockDriver{Results: []neo4j.EagerResult{result(
		record([]string{"name"}, "Marie Curie"),
	)}}
	engine := NewQueryEngine(NewStore(mock, true))

	names, err := engine.SearchEntities(context.Background(), "Curie", 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"Marie Curie"}, names)
	assert.Equal(t, 20, mock.Params[0]["limit"])
	assert.Equal(t, "Curie", mock.Params[0]["keyword"])
}

func TestTopEntities(t *testing.T) {
	mock := &MockDriver{Results: []neo4j.EagerResult{result(
		record([]string{"name", "degree"}, "Alice", int64(7)),
		record([]string{"name", "degree"}, "Bob", int64(3)),
	)}}
	engine := NewQueryEngine(NewStore(mock, true))

	entities, err := engine.TopEntities(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, EntityDegree{Name: "Alice", Degree: 7}, entities[0])
	assert.Equal(t, 10, mock.Params[0]["limit"])
}

func TestFindPathRequiresEndpoints(t *testing.T) {
	engine := NewQueryEngine(NewStore(&MockDriver{}, true))

	_, err := engine.FindPath(context.Background(), "Alice", "", 0)

	var vErr *ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestFindPathDecodesHops(t *testing.T) {
	keys := []string{"names", "predicates", "confidences"}
	mock := &MockDriver{Results: []neo4j.EagerResult{result(record(keys,
		[]interface{}{"Alice", "Bob", "Carol"},
		[]interface{}{"knows", "works with"},
		[]interface{}{0.9, nil},
	))}}
	engine := NewQueryEngine(NewStore(mock, true))

	paths, err := engine.FindPath(context.Background(), "Alice", "Carol", 3)

	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, paths[0].Nodes)
	require.Len(t, paths[0].Relationships, 2)
	assert.Equal(t, "knows", paths[0].Relationships[0].Predicate)
	require.NotNil(t, paths[0].Relationships[0].Confidence)
	assert.Equal(t, 0.9, *paths[0].Relationships[0].Confidence)
	assert.Nil(t, paths[0].Relationships[1].Confidence)
	assert.Contains(t, mock.Queries[0], "*1..3")
}

func TestSourcesSkipsNullTags(t *testing.T) {
	mock := &MockDriver{Results: []neo4j.EagerResult{result(
		record([]string{"source_doc"}, "a.txt"),
		record([]string{"source_doc"}, nil),
		record([]string{"source_doc"}, "b.txt"),
	)}}
	engine := NewQueryEngine(NewStore(mock, true))

	sources, err := engine.Sources(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, sources)
}
