package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/trellis/internal/driver"
)

func TestUpsertSendsOneBulkStatement(t *testing.T) {
	mock := &MockDriver{}
	upserter := NewUpserter(NewStore(mock, true))

	triples := []Triple{
		{Subject: "a", Predicate: "knows", Object: "b", Confidence: fptr(0.9), Span: "a knows b", SourceDoc: "doc.txt"},
		{Subject: "b", Predicate: "lives in", Object: "c", SourceDoc: "doc.txt"},
	}
	err := upserter.Upsert(context.Background(), triples)

	require.NoError(t, err)
	require.Len(t, mock.Queries, 1)
	assert.Equal(t, driver.UpsertTriplesQuery, mock.Queries[0])

	batch, ok := mock.Params[0]["triples"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, batch, 2)
	assert.Equal(t, "a", batch[0]["subject"])
	assert.Equal(t, 0.9, batch[0]["confidence"])
	assert.Nil(t, batch[1]["confidence"])
	assert.Equal(t, "doc.txt", batch[1]["source_doc"])
}

// Re-running the same batch must hit the same create-or-update statement
// with the same identity key, so the graph cannot grow.
func TestUpsertUsesMergeSemantics(t *testing.T) {
	assert.Contains(t, driver.UpsertTriplesQuery, "MERGE (a:Entity {name: t.subject})")
	assert.Contains(t, driver.UpsertTriplesQuery, "MERGE (b:Entity {name: t.object})")
	assert.Contains(t, driver.UpsertTriplesQuery, "MERGE (a)-[r:REL {predicate: t.predicate}]->(b)")
	assert.NotContains(t, driver.UpsertTriplesQuery, "CREATE")
}

func TestUpsertEmptyBatch(t *testing.T) {
	mock := &MockDriver{}
	upserter := NewUpserter(NewStore(mock, true))

	err := upserter.Upsert(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, mock.Queries)
}

func TestUpsertSkipsUnavailableStore(t *testing.T) {
	mock := &MockDriver{}
	upserter := NewUpserter(NewStore(mock, false))

	err := upserter.Upsert(context.Background(), []Triple{{Subject: "a", Predicate: "p", Object: "b"}})

	require.NoError(t, err)
	assert.Empty(t, mock.Queries)
}
