package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
)

// MockDriver captures every statement and hands back queued results in
// order. An exhausted queue returns an empty result.
type MockDriver struct {
	Queries []string
	Params  []map[string]interface{}
	Results []neo4j.EagerResult
	Err     error
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.Queries = append(m.Queries, query)
	m.Params = append(m.Params, params)
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	if len(m.Results) > 0 {
		res := m.Results[0]
		m.Results = m.Results[1:]
		return res, nil
	}
	return neo4j.EagerResult{}, nil
}

func (m *MockDriver) EnsureSchema(ctx context.Context) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}

type MockLLM struct {
	Response string
	Err      error
	Prompt   string
}

func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompt = prompt
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func record(keys []string, values ...interface{}) *db.Record {
	return &db.Record{Keys: keys, Values: values}
}

func result(records ...*db.Record) neo4j.EagerResult {
	return neo4j.EagerResult{Records: records}
}

func countResult(key string, n int64) neo4j.EagerResult {
	return result(record([]string{key}, n))
}

func fptr(f float64) *float64 {
	return &f
}
