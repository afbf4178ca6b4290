package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/trellis/internal/config"
	"github.com/agenthands/trellis/internal/graph"
)

type stubDriver struct {
	queries []string
}

func (s *stubDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	s.queries = append(s.queries, query)
	return neo4j.EagerResult{}, nil
}

func (s *stubDriver) EnsureSchema(ctx context.Context) error { return nil }

func (s *stubDriver) Close(ctx context.Context) error { return nil }

type stubLLM struct {
	response string
}

func (s *stubLLM) Generate(ctx context.Context, prompt string) (string, error) {
	return s.response, nil
}

func newTestServer(available bool, llmResponse string) (*Server, *stubDriver) {
	gin.SetMode(gin.TestMode)
	d := &stubDriver{}
	store := graph.NewStore(d, available)
	return NewServer(config.Default(), store, &stubLLM{response: llmResponse}), d
}

func doRequest(s *Server, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.SetupRouter().ServeHTTP(w, req)
	return w
}

func TestGraphRejectsBadDepth(t *testing.T) {
	srv, _ := newTestServer(true, "")

	w := doRequest(srv, http.MethodGet, "/api/graph?seed=Alice&depth=zero", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(srv, http.MethodGet, "/api/graph?seed=Alice&depth=0", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGraphRejectsBadConfidence(t *testing.T) {
	srv, _ := newTestServer(true, "")

	w := doRequest(srv, http.MethodGet, "/api/graph?min_confidence=1.5", nil, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGraphUnavailableStoreIsEmptyNotError(t *testing.T) {
	srv, d := newTestServer(false, "")

	w := doRequest(srv, http.MethodGet, "/api/graph?seed=Alice&depth=1", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, d.queries)

	var resp struct {
		Status string           `json:"status"`
		Nodes  []graph.NodeView `json:"nodes"`
		Edges  []graph.EdgeView `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Empty(t, resp.Nodes)
	assert.Empty(t, resp.Edges)
}

func TestDeleteRelationInvalidID(t *testing.T) {
	srv, _ := newTestServer(true, "")

	w := doRequest(srv, http.MethodDelete, "/api/relations/not-an-id", nil, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMergeRejectsSelfMerge(t *testing.T) {
	srv, _ := newTestServer(true, "")
	body := bytes.NewBufferString(`{"from": "Alice", "into": "Alice"}`)

	w := doRequest(srv, http.MethodPost, "/api/entities/merge", body, "application/json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMergeSkippedWhenStoreUnavailable(t *testing.T) {
	srv, _ := newTestServer(false, "")
	body := bytes.NewBufferString(`{"from": "Bob", "into": "Robert"}`)

	w := doRequest(srv, http.MethodPost, "/api/entities/merge", body, "application/json")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"skipped"`)
}

func TestUploadRequiresFiles(t *testing.T) {
	srv, _ := newTestServer(true, "")
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.Close())

	w := doRequest(srv, http.MethodPost, "/api/upload", &buf, mw.FormDataContentType())

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// One bad file in a batch must not poison the others.
func TestUploadIsolatesFileFailures(t *testing.T) {
	srv, _ := newTestServer(true, `[{"subject": "a", "predicate": "p", "object": "b"}]`)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("files", "good.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("alpha relates to beta"))
	require.NoError(t, err)
	fw, err = mw.CreateFormFile("files", "bad.exe")
	require.NoError(t, err)
	_, err = fw.Write([]byte{0x4d, 0x5a})
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := doRequest(srv, http.MethodPost, "/api/upload", &buf, mw.FormDataContentType())

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status  string       `json:"status"`
		Results []FileResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "success", resp.Results[0].Status)
	assert.Equal(t, 1, resp.Results[0].Triples)
	assert.Equal(t, "failed", resp.Results[1].Status)
	assert.Contains(t, resp.Results[1].Error, ".exe")
}

// An unsupported extension is rejected before the store or the completion
// backend is ever contacted.
func TestUploadUnsupportedFormatSkipsCollaborators(t *testing.T) {
	srv, d := newTestServer(true, "should never be asked")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("files", "tool.exe")
	require.NoError(t, err)
	_, err = fw.Write([]byte{0x4d, 0x5a})
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := doRequest(srv, http.MethodPost, "/api/upload", &buf, mw.FormDataContentType())

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, d.queries)

	var resp struct {
		Results []FileResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "failed", resp.Results[0].Status)
	assert.Zero(t, resp.Results[0].Triples)
}

func TestChatUsesNeighborhoodFacts(t *testing.T) {
	srv, _ := newTestServer(true, "Alice knows Bob.")
	body := bytes.NewBufferString(`{"question": "Who does Alice know?", "node_id": "Alice"}`)

	w := doRequest(srv, http.MethodPost, "/api/chat", body, "application/json")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Alice knows Bob.")
}

func TestChatRequiresQuestion(t *testing.T) {
	srv, _ := newTestServer(true, "")
	body := bytes.NewBufferString(`{"node_id": "Alice"}`)

	w := doRequest(srv, http.MethodPost, "/api/chat", body, "application/json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsEnvelope(t *testing.T) {
	srv, _ := newTestServer(true, "")

	w := doRequest(srv, http.MethodGet, "/api/stats", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"status":"success"`))
}
