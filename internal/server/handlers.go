package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/agenthands/trellis/internal/graph"
	"github.com/agenthands/trellis/internal/ingest"
)

// fail maps an error onto the envelope: invalid input is the caller's
// fault, everything else is ours.
func fail(c *gin.Context, err error) {
	var vErr *graph.ValidationError
	var idErr *graph.InvalidEdgeIDError
	var fmtErr *ingest.UnsupportedFormatError
	if errors.As(err, &vErr) || errors.As(err, &idErr) || errors.As(err, &fmtErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Error("Request failed", "path", c.FullPath(), "err", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
}

func (s *Server) Graph(c *gin.Context) {
	req := graph.SubgraphRequest{
		Seed:      c.Query("seed"),
		Depth:     1,
		SourceDoc: c.Query("source"),
	}
	if v := c.Query("depth"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid depth"})
			return
		}
		req.Depth = d
	}
	if v := c.Query("min_confidence"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "min_confidence must be between 0 and 1"})
			return
		}
		req.MinConfidence = &f
	}

	view, err := s.Query.Subgraph(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "nodes": view.Nodes, "edges": view.Edges})
}

type ChatRequest struct {
	Question string `json:"question" binding:"required"`
	NodeID   string `json:"node_id"`
}

const chatPrompt = `Answer the question using the knowledge graph facts below. If the facts are insufficient, say so instead of guessing.

Facts:
%FACTS%

Question: %QUESTION%`

// Chat answers a question grounded in the immediate neighborhood of one
// entity. Without a node_id the model answers from the question alone.
func (s *Server) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: 'question' is required"})
		return
	}

	facts := "(none)"
	if req.NodeID != "" {
		view, err := s.Query.Subgraph(c.Request.Context(), graph.SubgraphRequest{
			Seed:  req.NodeID,
			Depth: 1,
		})
		if err != nil {
			fail(c, err)
			return
		}
		lines := make([]string, 0, len(view.Edges))
		for _, e := range view.Edges {
			lines = append(lines, fmt.Sprintf("%s %s %s", e.Source, e.Predicate, e.Target))
		}
		if len(lines) > 0 {
			facts = strings.Join(lines, "\n")
		}
	}

	prompt := strings.Replace(chatPrompt, "%FACTS%", facts, 1)
	prompt = strings.Replace(prompt, "%QUESTION%", req.Question, 1)

	answer, err := s.LLM.Generate(c.Request.Context(), prompt)
	if err != nil {
		log.Error("Chat completion failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Completion failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "answer": answer})
}

func (s *Server) Sources(c *gin.Context) {
	sources, err := s.Query.Sources(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "sources": sources})
}

func (s *Server) DeleteSource(c *gin.Context) {
	source := c.Query("source")
	deleted, pruned, err := s.Maintenance.DeleteSource(c.Request.Context(), source)
	if err != nil {
		fail(c, err)
		return
	}
	if !s.Store.Ready() {
		c.JSON(http.StatusOK, gin.H{"status": "skipped"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "deleted": deleted, "pruned": pruned})
}

func (s *Server) ListRelations(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	relations, err := s.Maintenance.ListRelations(c.Request.Context(), c.Query("source"), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "relations": relations})
}

func (s *Server) DeleteRelation(c *gin.Context) {
	deleted, err := s.Maintenance.DeleteRelation(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if !s.Store.Ready() {
		c.JSON(http.StatusOK, gin.H{"status": "skipped"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "deleted": deleted})
}

type UpdateRelationRequest struct {
	Confidence *float64 `json:"confidence" binding:"required"`
}

func (s *Server) UpdateRelation(c *gin.Context) {
	var req UpdateRelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: 'confidence' is required"})
		return
	}

	updated, err := s.Maintenance.UpdateConfidence(c.Request.Context(), c.Param("id"), *req.Confidence)
	if err != nil {
		fail(c, err)
		return
	}
	if !s.Store.Ready() {
		c.JSON(http.StatusOK, gin.H{"status": "skipped"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "updated": updated})
}

type MergeEntitiesRequest struct {
	From string `json:"from" binding:"required"`
	Into string `json:"into" binding:"required"`
}

func (s *Server) MergeEntities(c *gin.Context) {
	var req MergeEntitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: 'from' and 'into' are required"})
		return
	}

	redirected, err := s.Maintenance.MergeEntities(c.Request.Context(), req.From, req.Into)
	if err != nil {
		fail(c, err)
		return
	}
	if !s.Store.Ready() {
		c.JSON(http.StatusOK, gin.H{"status": "skipped"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "redirected": redirected})
}

func (s *Server) SearchEntities(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	entities, err := s.Query.SearchEntities(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "entities": entities})
}

func (s *Server) TopEntities(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	entities, err := s.Query.TopEntities(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "entities": entities})
}

func (s *Server) FindPath(c *gin.Context) {
	maxDepth := 0
	if v := c.Query("max_depth"); v != "" {
		maxDepth, _ = strconv.Atoi(v)
	}
	paths, err := s.Query.FindPath(c.Request.Context(), c.Query("from"), c.Query("to"), maxDepth)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "paths": paths})
}

func (s *Server) Stats(c *gin.Context) {
	stats, err := s.Query.GraphStats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "stats": stats})
}
