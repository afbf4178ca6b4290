package server

import (
	"github.com/gin-gonic/gin"

	"github.com/agenthands/trellis/internal/config"
	"github.com/agenthands/trellis/internal/graph"
	"github.com/agenthands/trellis/internal/llm"
)

type Server struct {
	Config      *config.Config
	Store       *graph.Store
	Extractor   *graph.Extractor
	Upserter    *graph.Upserter
	Query       *graph.QueryEngine
	Maintenance *graph.Maintenance
	LLM         llm.LLMClient
}

func NewServer(cfg *config.Config, store *graph.Store, llmClient llm.LLMClient) *Server {
	return &Server{
		Config:      cfg,
		Store:       store,
		Extractor:   graph.NewExtractor(llmClient, cfg.Ingest.MaxChars),
		Upserter:    graph.NewUpserter(store),
		Query:       graph.NewQueryEngine(store),
		Maintenance: graph.NewMaintenance(store, cfg.Ingest.SourceDeleteBatch),
		LLM:         llmClient,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	api := r.Group("/api")
	{
		api.POST("/upload", s.Upload)
		api.POST("/ingest/url", s.IngestURL)

		api.GET("/graph", s.Graph)
		api.POST("/chat", s.Chat)

		api.GET("/sources", s.Sources)
		api.DELETE("/sources", s.DeleteSource)

		api.GET("/relations", s.ListRelations)
		api.DELETE("/relations/:id", s.DeleteRelation)
		api.PATCH("/relations/:id", s.UpdateRelation)

		api.POST("/entities/merge", s.MergeEntities)
		api.GET("/entities/search", s.SearchEntities)
		api.GET("/entities/top", s.TopEntities)

		api.GET("/path", s.FindPath)
		api.GET("/stats", s.Stats)
	}

	return r
}
