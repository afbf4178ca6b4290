package server

import (
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agenthands/trellis/internal/ingest"
)

// FileResult reports the outcome of one file within an upload batch. A
// failed file never aborts its batch.
type FileResult struct {
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Triples  int    `json:"triples"`
	Error    string `json:"error,omitempty"`
}

func (s *Server) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		files = form.File["file"]
	}
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files provided"})
		return
	}

	batchID := uuid.NewString()
	log.Info("Upload batch started", "batch", batchID, "files", len(files))

	results := make([]FileResult, 0, len(files))
	for _, fh := range files {
		results = append(results, s.ingestFile(c, batchID, fh))
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "batch": batchID, "results": results})
}

func (s *Server) ingestFile(c *gin.Context, batchID string, fh *multipart.FileHeader) FileResult {
	res := FileResult{Filename: fh.Filename}

	f, err := fh.Open()
	if err != nil {
		res.Status = "failed"
		res.Error = "could not open file"
		return res
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		res.Status = "failed"
		res.Error = "could not read file"
		return res
	}

	text, err := ingest.Normalize(data, fh.Filename)
	if err != nil {
		log.Warn("File rejected", "batch", batchID, "file", fh.Filename, "err", err)
		res.Status = "failed"
		res.Error = err.Error()
		return res
	}
	if text == "" {
		res.Status = "empty"
		return res
	}

	triples := s.Extractor.Extract(c.Request.Context(), text, fh.Filename)
	res.Triples = len(triples)

	if !s.Store.Ready() {
		res.Status = "skipped"
		return res
	}
	if err := s.Upserter.Upsert(c.Request.Context(), triples); err != nil {
		log.Error("Upsert failed", "batch", batchID, "file", fh.Filename, "err", err)
		res.Status = "failed"
		res.Error = "failed to store triples"
		return res
	}

	res.Status = "success"
	return res
}

type IngestURLRequest struct {
	URL string `json:"url" binding:"required"`
}

func (s *Server) IngestURL(c *gin.Context) {
	var req IngestURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: 'url' is required"})
		return
	}

	timeout := time.Duration(s.Config.Ingest.ScrapeTimeoutSecs) * time.Second
	text, err := ingest.ScrapeURL(c.Request.Context(), req.URL, timeout)
	if err != nil {
		log.Warn("URL ingest failed", "url", req.URL, "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to fetch url: " + err.Error()})
		return
	}
	if text == "" {
		c.JSON(http.StatusOK, gin.H{"status": "empty", "triples": 0})
		return
	}

	triples := s.Extractor.Extract(c.Request.Context(), text, req.URL)
	if !s.Store.Ready() {
		c.JSON(http.StatusOK, gin.H{"status": "skipped", "triples": len(triples)})
		return
	}
	if err := s.Upserter.Upsert(c.Request.Context(), triples); err != nil {
		log.Error("Upsert failed", "url", req.URL, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store triples"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "triples": len(triples)})
}
