package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/scribedesk/internal/model"
	"github.com/ppiankov/scribedesk/internal/pipeline"
	"github.com/ppiankov/scribedesk/internal/store"
)

type transcriptRequest struct {
	Transcript string `json:"transcript"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": pipeline.Version})
}

// handleDraftAudio accepts a multipart "audio" file and drafts an article from it
func (s *Server) handleDraftAudio(c *gin.Context) {
	fh, err := c.FormFile("audio")
	if err != nil {
		respondError(c, http.StatusBadRequest, fmt.Errorf("multipart field \"audio\" is required: %w", err))
		return
	}
	if s.config.MaxUploadBytes > 0 && fh.Size > s.config.MaxUploadBytes {
		respondError(c, http.StatusRequestEntityTooLarge, fmt.Errorf("%s: %w", fh.Filename, pipeline.ErrAudioTooLarge))
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, fmt.Errorf("open upload: %w", err))
		return
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		respondError(c, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}
	if len(data) == 0 {
		respondError(c, http.StatusBadRequest, fmt.Errorf("%s: audio is empty", fh.Filename))
		return
	}

	s.runDraft(c, func(ctx context.Context) (*model.DraftResult, error) {
		return s.drafter.ProcessAudio(ctx, fh.Filename, data)
	})
}

// handleDraftTranscript drafts from text that is already transcribed
func (s *Server) handleDraftTranscript(c *gin.Context) {
	var req transcriptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, fmt.Errorf("invalid JSON payload: %w", err))
		return
	}
	if strings.TrimSpace(req.Transcript) == "" {
		respondError(c, http.StatusBadRequest, errors.New("transcript is required"))
		return
	}

	s.runDraft(c, func(ctx context.Context) (*model.DraftResult, error) {
		return s.drafter.ProcessTranscript(ctx, req.Transcript)
	})
}

// runDraft holds the store's processing flag for the duration of one drafting run
func (s *Server) runDraft(c *gin.Context, run func(ctx context.Context) (*model.DraftResult, error)) {
	if !s.store.TryStartProcessing() {
		respondError(c, http.StatusConflict, errors.New("a draft is already being processed"))
		return
	}
	defer s.store.SetProcessing(false)

	ctx, cancel := s.requestContext(c)
	defer cancel()

	result, err := run(ctx)
	if err != nil {
		if s.verbose {
			fmt.Fprintf(os.Stderr, "✗ Draft failed: %v\n", err)
		}
		respondError(c, draftErrorStatus(err), err)
		return
	}

	s.store.SetTranscription(result.Transcript.Text)
	s.store.ReplaceArticle(result.Article)
	c.JSON(http.StatusOK, result)
}

// handleParse parses a raw model response without calling any service
func (s *Server) handleParse(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		respondError(c, http.StatusBadRequest, fmt.Errorf("read body: %w", err))
		return
	}
	if strings.TrimSpace(string(raw)) == "" {
		respondError(c, http.StatusBadRequest, errors.New("response text is required"))
		return
	}

	result := s.drafter.ParseOnly(string(raw))
	s.store.ReplaceArticle(result.Article)
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetArticle(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleUpdateArticle(c *gin.Context) {
	var patch store.ArticlePatch
	if !bindPatch(c, &patch) {
		return
	}
	if err := s.store.UpdateArticle(patch); err != nil {
		respondError(c, storeErrorStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleAddSubheading(c *gin.Context) {
	sub, err := s.store.AddSubheading()
	if err != nil {
		respondError(c, storeErrorStatus(err), err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (s *Server) handleUpdateSubheading(c *gin.Context) {
	var patch store.SubheadingPatch
	if !bindPatch(c, &patch) {
		return
	}
	s.respondEdit(c, s.store.UpdateSubheading(c.Param("id"), patch))
}

func (s *Server) handleUpdateQuote(c *gin.Context) {
	var patch store.QuotePatch
	if !bindPatch(c, &patch) {
		return
	}
	s.respondEdit(c, s.store.UpdateQuote(c.Param("id"), patch))
}

func (s *Server) handleDeleteQuote(c *gin.Context) {
	s.respondDelete(c, s.store.DeleteQuote(c.Param("id")))
}

func (s *Server) handleUpdateFact(c *gin.Context) {
	var patch store.FactPatch
	if !bindPatch(c, &patch) {
		return
	}
	s.respondEdit(c, s.store.UpdateFact(c.Param("id"), patch))
}

func (s *Server) handleDeleteFact(c *gin.Context) {
	s.respondDelete(c, s.store.DeleteFact(c.Param("id")))
}

// handleExport renders the edited article; format is markdown (default), html or json
func (s *Server) handleExport(c *gin.Context) {
	draft, ok := s.store.Draft()
	if !ok {
		respondError(c, http.StatusNotFound, fmt.Errorf("article: %w", store.ErrNotFound))
		return
	}

	switch strings.ToLower(c.DefaultQuery("format", "markdown")) {
	case "markdown", "md":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(s.renderer.MarkdownArticle(draft)))
	case "html":
		page, err := s.renderer.HTMLArticle(draft, "")
		if err != nil {
			respondError(c, http.StatusInternalServerError, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	case "json":
		c.JSON(http.StatusOK, draft)
	default:
		respondError(c, http.StatusBadRequest, fmt.Errorf("unknown export format %q (use markdown, html or json)", c.Query("format")))
	}
}

func (s *Server) respondEdit(c *gin.Context, err error) {
	if err != nil {
		respondError(c, storeErrorStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, s.store.Snapshot())
}

func (s *Server) respondDelete(c *gin.Context, err error) {
	if err != nil {
		respondError(c, storeErrorStatus(err), err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bindPatch decodes a JSON patch body, answering 400 on failure
func bindPatch(c *gin.Context, patch any) bool {
	if err := c.ShouldBindJSON(patch); err != nil {
		respondError(c, http.StatusBadRequest, fmt.Errorf("invalid JSON payload: %w", err))
		return false
	}
	return true
}

func respondError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func storeErrorStatus(err error) int {
	if errors.Is(err, store.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// draftErrorStatus maps pipeline failures: bad input is the caller's fault, the rest is upstream
func draftErrorStatus(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrAudioTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, pipeline.ErrDraftingDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
