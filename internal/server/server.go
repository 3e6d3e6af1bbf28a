// Package server exposes the shared article store and the drafting pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/scribedesk/internal/model"
	"github.com/ppiankov/scribedesk/internal/pipeline"
	"github.com/ppiankov/scribedesk/internal/store"
)

// Drafter is the part of the pipeline the server calls
type Drafter interface {
	ProcessAudio(ctx context.Context, name string, data []byte) (*model.DraftResult, error)
	ProcessTranscript(ctx context.Context, text string) (*model.DraftResult, error)
	ParseOnly(raw string) *model.DraftResult
}

// Server wires HTTP routes to one store
type Server struct {
	store    *store.Store
	drafter  Drafter
	renderer *pipeline.Renderer
	config   model.ServerConfig
	verbose  bool

	engine     *gin.Engine
	httpServer *http.Server
}

// New creates a server and registers its routes
func New(cfg model.ServerConfig, st *store.Store, drafter Drafter, renderer *pipeline.Renderer, verbose bool) *Server {
	s := &Server{
		store:    st,
		drafter:  drafter,
		renderer: renderer,
		config:   cfg,
		verbose:  verbose,
	}
	s.engine = s.newRouter()
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler, used by tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) newRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if s.verbose {
		r.Use(gin.LoggerWithWriter(os.Stderr))
	}
	if s.config.MaxUploadBytes > 0 {
		// multipart parts beyond this stay on disk instead of memory
		r.MaxMultipartMemory = s.config.MaxUploadBytes
	}

	r.GET("/health", s.handleHealth)

	api := r.Group("/api")
	{
		api.POST("/drafts", s.handleDraftAudio)
		api.POST("/drafts/transcript", s.handleDraftTranscript)
		api.POST("/drafts/parse", s.handleParse)

		api.GET("/article", s.handleGetArticle)
		api.PATCH("/article", s.handleUpdateArticle)
		api.GET("/article/export", s.handleExport)
		api.POST("/article/subheadings", s.handleAddSubheading)
		api.PATCH("/article/subheadings/:id", s.handleUpdateSubheading)

		api.PATCH("/quotes/:id", s.handleUpdateQuote)
		api.DELETE("/quotes/:id", s.handleDeleteQuote)
		api.PATCH("/facts/:id", s.handleUpdateFact)
		api.DELETE("/facts/:id", s.handleDeleteFact)
	}
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	fmt.Fprintf(os.Stderr, "✓ Listening on %s\n", s.config.Addr)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	fmt.Fprintln(os.Stderr, "✓ Server stopped")
	return nil
}

func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if s.config.RequestTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), time.Duration(s.config.RequestTimeout)*time.Second)
}
