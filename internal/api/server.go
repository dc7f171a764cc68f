// ABOUTME: HTTP server over the document chat service using gin
// ABOUTME: Routes, lifecycle, and graceful shutdown
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harper/docchat/internal/config"
	"github.com/harper/docchat/internal/service"
)

const serviceName = "docchat"

// Version is stamped at build time via -ldflags.
var Version = "1.0.0"

// Server is the HTTP surface. All request handling delegates to the
// orchestration service; the server only translates HTTP to service calls
// and errors to status codes.
type Server struct {
	engine *gin.Engine
	svc    *service.Service
	cfg    *config.Config
}

// NewServer builds the router with middleware and all routes registered.
func NewServer(svc *service.Service, cfg *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger())
	engine.Use(corsMiddleware(cfg.CORSOrigins))
	if cfg.RateLimitRPS > 0 {
		engine.Use(rateLimitMiddleware(cfg.RateLimitRPS))
	}

	s := &Server{engine: engine, svc: svc, cfg: cfg}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/", s.handleHealth)
	s.engine.POST("/upload", s.handleUpload)
	s.engine.POST("/chat", s.handleChat)
	s.engine.GET("/collections", s.handleListCollections)
	s.engine.DELETE("/collections/:collection_id", s.handleDeleteCollection)
}

// Handler exposes the router for tests and custom serving setups.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("api: listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Printf("api: shutting down")
	return srv.Shutdown(shutdownCtx)
}
