package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/growthlab/internal/app"
)

//go:embed static/*
var staticFiles embed.FS

type Server struct {
	svc    *app.Service
	router *http.ServeMux
	port   int
	logger *zap.Logger
}

func NewServer(svc *app.Service, port int, logger *zap.Logger) *Server {
	s := &Server{
		svc:    svc,
		router: http.NewServeMux(),
		port:   port,
		logger: logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Static files
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to create static filesystem: %v", err))
	}
	s.router.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Health check
	s.router.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Pages
	s.router.HandleFunc("GET /{$}", s.handleDashboard)

	// Data
	s.router.HandleFunc("GET /api/timeline", s.handleAPITimeline)
	s.router.HandleFunc("GET /api/summary", s.handleAPISummary)
	s.router.HandleFunc("GET /api/history", s.handleAPIHistory)

	// Recommendations
	s.router.HandleFunc("POST /api/recommendations", s.handleAPIRecommend)
	s.router.HandleFunc("POST /api/recommendations/{id}/accept", s.handleAPIAccept)
	s.router.HandleFunc("POST /api/recommendations/{id}/reject", s.handleAPIReject)

	// Charts and export
	s.router.HandleFunc("GET /api/charts/growth.png", s.handleAPIChartGrowth)
	s.router.HandleFunc("GET /api/charts/predicted.png", s.handleAPIChartPredicted)
	s.router.HandleFunc("GET /api/export/timeline.csv", s.handleAPIExportTimeline)
	s.router.HandleFunc("GET /api/export/predicted.csv", s.handleAPIExportPredicted)
}

// Handler returns the router wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	return middleware.RequestID(middleware.Recoverer(s.logRequests(s.router)))
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	fmt.Printf("Starting server at http://localhost:%d\n", s.port)

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown error", zap.Error(err))
		}
	}()

	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil // Graceful shutdown
	}
	return err
}
