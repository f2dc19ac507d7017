package ui

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stringcalc/domain/instrument"
	"stringcalc/internal/api"
	"stringcalc/internal/collector"
	"stringcalc/internal/table"
	"stringcalc/ports"
)

//go:embed templates/*
var embeddedFiles embed.FS

// CalculatorPage returns the embedded string calculator page.
func CalculatorPage() ([]byte, error) {
	return embeddedFiles.ReadFile("templates/string_calculator.html")
}

// Page is the live calculator page the server exposes
type Page interface {
	SetFields(ctx context.Context, fields map[string]string) ([]string, error)
	UpdateInstrument(ctx context.Context) (collector.Result, error)
	Snapshot(ctx context.Context) (instrument.TableSnapshot, error)
	Summary(ctx context.Context) (table.Summary, error)
	Export(ctx context.Context, exporter ports.SnapshotExporter, w io.Writer) error
	Render(ctx context.Context, w io.Writer) error
}

// Peer reports the state of the realtime channel
type Peer interface {
	Connected() bool
}

// Options holds the optional parts of the server
type Options struct {
	Metrics         http.Handler
	Peer            Peer
	ShutdownTimeout time.Duration
}

// Server represents the web server for the string calculator
type Server struct {
	router    *gin.Engine
	page      Page
	hub       *api.SSEHub
	opts      Options
	templates *template.Template
	homeBody  template.HTML
}

// NewServer creates a new web server instance and registers its routes
func NewServer(page Page, hub *api.SSEHub, opts Options) (*Server, error) {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	s := &Server{
		router: gin.Default(),
		page:   page,
		hub:    hub,
		opts:   opts,
	}

	if err := s.loadTemplates(); err != nil {
		return nil, err
	}
	s.setupRoutes()
	return s, nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleHome)
	s.router.GET("/healthz", s.handleHealth)
	if s.opts.Metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.opts.Metrics))
	}

	calc := s.router.Group("/string_calculator")
	calc.GET("/", s.handleCalculator)
	calc.POST("/fields", s.handleFields)
	calc.POST("/update", s.handleUpdate)
	calc.GET("/table.json", s.handleTable)
	calc.GET("/export.xlsx", s.handleExport)
	calc.GET("/export.csv", s.handleExport)
	if s.hub != nil {
		calc.GET("/events", s.hub.HandleSSE)
	}
}

// Handler exposes the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on addr until ctx ends, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting String Calculator UI on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	log.Printf("[Server] shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
