package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/rgonek/md4go/metrics"
	"github.com/rgonek/md4go/parser"
	"github.com/rgonek/md4go/renderer"
)

// ServeCmd serves rendering and event dumps over HTTP.
type ServeCmd struct {
	OptionFlags `embed:""`

	Addr      string `default:":8080" help:"Listen address"`
	MaxInput  int64  `name:"max-input" default:"1048576" help:"Maximum request body size in bytes"`
	MaxOutput int    `name:"max-output" help:"Fail when the HTML would exceed this many bytes"`
}

func (c *ServeCmd) Run(root *CLI) error {
	cfg, err := resolveConfig(root.Config, c.OptionFlags)
	if err != nil {
		return err
	}

	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	r, err := newRenderer(cfg, c.MaxOutput, slog.Default(), rec)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	p, err := newParser(cfg, slog.Default(), rec)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	srv := &server{renderer: r, parser: p, registry: reg, maxInput: c.MaxInput}
	httpServer := &http.Server{
		Addr:         c.Addr,
		Handler:      srv.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	slog.Info("Serving", "addr", c.Addr, "parser_flags", r.ParserFlags().Names())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("Shutdown signal received, stopping server...")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := httpServer.Shutdown(stopCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	slog.Info("Server stopped")
	return nil
}

type server struct {
	renderer *renderer.HTMLRenderer
	parser   *parser.Parser
	registry *prom.Registry
	maxInput int64
}

// Response is the JSON envelope of the events and error responses.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/render", s.handleRender)
	r.Post("/events", s.handleEvents)
	r.Method(http.MethodGet, "/metrics", metrics.HTTPHandler(s.registry))
	return r
}

// requestID makes sure every request carries an X-Request-Id, generating a
// UUID when the client sent none, and echoes it in the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(middleware.RequestIDHeader, id)
		}
		w.Header().Set(middleware.RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	data, ok := s.readBody(w, r)
	if !ok {
		return
	}

	html, err := s.renderer.RenderBytes(data)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, renderer.ErrOutputTooLarge) {
			code = http.StatusRequestEntityTooLarge
		}
		writeError(w, code, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(html)
}

// handleEvents returns the event stream of the request body. The optional
// stop_after query parameter cancels parsing after that many events.
func (s *server) handleEvents(w http.ResponseWriter, r *http.Request) {
	stopAfter := 0
	if v := r.URL.Query().Get("stop_after"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid stop_after %q", v))
			return
		}
		stopAfter = n
	}

	data, ok := s.readBody(w, r)
	if !ok {
		return
	}

	doc, err := collectEvents(s.parser, data, true, stopAfter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	doc.Source = middleware.GetReqID(r.Context())
	writeJSON(w, http.StatusOK, Response{Success: true, Data: doc})
}

func (s *server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body := r.Body
	if s.maxInput > 0 {
		body = http.MaxBytesReader(w, r.Body, s.maxInput)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}

	data, err = decodeInput(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return data, true
}

func writeJSON(w http.ResponseWriter, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, Response{Success: false, Error: message})
}
