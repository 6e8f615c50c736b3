// Package server exposes a trained tokenizer over HTTP: /health, /vocab,
// POST /tokenize and POST /detokenize.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/example/go-subtok/internal/config"
	"github.com/example/go-subtok/internal/tokenizer"
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxTextBytes int
	workers      int
	logger       *slog.Logger
}

func defaultOptions() options {
	return options{
		maxTextBytes: 65536,
		workers:      4,
		logger:       slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxTextBytes sets the maximum allowed text length in bytes for POST /tokenize.
func WithMaxTextBytes(n int) Option {
	return func(o *options) { o.maxTextBytes = n }
}

// WithWorkers sets the maximum number of concurrent encode/decode calls.
// Zero disables throttling.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

// handler holds the dependencies needed to serve HTTP requests.
type handler struct {
	tok  tokenizer.Tokenizer
	opts options
	sem  chan struct{} // semaphore bounding concurrent codec calls
	log  *slog.Logger
}

// NewHandler returns an http.Handler serving /health, /vocab, /tokenize and
// /detokenize against tok.
func NewHandler(tok tokenizer.Tokenizer, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		tok:  tok,
		opts: opts,
		log:  opts.logger,
	}
	if opts.workers > 0 {
		h.sem = make(chan struct{}, opts.workers)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/vocab", h.handleVocab)
	mux.HandleFunc("/tokenize", h.handleTokenize)
	mux.HandleFunc("/detokenize", h.handleDetokenize)
	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

type vocabResponse struct {
	Variant    string `json:"variant"`
	Size       int    `json:"size"`
	MergeRules int    `json:"merge_rules"`
	Unknown    string `json:"unknown"`
}

func (h *handler) handleVocab(w http.ResponseWriter, _ *http.Request) {
	v := h.tok.Vocab()
	writeJSON(w, http.StatusOK, vocabResponse{
		Variant:    string(v.Variant()),
		Size:       v.Len(),
		MergeRules: len(v.Rules()),
		Unknown:    v.Specials().Unknown,
	})
}

type tokenizeRequest struct {
	Text string `json:"text"`
}

type tokenizeResponse struct {
	Tokens []string `json:"tokens"`
	IDs    []int    `json:"ids"`
	Count  int      `json:"count"`
}

func (h *handler) handleTokenize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req tokenizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text field is required")
		return
	}

	if len(req.Text) > h.opts.maxTextBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("text exceeds maximum size of %d bytes", h.opts.maxTextBytes))
		return
	}

	if !h.acquire(w, r) {
		return
	}
	defer h.release()

	start := time.Now()
	tokens := h.tok.EncodeTokens(req.Text)
	ids := h.tok.Encode(req.Text)

	h.log.InfoContext(r.Context(), "tokenize complete",
		slog.Int("text_len", len(req.Text)),
		slog.Int("tokens", len(tokens)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	if tokens == nil {
		tokens = []string{}
	}
	if ids == nil {
		ids = []int{}
	}
	writeJSON(w, http.StatusOK, tokenizeResponse{
		Tokens: tokens,
		IDs:    ids,
		Count:  len(tokens),
	})
}

type detokenizeRequest struct {
	IDs []int `json:"ids"`
}

type detokenizeResponse struct {
	Text string `json:"text"`
}

func (h *handler) handleDetokenize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req detokenizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "ids field is required")
		return
	}

	if !h.acquire(w, r) {
		return
	}
	defer h.release()

	writeJSON(w, http.StatusOK, detokenizeResponse{Text: h.tok.Decode(req.IDs)})
}

// acquire takes a worker slot, honouring context cancellation while waiting.
// It reports false after writing the error response when the request was
// cancelled. With throttling disabled it is a no-op.
func (h *handler) acquire(w http.ResponseWriter, r *http.Request) bool {
	if h.sem == nil {
		return true
	}
	select {
	case h.sem <- struct{}{}:
		return true
	case <-r.Context().Done():
		writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for worker")
		return false
	}
}

func (h *handler) release() {
	if h.sem != nil {
		<-h.sem
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	tok             tokenizer.Tokenizer
	shutdownTimeout time.Duration
}

func New(cfg config.Config, tok tokenizer.Tokenizer) *Server {
	return &Server{
		cfg:             cfg,
		tok:             tok,
		shutdownTimeout: 30 * time.Second,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

func (s *Server) Start(ctx context.Context) error {
	h := NewHandler(s.tok,
		WithWorkers(s.cfg.Server.Workers),
		WithMaxTextBytes(s.cfg.Server.MaxTextBytes),
	)

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

// ProbeHTTP checks the /health endpoint of a running server.
func ProbeHTTP(addr string) error {
	resp, err := http.Get("http://" + addr + "/health") //nolint:noctx
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}
	return nil
}
