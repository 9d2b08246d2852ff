// Package service wires the analyzer's components together and runs the HTTP
// server.
package service

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/alai22/gladly-conversation-analyzer/internal/api"
	"github.com/alai22/gladly-conversation-analyzer/internal/blob"
	"github.com/alai22/gladly-conversation-analyzer/internal/config"
	"github.com/alai22/gladly-conversation-analyzer/internal/corpus"
	"github.com/alai22/gladly-conversation-analyzer/internal/llm"
	"github.com/alai22/gladly-conversation-analyzer/internal/logger"
	"github.com/alai22/gladly-conversation-analyzer/internal/rag"
	"github.com/alai22/gladly-conversation-analyzer/internal/topics"
)

// Run starts the analyzer HTTP service and blocks until shutdown or error.
func Run() error {
	log := logger.New("analyzer-service")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Int("http_port", cfg.HTTPPort).
		Str("claude_model", cfg.ClaudeModel).
		Str("s3_bucket", cfg.S3Bucket).
		Str("corpus_key", cfg.CorpusKey).
		Msg("Analyzer service starting")

	ctx, stop := newServerContext()
	defer stop()

	router, err := buildRouter(ctx, cfg, log)
	if err != nil {
		return err
	}

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}
}

// buildRouter constructs the dependency graph and wires HTTP routes.
func buildRouter(ctx context.Context, cfg *config.Config, log zerolog.Logger) (http.Handler, error) {
	blobs, err := newBlobStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	client, err := llm.NewAnthropicClient(llm.AnthropicConfig{
		APIKey:  cfg.AnthropicAPIKey,
		BaseURL: cfg.AnthropicBaseURL,
		Model:   cfg.ClaudeModel,
		Timeout: cfg.LLMTimeout(),
	}, log)
	if err != nil {
		log.Error().Err(err).Msg("LLM client unavailable")
		return nil, err
	}

	corpusStore := corpus.NewStore(blobs, cfg.CorpusKey, log)
	if _, err := corpusStore.Refresh(ctx); err != nil {
		// Startup without data is fine; queries 503 until a refresh
		// succeeds.
		log.Warn().Err(err).Msg("initial corpus load failed, starting empty")
	}

	engine := rag.NewEngine(corpusStore, client, cfg.MinRetrievalYield, cfg.SynthesisVisibleItems, log)

	topicStore := topics.NewStore(blobs, log)
	extractor := topics.NewExtractor(client, cfg.ClaudeModel, cfg.ExtractionMaxRetries, log)
	runner := topics.NewRunner(corpusStore, topicStore, extractor, cfg.ExtractionCheckpointEvery, cfg.ExtractionDelay(), log)

	return api.NewRouter(engine, corpusStore, runner, topicStore, log), nil
}

// newBlobStore picks S3 when a bucket is configured, otherwise local files.
func newBlobStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (blob.Store, error) {
	if cfg.S3Bucket != "" {
		log.Info().Str("bucket", cfg.S3Bucket).Str("region", cfg.S3Region).Msg("using S3 blob store")
		return blob.NewS3(ctx, cfg.S3Bucket, cfg.S3Region)
	}
	log.Info().Str("dir", cfg.DataDir).Msg("using filesystem blob store")
	return blob.NewFS(cfg.DataDir), nil
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		// Synthesis responses can take as long as the LLM timeout.
		WriteTimeout: cfg.LLMTimeout() + 30*time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
