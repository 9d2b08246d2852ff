package api

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/alai22/gladly-conversation-analyzer/internal/api/recovery"
)

// NewRouter wires all API routes to their handlers.
func NewRouter(engine QueryEngine, corpusSvc CorpusService, runner TopicRunner, topicStore TopicReader, log zerolog.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(recovery.Middleware)

	ask := NewAskHandler(engine, log)
	corpusHandler := NewCorpusHandler(corpusSvc, log)
	topicsHandler := NewTopicsHandler(runner, topicStore, log)
	healthHandler := NewHealthHandler()

	router.HandleFunc("/api/ask", ask.Ask).Methods("POST")

	router.HandleFunc("/api/corpus/summary", corpusHandler.GetSummary).Methods("GET")
	router.HandleFunc("/api/corpus/refresh", corpusHandler.Refresh).Methods("POST")

	router.HandleFunc("/api/topics/extract", topicsHandler.StartExtraction).Methods("POST")
	router.HandleFunc("/api/topics/jobs/{jobId}", topicsHandler.GetJob).Methods("GET")
	router.HandleFunc("/api/topics/jobs/{jobId}/stop", topicsHandler.StopJob).Methods("POST")
	router.HandleFunc("/api/topics/{date:\\d{4}-\\d{2}-\\d{2}}", topicsHandler.GetTopicsForDate).Methods("GET")

	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	return router
}
