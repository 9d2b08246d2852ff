package main

import (
	"os"

	"github.com/alai22/gladly-conversation-analyzer/internal/logger"
	"github.com/alai22/gladly-conversation-analyzer/service"
)

func main() {
	if err := service.Run(); err != nil {
		log := logger.New("analyzer-service")
		log.Error().Err(err).Msg("service exited with error")
		os.Exit(1)
	}
}
