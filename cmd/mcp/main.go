package main

import (
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	mcpadapter "github.com/kirillkom/papercheck/internal/adapters/mcp"
	"github.com/kirillkom/papercheck/internal/bootstrap"
	"github.com/kirillkom/papercheck/internal/config"
	"github.com/kirillkom/papercheck/internal/core/domain"
	"github.com/kirillkom/papercheck/internal/observability/logging"
)

const version = "0.3.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.NewConsoleLogger(os.Stderr, "info")
		log.Fatal().Err(err).Msg("config_error")
	}
	// stdout carries the protocol.
	logging.NewConsoleLogger(os.Stderr, cfg.LogLevel)

	paperType, err := domain.ParsePaperType(cfg.DefaultPaperType)
	if err != nil {
		log.Fatal().Err(err).Msg("config_error")
	}

	tools := mcpadapter.NewTools(bootstrap.NewChecker(cfg, nil, nil), paperType)
	s := mcpadapter.NewServer("papercheck", version, tools)

	log.Info().Str("version", version).Msg("mcp_server_starting")
	if err := server.ServeStdio(s); err != nil {
		log.Fatal().Err(err).Msg("mcp_server_error")
	}
}
