package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"marketnet/observability/logging"
)

func main() {
	configFile := flag.String("config", "./marketgate.toml", "Path to the gateway configuration file")
	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	env := strings.TrimSpace(os.Getenv("MARKETNET_ENV"))
	if env == "" {
		env = cfg.Environment
	}
	logger := logging.Setup(logging.Options{Service: "marketgate", Env: env, File: cfg.LogFile})

	skew, err := cfg.clockSkew()
	if err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	secret := cfg.jwtSecret()
	if secret == "" {
		logger.Warn("JWT secret not configured; all authenticated routes will be rejected")
	}

	node := NewNodeClient(cfg.NodeRPCURL, cfg.nodeToken())
	auth := NewAuthenticator(secret, cfg.JWTIssuer, cfg.JWTAudience, skew, logger)
	server := NewServer(node, auth, logger)

	logger.Info("starting marketgate",
		slog.String("listen", cfg.ListenAddress),
		slog.String("node", cfg.NodeRPCURL),
	)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := httpServer.ListenAndServe(); err != nil {
		logger.Error("gateway stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
