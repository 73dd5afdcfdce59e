package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"marketnet/config"
	"marketnet/core"
	"marketnet/observability/logging"
	"marketnet/rpc"
	"marketnet/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("MARKETNET_ENV"))

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if env == "" {
		env = cfg.Environment
	}
	logger := logging.Setup(logging.Options{Service: "marketd", Env: env, File: cfg.LogFile})

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	node := core.NewNode(db)

	token := cfg.RPCToken()
	if token == "" {
		logger.Warn("RPC token not configured; mutating methods will be rejected")
	}

	logger.Info("starting marketnet node",
		slog.String("network", cfg.NetworkName),
		slog.String("rpc", cfg.RPCAddress),
		slog.String("dataDir", cfg.DataDir),
	)

	server := rpc.NewServer(node, token, logger)
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
