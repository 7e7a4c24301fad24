package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tyrowin/roomchat/internal/chat"
	"github.com/Tyrowin/roomchat/internal/mirror"
	"github.com/Tyrowin/roomchat/internal/server"
	"github.com/mama165/sdk-go/logs"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Room chat server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Configuration & Logger
	config, err := server.NewConfigFromEnv()
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Transport, optionally mirrored to NATS
	hub := server.NewHub(*config, logger)
	var transport chat.Transport = hub
	if config.NATSURL != "" {
		nc, err := mirror.Connect(config.NATSURL, logger)
		if err != nil {
			return exitRuntime, err
		}
		defer nc.Close()
		transport = mirror.NewTransport(hub, nc, config.NATSSubjectPrefix, logger)
		logger.Info("Mirroring room broadcasts to NATS", "url", config.NATSURL, "prefix", config.NATSSubjectPrefix)
	}

	// 3. Room logic
	relay := chat.NewRelay(chat.NewRoomStore(), transport, logger)
	go hub.Run(relay)

	// 4. HTTP server
	httpServer := server.CreateServer(config.Port, server.SetupRoutes(hub))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		if err := server.StartServer(httpServer, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 5. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		_ = hub.Shutdown(config.ShutdownTimeout)
		return exitRuntime, err
	}

	// 6. Graceful Shutdown
	code := exitOK
	if err := server.ShutdownServer(httpServer, config.ShutdownTimeout, logger); err != nil {
		code = exitRuntime
	}
	if err := hub.Shutdown(config.ShutdownTimeout); err != nil {
		logger.Warn("Hub shutdown incomplete", "error", err)
		code = exitRuntime
	}
	logger.Info("Server stopped")
	return code, nil
}
