package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"github.com/lemonberrylabs/calc/pkg/api"
	grpcapi "github.com/lemonberrylabs/calc/pkg/api/grpc"
	"github.com/lemonberrylabs/calc/pkg/store"
	"github.com/lemonberrylabs/calc/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API, web UI and gRPC API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "Bind address (default 0.0.0.0, env HOST)")
	serveCmd.Flags().Int("port", 0, "HTTP server port (default 8787, env PORT)")
	serveCmd.Flags().Int("grpc-port", 0, "gRPC server port (default 8788, env GRPC_PORT)")
	serveCmd.Flags().Int("history-limit", 0, "Evaluations kept in history, 0 for unlimited (default 1000, env CALC_HISTORY_LIMIT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, closer, err := setup(cmd)
	if err != nil {
		return err
	}
	defer closer.Close()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	grpcAddr := fmt.Sprintf("%s:%d", cfg.Host, cfg.GRPCPort)

	s := store.New(cfg.HistoryLimit)
	server := api.New(s, api.Options{Logger: logger, Precision: cfg.Precision})

	ui := web.New(s, cfg.Precision)
	ui.Register(server.App())

	// Bind the gRPC port first so a conflict fails before anything is served.
	grpcServer := grpcapi.New(s, logger)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	grpcErr := make(chan error, 1)
	go func() {
		logger.Info("gRPC server listening", "addr", lis.Addr().String())
		if err := grpcServer.ServeListener(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			grpcErr <- fmt.Errorf("grpc server: %w", err)
			if err := server.Shutdown(); err != nil {
				logger.Error("shutdown failed", "error", err)
			}
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	defer func() {
		signal.Stop(sigCh)
		close(done)
	}()
	go func() {
		select {
		case <-sigCh:
		case <-done:
			return
		}
		logger.Info("shutting down")
		grpcServer.GracefulStop()
		if err := server.Shutdown(); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server listening", "addr", addr, "history_limit", cfg.HistoryLimit)
	err = server.Listen(addr)
	grpcServer.GracefulStop()
	select {
	case gerr := <-grpcErr:
		return gerr
	default:
	}
	if err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
