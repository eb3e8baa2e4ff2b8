package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/pergola"
	"github.com/aretw0/pergola/internal/logging"
	"github.com/aretw0/pergola/pkg/adapters/httpapi"
	"github.com/aretw0/pergola/pkg/adapters/yamldef"
)

var serveCmd = &cobra.Command{
	Use:   "serve <definition.yaml>",
	Short: "Serve a workflow machine over HTTP",
	Long:  `Starts one machine from a resolved transition table and exposes it over HTTP: POST /events to submit inbound events, GET /state for the current context.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		verbose, _ := cmd.Flags().GetBool("verbose")

		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := logging.New(level)

		def, err := yamldef.Load(args[0])
		if err != nil {
			return err
		}

		machine, err := pergola.New(def, pergola.WithLogger(logger))
		if err != nil {
			return err
		}
		defer machine.Close()

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: httpapi.NewHandler(machine, httpapi.WithLogger(logger)),
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("server listening", "addr", srv.Addr, "state", machine.State())
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				_ = srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("port", "8080", "Port to listen on")
}
