package cli

import (
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"archive-browser/handlers"
	"archive-browser/logger"

	"github.com/morikuni/failure/v2"
	"github.com/spf13/cobra"
	"golang.org/x/net/netutil"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the archive catalog over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, *configPath)
		},
	}
}

func runServe(cmd *cobra.Command, configPath string) error {
	s, err := newServices(configPath)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := s.warm(ctx); err != nil {
		return err
	}

	addr := s.cfg.Server.Address()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return failure.Translate(err, ErrServer,
			failure.Message("Failed to listen"),
			failure.Context{"address": addr},
		)
	}
	if n := s.cfg.Server.MaxConnections; n > 0 {
		ln = netutil.LimitListener(ln, n)
	}

	app := handlers.NewApp(s.handler(Version), s.cfg.Server)
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Server listening",
			logger.String("address", addr),
			logger.Int("max_connections", s.cfg.Server.MaxConnections),
		)
		errCh <- app.Listener(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return failure.Translate(err, ErrServer, failure.Message("Server stopped unexpectedly"))
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		s.log.Error("Graceful shutdown failed", logger.Error(err))
		return failure.Translate(err, ErrServer, failure.Message("Graceful shutdown failed"))
	}
	return nil
}
