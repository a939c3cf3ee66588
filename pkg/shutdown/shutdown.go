// Package shutdown coordinates graceful process termination.
package shutdown

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// CreateGracefulShutdownChannel returns a channel that receives SIGINT and
// SIGTERM.
func CreateGracefulShutdownChannel() chan os.Signal {
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	return gracefulShutdown
}

// ListenForShutdown blocks until a signal arrives, runs the handler, then
// waits up to timeout for done before returning. A second signal or the
// timeout ends the wait immediately.
func ListenForShutdown(
	signals chan os.Signal,
	done chan bool,
	handler func(),
	timeout time.Duration,
	l *zap.Logger,
) {
	sig := <-signals
	l.Sugar().Infow("Received shutdown signal", zap.String("signal", sig.String()))

	go handler()

	select {
	case <-done:
		l.Sugar().Infow("Shutdown complete")
	case <-signals:
		l.Sugar().Infow("Received second signal, exiting immediately")
	case <-time.After(timeout):
		l.Sugar().Infow("Shutdown timed out", zap.Duration("timeout", timeout))
	}
}
