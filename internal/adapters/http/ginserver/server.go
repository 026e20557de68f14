package ginserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 3 * time.Second

// Serve listens on addr and serves handler until ctx is done.
// It returns the bound address once listening; errors after that are logged.
// stop shuts the server down and waits for it.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) (bound net.Addr, stop func(), err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("status server failed", zap.Error(err))
		}
	}()
	logger.Info("status server started", zap.String("addr", ln.Addr().String()))

	stop = func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			logger.Warn("status server shutdown", zap.Error(err))
		}
		<-done
	}
	return ln.Addr(), stop, nil
}
