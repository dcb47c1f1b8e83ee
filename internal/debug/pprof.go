package debug

import (
	"errors"
	"net/http"
	_ "net/http/pprof"
	"time"

	"go.uber.org/zap"
	"webbrowser/internal/log"
)

// StartPprof serves the default mux, where pprof registers itself, on host.
func StartPprof(host string) *http.Server {
	server := &http.Server{
		Addr:              host,
		Handler:           http.DefaultServeMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Logger.Info("pprof listening", zap.String("host", host))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Logger.Error("pprof failed", zap.Error(err))
		}
	}()

	return server
}
