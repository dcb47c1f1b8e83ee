package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
	"webbrowser/internal/log"
	"webbrowser/internal/util"
	"webbrowser/pkg/response"
)

// startedWriter notes whether the handler already began its response.
type startedWriter struct {
	http.ResponseWriter
	started bool
}

func (sw *startedWriter) WriteHeader(code int) {
	sw.started = true
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *startedWriter) Write(b []byte) (int, error) {
	sw.started = true
	return sw.ResponseWriter.Write(b)
}

// RecoverPanic turns a handler panic into a 500 {"detail"} response and closes
// the connection. A panic after the response began only closes the connection.
func RecoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &startedWriter{ResponseWriter: w}
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			log.Logger.Error("panic serving request",
				zap.Any("panic", rec),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("client_ip", util.GetClientIPAddress(r)),
				zap.ByteString("stack", debug.Stack()),
			)

			w.Header().Set("Connection", "close")
			if sw.started {
				return
			}
			response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		}()

		next.ServeHTTP(sw, r)
	})
}
