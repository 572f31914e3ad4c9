package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

var logger = zap.NewNop().Sugar()

// SetLogger задаёт логгер для middleware пакета.
func SetLogger(l *zap.SugaredLogger) {
	logger = l
}

// loggingWriter запоминает статус и размер ответа.
type loggingWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *loggingWriter) WriteHeader(statusCode int) {
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *loggingWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

// WithLogging логирует метод, путь, статус, размер и длительность.
// Заголовок Authorization сознательно не логируется.
func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lw := &loggingWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lw, r)

		logger.Infow("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", lw.status,
			"size", lw.size,
			"duration", time.Since(start),
		)
	})
}
