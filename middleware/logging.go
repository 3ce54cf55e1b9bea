package middleware

import (
	"log"
	"net/http"
	"time"
)

// LoggingMiddleware logs one line per request with status, size and
// latency. Slow analytics queries get flagged so cache misses on the
// heavy aggregation paths stand out in the logs.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrw, r)

		duration := time.Since(start)
		log.Printf("%s %s %s %d %dB %v",
			r.RemoteAddr,
			r.Method,
			r.URL.RequestURI(),
			wrw.status,
			wrw.bytes,
			duration,
		)
		if duration > time.Second {
			log.Printf("Slow request: %s %s took %v", r.Method, r.URL.Path, duration)
		}
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}
