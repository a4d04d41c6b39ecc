package httpapi

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

func loggingMiddleware(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now().UTC()
		next.ServeHTTP(w, r)
		logger.Printf("%s %s from=%s req_id=%s dur=%s",
			r.Method, r.URL.Path, r.RemoteAddr, w.Header().Get("X-Request-ID"), time.Since(start))
	})
}

// requestIDMiddleware tags every response with a request ID, honoring one
// supplied by an upstream proxy.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}
