package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/campusbooks/bookstore-go-app/internal/metrics"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Principal is the authenticated caller, resolved by the auth layer in front
// of this service and forwarded as headers. Admin gates the product edit
// endpoint; everything else only needs UserID.
type Principal struct {
	UserID int64
	Admin  bool
}

type principalKey struct{}

type requestIDKey struct{}

// FromContext returns the request principal. ok is false on routes mounted
// outside AuthMiddleware.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// AuthMiddleware requires an X-User-ID header and puts the resulting
// Principal into the request context. X-User-Role: admin grants the admin
// flag; any other value is an ordinary user.
func AuthMiddleware(log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get("X-User-ID")
			userID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || userID <= 0 {
				log.Warnf("Rejected request without valid principal: %s %s", r.Method, r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"message":"authentication required"}`))
				return
			}

			p := Principal{
				UserID: userID,
				Admin:  r.Header.Get("X-User-Role") == "admin",
			}
			ctx := context.WithValue(r.Context(), principalKey{}, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MetricsMiddleware records request count, error count and latency per route,
// and logs each request.
func MetricsMiddleware(m *metrics.AppMetrics, log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			duration := time.Since(start).Milliseconds()

			routePattern := "unknown"
			if route := mux.CurrentRoute(r); route != nil {
				if pathTemplate, err := route.GetPathTemplate(); err == nil {
					routePattern = pathTemplate
				}
			}

			ctx := r.Context()
			attrs := []attribute.KeyValue{
				attribute.String("http.method", r.Method),
				attribute.String("http.route", routePattern),
				attribute.Int("http.status_code", rw.statusCode),
			}

			if m != nil {
				m.HTTPRequestsTotal.Add(ctx, 1, metric.WithAttributes(m.WithServiceName(attrs)...))
				if rw.statusCode >= 400 {
					m.HTTPRequestsErrors.Add(ctx, 1, metric.WithAttributes(m.WithServiceName(attrs)...))
				}
				m.HTTPRequestDuration.Record(ctx, float64(duration), metric.WithAttributes(m.WithServiceName(attrs)...))
			}

			entry := log.WithFields(logrus.Fields{
				"method":      r.Method,
				"route":       routePattern,
				"status":      rw.statusCode,
				"duration_ms": duration,
				"remote":      r.RemoteAddr,
			})
			if requestID, ok := ctx.Value(requestIDKey{}).(string); ok {
				entry = entry.WithField("request_id", requestID)
			}
			if rw.statusCode >= 500 {
				entry.Error("request failed")
			} else {
				entry.Info("request handled")
			}
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// RequestIDMiddleware adds a request ID to the context and response
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CORSMiddleware adds CORS headers
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID, X-User-ID, X-User-Role")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RecoveryMiddleware turns panics into 500s instead of dropping the connection
func RecoveryMiddleware(log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Errorf("Panic handling %s %s: %v", r.Method, r.URL.Path, err)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func generateRequestID() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36)
}
