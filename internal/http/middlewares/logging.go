package middlewares

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/fitpulse/identity/internal/observability/logger"
)

// statusRecorder captura status y bytes escritos.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// levelFor: 5xx a Error, 4xx a Warn, el resto Info.
func levelFor(status int) zapcore.Level {
	switch {
	case status >= 500:
		return zapcore.ErrorLevel
	case status >= 400:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// WithLogging arma un logger scoped al request (request_id, method, path,
// client_ip), lo deja en el contexto para handlers y services, y al terminar
// emite una línea con status, bytes y duración. El nivel sale del status.
func WithLogging() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLog := logger.L().With(
				logger.RequestID(GetRequestID(r.Context())),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.ClientIP(clientIP(r)),
			)

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(logger.ToContext(r.Context(), reqLog)))

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			if ce := reqLog.Check(levelFor(status), "request served"); ce != nil {
				ce.Write(
					zap.Int("status", status),
					zap.Int("bytes", rec.bytes),
					zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				)
			}
		})
	}
}
