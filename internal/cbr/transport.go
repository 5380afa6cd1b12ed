package cbr

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

type loggingRoundTripper struct {
	wrapped http.RoundTripper
	logger  *zap.Logger
}

func newLoggingRoundTripper(wrapped http.RoundTripper, logger *zap.Logger) http.RoundTripper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return loggingRoundTripper{wrapped: wrapped, logger: logger.With(zap.String("component", "cbr_client"))}
}

func (l loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	l.logger.Debug("request ->", zap.String("method", req.Method), zap.Stringer("url", req.URL))

	res, err := l.wrapped.RoundTrip(req)
	if err != nil {
		l.logger.Warn("request failed", zap.Stringer("url", req.URL), zap.Error(err))
		return nil, err
	}

	l.logger.Debug("response <-",
		zap.String("status", res.Status),
		zap.Duration("took", time.Since(start)),
	)
	return res, nil
}
