package httpclient

import (
	"net/http"
	"time"

	"astro-checkout/internal/core/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Transport logs every collaborator call by method, host and path. Query strings,
// headers and bodies are never logged: they carry bearer tokens and session ids.
type Transport struct {
	next http.RoundTripper
	log  *zap.Logger
}

// NewTransport wraps next. A nil next uses http.DefaultTransport.
func NewTransport(next http.RoundTripper, log *zap.Logger) *Transport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Transport{next: next, log: log}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("host", req.URL.Host),
		zap.String("path", req.URL.Path),
	}

	resp, err := t.next.RoundTrip(req)
	fields = append(fields, zap.Duration("duration", time.Since(start)))

	if err != nil {
		t.log.Warn("Collaborator call failed", append(fields, zap.Error(err))...)
		return nil, err
	}

	fields = append(fields, zap.Int("status", resp.StatusCode))
	if ce := t.log.Check(levelFor(resp.StatusCode), "Collaborator call"); ce != nil {
		ce.Write(fields...)
	}
	return resp, nil
}

// levelFor maps a response status to a log level: 5xx warn, 4xx info, else debug.
func levelFor(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.WarnLevel
	case status >= http.StatusBadRequest:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// NewClient returns an http.Client with a logging Transport.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: NewTransport(http.DefaultTransport, logger.Named("httpclient")),
		Timeout:   timeout,
	}
}
