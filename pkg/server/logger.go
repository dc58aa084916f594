package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type httpLogger struct {
	logger *zap.SugaredLogger
}

func newHTTPLogger(logger *zap.SugaredLogger) *httpLogger {
	return &httpLogger{logger}
}

var _ io.Writer = &httpLogger{}

func (l *httpLogger) Write(message []byte) (int, error) {
	size := len(message)
	l.logger.Errorf("%s.", strings.TrimRight(string(message), "\n"))
	return size, nil
}

type prometheusLogger struct {
	logger *zap.SugaredLogger
}

func newPrometheusLogger(logger *zap.SugaredLogger) *prometheusLogger {
	return &prometheusLogger{logger}
}

var _ promhttp.Logger = prometheusLogger{}

func (l prometheusLogger) Println(v ...any) {
	level := zapcore.ErrorLevel

	for _, value := range v {
		if err, ok := value.(error); ok {
			if isDisconnectError(err) {
				level = zap.DebugLevel
			}
			break
		}
	}

	l.logger.Logf(level, "Prometheus: %s.", strings.TrimRight(fmt.Sprintf("%v", v), "\n"))
}

// Reports whether the error is caused by a client which has gone away, so it's not worth logging as an error.
func isDisconnectError(err error) bool {
	var netErr *net.OpError
	if errors.As(err, &netErr) && netErr.Op == "write" && (netErr.Timeout() || errors.Is(netErr.Err, syscall.EPIPE)) {
		return true
	}

	return errors.Is(err, context.Canceled) || errors.Is(err, net.ErrClosed) || errors.Is(err, syscall.ECONNRESET) ||
		websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived)
}

func logLevel(err error) zapcore.Level {
	if isDisconnectError(err) {
		return zap.DebugLevel
	}
	return zap.WarnLevel
}
