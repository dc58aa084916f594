package testutil

import (
	"context"
	"testing"

	logging "github.com/KonishchevDmitry/go-easy-logging"
	"go.uber.org/zap/zaptest"
)

func Context(t *testing.T) context.Context {
	return logging.WithLogger(t.Context(), zaptest.NewLogger(t).Sugar())
}
