package contextutil

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))

	ctx := WithRequestID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", RequestID(ctx))
}

func TestLogger(t *testing.T) {
	fallback := logrus.New()
	assert.Same(t, fallback, Logger(context.Background(), fallback))

	stored := logrus.New()
	stored.SetOutput(io.Discard)
	entry := stored.WithField("request_id", "abc-123")
	ctx := WithLogger(context.Background(), entry)
	assert.Same(t, entry, Logger(ctx, fallback))
}
