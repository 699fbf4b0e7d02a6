package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContextReturnsAttachedLogger(t *testing.T) {
	var buf bytes.Buffer
	attached := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := WithLogger(context.Background(), attached)
	got := FromContext(ctx)
	assert.Same(t, attached, got)

	got.Info("through context")
	assert.Contains(t, buf.String(), "through context")
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	got := FromContext(context.Background())
	assert.NotNil(t, got)
	assert.Same(t, slog.Default(), got)
}

func TestFromContextOrDefault(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	t.Run("prefers context logger", func(t *testing.T) {
		attached := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
		ctx := WithLogger(context.Background(), attached)
		assert.Same(t, attached, FromContextOrDefault(ctx, fallback))
	})

	t.Run("uses fallback when context has none", func(t *testing.T) {
		assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))
	})

	t.Run("nil fallback yields process default", func(t *testing.T) {
		assert.Same(t, slog.Default(), FromContextOrDefault(context.Background(), nil))
	})
}
