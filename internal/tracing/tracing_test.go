package tracing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracingFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "spans.txt")
	require.NoError(t, Init("deadsched", "0.0.1", fname))

	ctx, span := StartSpan(context.Background(), "detect")
	span.WithAttributes(map[string]string{"scenario": "builtin-1"}).WithInt("deadlocked", 3)
	_, child := StartSpan(ctx, "resolve")
	EndSpan(child, errors.New("exhausted"))
	EndSpan(span, nil)
	require.NoError(t, Shutdown(context.Background()))

	data, err := os.ReadFile(fname)
	require.NoError(t, err)
	assert.Contains(t, string(data), "detect")
	assert.Contains(t, string(data), "resolve")
	assert.Contains(t, string(data), "exhausted")
}

func TestNilSpanIsSafe(t *testing.T) {
	var sp *Span
	assert.Nil(t, sp.WithAttributes(map[string]string{"k": "v"}))
	sp.SetStatus(nil)
	EndSpan(sp, nil)
}
