package xlog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xflake/pkg/observability/xlog"
)

// testCleanup 在测试结束时执行 cleanup
func testCleanup(t *testing.T, cleanup func() error) {
	t.Helper()
	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})
}

// =============================================================================
// Builder 测试
// =============================================================================

func TestBuilder_BasicLogging(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().
		SetOutput(&buf).
		SetLevel(xlog.LevelDebug).
		Build()
	require.NoError(t, err)
	testCleanup(t, cleanup)

	ctx := context.Background()
	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	out := buf.String()
	for _, want := range []string{"debug message", "info message", "warn message", "error message"} {
		assert.Contains(t, out, want)
	}
}

func TestBuilder_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().
		SetOutput(&buf).
		SetLevelString("warn").
		Build()
	require.NoError(t, err)
	testCleanup(t, cleanup)

	ctx := context.Background()
	logger.Info(ctx, "hidden")
	logger.Warn(ctx, "shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	logger.SetLevel(xlog.LevelDebug)
	assert.Equal(t, xlog.LevelDebug, logger.GetLevel())
	assert.True(t, logger.Enabled(ctx, xlog.LevelDebug))
	logger.Debug(ctx, "now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestBuilder_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().
		SetOutput(&buf).
		SetFormat(" JSON ").
		Build()
	require.NoError(t, err)
	testCleanup(t, cleanup)

	logger.Info(context.Background(), "generated",
		xlog.ID(856165981072306191),
		xlog.Component("xflake"),
		xlog.Err(errors.New("boom")),
	)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "generated", rec["msg"])
	assert.Equal(t, "856165981072306191", rec[xlog.KeyID])
	assert.Equal(t, "xflake", rec[xlog.KeyComponent])
	assert.Equal(t, "boom", rec[xlog.KeyError])
}

func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name    string
		builder *xlog.Builder
		wantMsg string
	}{
		{"unknown level", xlog.New().SetLevelString("verbose"), "valid: debug, info, warn, error"},
		{"unknown format", xlog.New().SetFormat("xml"), "unknown format"},
		{"nil output", xlog.New().SetOutput(nil), "nil output"},
		{"empty rotation", xlog.New().SetRotation("  "), "empty rotation filename"},
		{"first error wins", xlog.New().SetFormat("xml").SetLevelString("verbose"), "unknown format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.builder.Build()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestBuilder_Rotation(t *testing.T) {
	file := filepath.Join(t.TempDir(), "xflake.log")
	logger, cleanup, err := xlog.New().
		SetRotation(file, xlog.WithMaxSizeMB(1), xlog.WithMaxBackups(1), xlog.WithMaxAgeDays(1), xlog.WithCompress(false)).
		Build()
	require.NoError(t, err)

	logger.Info(context.Background(), "rotated write")
	require.NoError(t, cleanup())
	// cleanup 幂等
	require.NoError(t, cleanup())

	assert.FileExists(t, file)
}

func TestBuilder_ReplaceAttr(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().
		SetOutput(&buf).
		SetReplaceAttr(func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == "secret" {
				return slog.String(a.Key, "***")
			}
			return a
		}).
		Build()
	require.NoError(t, err)
	testCleanup(t, cleanup)

	logger.Info(context.Background(), "masked", slog.String("secret", "token"))
	assert.Contains(t, buf.String(), "secret=***")
	assert.NotContains(t, buf.String(), "token")
}

func TestBuilder_AddSource(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().SetOutput(&buf).SetAddSource(true).Build()
	require.NoError(t, err)
	testCleanup(t, cleanup)

	logger.Info(context.Background(), "with source")
	assert.Contains(t, buf.String(), "xlog_test.go")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestBuilder_OnError(t *testing.T) {
	var got error
	logger, cleanup, err := xlog.New().
		SetOutput(failingWriter{}).
		SetOnError(func(err error) { got = err }).
		Build()
	require.NoError(t, err)
	testCleanup(t, cleanup)

	logger.Info(context.Background(), "lost")
	require.Error(t, got)
	assert.Contains(t, got.Error(), "disk full")
}

// =============================================================================
// 派生 Logger 测试
// =============================================================================

func TestLogger_WithAndGroup(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().SetOutput(&buf).Build()
	require.NoError(t, err)
	testCleanup(t, cleanup)

	assert.Same(t, logger, logger.With())
	assert.Same(t, logger, logger.WithGroup(""))

	child := logger.With(slog.Int64("instance", 7)).WithGroup("gen")
	child.Info(context.Background(), "child", slog.Int("seq", 1))

	out := buf.String()
	assert.Contains(t, out, "instance=7")
	assert.Contains(t, out, "gen.seq=1")

	// 派生 logger 共享级别
	logger.SetLevel(xlog.LevelError)
	buf.Reset()
	child.Info(context.Background(), "suppressed")
	assert.Empty(t, buf.String())
}

func TestLogger_NilContext(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().SetOutput(&buf).Build()
	require.NoError(t, err)
	testCleanup(t, cleanup)

	assert.NotPanics(t, func() {
		logger.Info(nil, "nil ctx") //nolint:staticcheck // 验证 nil ctx 容错
	})
	assert.Contains(t, buf.String(), "nil ctx")
}

func TestDiscard(t *testing.T) {
	l := xlog.Discard()
	ctx := context.Background()
	assert.False(t, l.Enabled(ctx, xlog.LevelError))
	assert.NotPanics(t, func() {
		l.Error(ctx, "dropped", xlog.Duration(time.Millisecond))
		l.With(slog.String("k", "v")).Warn(ctx, "dropped")
	})
}

// =============================================================================
// Level 测试
// =============================================================================

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    xlog.Level
		wantErr bool
	}{
		{"debug", xlog.LevelDebug, false},
		{" INFO ", xlog.LevelInfo, false},
		{"warning", xlog.LevelWarn, false},
		{"Warn", xlog.LevelWarn, false},
		{"error", xlog.LevelError, false},
		{"trace", xlog.LevelInfo, true},
		{"", xlog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := xlog.ParseLevel(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, xlog.ErrUnknownLevel)
				assert.Contains(t, err.Error(), "debug, info, warn, error")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelNames(t *testing.T) {
	names := xlog.LevelNames()
	assert.Equal(t, []string{"debug", "info", "warn", "error"}, names)

	// 名称与 ParseLevel/String 互逆
	for _, name := range names {
		l, err := xlog.ParseLevel(name)
		require.NoError(t, err)
		assert.Equal(t, name, l.String())
	}

	// 返回副本
	names[0] = "mutated"
	assert.Equal(t, "debug", xlog.LevelNames()[0])

	assert.Equal(t, "INFO+2", xlog.Level(2).String())
}

// =============================================================================
// 全局 Logger 测试
// =============================================================================

func TestGlobal(t *testing.T) {
	t.Cleanup(xlog.ResetDefault)

	xlog.ResetDefault()
	assert.NotNil(t, xlog.Default())

	var buf bytes.Buffer
	logger, cleanup, err := xlog.New().SetOutput(&buf).SetLevel(xlog.LevelDebug).Build()
	require.NoError(t, err)
	testCleanup(t, cleanup)

	xlog.SetDefault(logger)
	xlog.SetDefault(nil) // 忽略
	assert.Same(t, logger, xlog.Default())

	ctx := context.Background()
	xlog.Debug(ctx, "g-debug")
	xlog.Info(ctx, "g-info")
	xlog.Warn(ctx, "g-warn")
	xlog.Error(ctx, "g-error")

	out := buf.String()
	for _, want := range []string{"g-debug", "g-info", "g-warn", "g-error"} {
		assert.True(t, strings.Contains(out, want), "missing %q", want)
	}
}
