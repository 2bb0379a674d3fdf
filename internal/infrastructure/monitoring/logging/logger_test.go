package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	apperrors "github.com/turtacn/funcgroup/pkg/errors"
)

func newObservedLogger(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerFromCore(core), logs
}

func TestNewLogger_JSONFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelInfo, Format: "json", OutputPaths: []string{"stdout"}})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelDebug, Format: "console", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_EmptyOutputPaths(t *testing.T) {
	l, err := NewLogger(LogConfig{OutputPaths: []string{}})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestNewLogger_NilOutputPathsDefaultsToStdout(t *testing.T) {
	l, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewDefaultLogger_NotNil(t *testing.T) {
	assert.NotNil(t, NewDefaultLogger())
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, logs := newObservedLogger(zapcore.WarnLevel)
	l.Debug("d")
	l.Info("i")
	l.Warn("w")
	l.Error("e")
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "w", logs.All()[0].Message)
	assert.Equal(t, "e", logs.All()[1].Message)
}

func TestLogger_FieldTypes(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)
	l.Info("analysed",
		Refcode("mol-1"),
		SMILES("CCO"),
		Int("atoms", 3),
		Int64("bytes", 64),
		Float64("ratio", 0.5),
		Bool("amino_acid", false),
		Duration("elapsed", 2*time.Millisecond),
		Any("groups", []string{"Alcohol"}),
	)
	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "mol-1", ctx[KeyRefcode])
	assert.Equal(t, "CCO", ctx[KeySMILES])
	assert.EqualValues(t, 3, ctx["atoms"])
	assert.EqualValues(t, 64, ctx["bytes"])
	assert.Equal(t, 0.5, ctx["ratio"])
	assert.Equal(t, false, ctx["amino_acid"])
	assert.Equal(t, 2*time.Millisecond, ctx["elapsed"])
}

func TestLogger_With(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)
	child := l.With(String(KeyRunID, "run-1"))
	child.Info("one")
	l.Info("two")
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "run-1", logs.All()[0].ContextMap()[KeyRunID])
	_, ok := logs.All()[1].ContextMap()[KeyRunID]
	assert.False(t, ok)
}

func TestLogger_WithError_AppError(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)
	err := apperrors.New(apperrors.CodeRingClosure, "unclosed ring 1")
	l.WithError(err).Warn("molecule skipped")
	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "SMI_002", ctx[KeyErrorCode])
	assert.Contains(t, ctx["error"], "unclosed ring 1")
}

func TestLogger_WithError_PlainError(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)
	l.WithError(errors.New("boom")).Error("failed")
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "boom", ctx["error"])
	_, ok := ctx[KeyErrorCode]
	assert.False(t, ok)
}

func TestLogger_WithError_Nil(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)
	assert.Same(t, l, l.WithError(nil))
	l.Info("ok")
	assert.Equal(t, 1, logs.Len())
}

func TestLogger_Named(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)
	l.Named("ifg").Named("batch").Info("start")
	assert.Equal(t, "ifg.batch", logs.All()[0].LoggerName)
}

func TestErr_Nil(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	assert.NotPanics(t, func() {
		l.Debug("x")
		l.Info("x")
		l.Warn("x")
		l.Error("x")
		l.With(String("k", "v")).Named("n").WithError(errors.New("e")).Info("x")
	})
	assert.NoError(t, l.Sync())
}

func TestDefault(t *testing.T) {
	prev := Default()
	t.Cleanup(func() { SetDefault(prev) })

	l, logs := newObservedLogger(zapcore.DebugLevel)
	SetDefault(l)
	SetDefault(nil)
	Default().Info("via default")
	assert.Equal(t, 1, logs.Len())
}

func TestLogger_SetLevel(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelWarn, Format: "json", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	child := l.Named("child").With(String("k", "v"))

	core := func(x Logger) zapcore.Core { return x.(*zapLogger).z.Core() }
	assert.False(t, core(child).Enabled(zapcore.InfoLevel))

	setter, ok := l.(LevelSetter)
	require.True(t, ok)
	setter.SetLevel(LevelDebug)
	assert.True(t, core(l).Enabled(zapcore.DebugLevel))
	assert.True(t, core(child).Enabled(zapcore.DebugLevel), "children share the level")

	observed, _ := newObservedLogger(zapcore.InfoLevel)
	assert.NotPanics(t, func() { observed.(LevelSetter).SetLevel(LevelDebug) })
}
