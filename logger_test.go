package g3d

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func restoreLogger(t *testing.T) {
	t.Helper()
	orig := Logger()
	origHooks := loggerHooks.Load()
	t.Cleanup(func() {
		loggerHooks.Store(origHooks)
		SetLogger(orig)
	})
}

func TestLoggerSilent(t *testing.T) {
	restoreLogger(t)

	tests := []struct {
		name   string
		logger func() *slog.Logger
	}{
		{"default", Logger},
		{"nil restores", func() *slog.Logger {
			SetLogger(slog.Default())
			SetLogger(nil)
			return Logger()
		}},
		{"with attrs", func() *slog.Logger { return newNopLogger().With("drawable", "cube") }},
		{"with group", func() *slog.Logger { return newNopLogger().WithGroup("gpu") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := tt.logger()
			if l == nil {
				t.Fatal("logger is nil")
			}
			if l.Enabled(context.Background(), slog.LevelError) {
				t.Error("logger enabled at Error, want silent")
			}
			if err := l.Handler().Handle(context.Background(), slog.Record{}); err != nil {
				t.Errorf("Handle() = %v", err)
			}
		})
	}
}

func TestSetLoggerPropagatesToHooks(t *testing.T) {
	restoreLogger(t)

	var got *slog.Logger
	RegisterLoggerHook(func(l *slog.Logger) { got = l })
	if got != Logger() {
		t.Fatal("hook did not receive the current logger on registration")
	}

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	SetLogger(custom)
	if got != custom {
		t.Error("SetLogger did not reach the hook")
	}

	SetLogger(nil)
	if got == nil || got.Enabled(context.Background(), slog.LevelError) {
		t.Error("hook did not receive a silent logger after SetLogger(nil)")
	}
}

func TestSetLoggerCapturesFrameWarnings(t *testing.T) {
	restoreLogger(t)

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	var journal []string
	loop := newReadyLoop(t, newFakePlatform(&journal))
	loop.Registry().MustAdd(&recordingDrawable{name: "bad", journal: &journal, err: errors.New("boom")})
	if err := loop.Refresh(); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"drawable render failed", "error=boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLoggerConcurrentAccess(t *testing.T) {
	restoreLogger(t)

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			Logger().Debug("concurrent read")
		}()
		go func() {
			defer wg.Done()
			SetLogger(slog.Default())
			SetLogger(nil)
		}()
	}
	wg.Wait()
}
