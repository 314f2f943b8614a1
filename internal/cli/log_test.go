package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{
			name:    "info passes at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Info("pass complete") },
			wantLog: true,
		},
		{
			name:    "debug filtered at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Debug("pass complete") },
			wantLog: false,
		},
		{
			name:    "debug passes at debug level",
			level:   log.DebugLevel,
			logFunc: func(l *log.Logger) { l.Debug("pass complete") },
			wantLog: true,
		},
		{
			name:    "warn passes at info level",
			level:   log.InfoLevel,
			logFunc: func(l *log.Logger) { l.Warn("rejected") },
			wantLog: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))

			if gotLog := buf.Len() > 0; gotLog != tt.wantLog {
				t.Errorf("got log output = %v, want %v", gotLog, tt.wantLog)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	track := newProgress(logger)
	time.Sleep(5 * time.Millisecond)
	track.done("Paginated 3 blocks into 1 pages")

	out := buf.String()
	if !strings.Contains(out, "Paginated 3 blocks") {
		t.Errorf("done() output %q should contain the message", out)
	}
	if !strings.Contains(out, "ms)") && !strings.Contains(out, "s)") {
		t.Errorf("done() output %q should report elapsed time", out)
	}
}

func TestLoggerRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.InfoLevel)

	ctx := withLogger(context.Background(), logger)
	if got := loggerFromContext(ctx); got != logger {
		t.Error("loggerFromContext should return the logger attached with withLogger")
	}
}

func TestLoggerFromContextFallback(t *testing.T) {
	if got := loggerFromContext(context.Background()); got == nil {
		t.Error("loggerFromContext should fall back to a usable default logger")
	}
}
