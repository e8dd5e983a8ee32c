// Package logging provides the package-level logging functions used by the
// interpreter and its drivers. It writes through github.com/jcgregorio/logger.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/jcgregorio/logger"
)

var (
	mu  sync.Mutex
	std = newLogger(os.Stderr, false)
)

// SyncWriter is a writer that can be flushed, such as os.Stderr.
type SyncWriter = logger.SyncWriter

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
func (discard) Sync() error                 { return nil }

// Discard is a SyncWriter that drops everything written to it.
var Discard SyncWriter = discard{}

func newLogger(w SyncWriter, debug bool) *logger.Logger {
	return logger.NewFromOptions(&logger.Options{
		SyncWriter:   w,
		DepthDelta:   2,
		IncludeDebug: debug,
	})
}

// SetOutput redirects all logging to w. Debug messages are only emitted when
// debug is true.
func SetOutput(w SyncWriter, debug bool) {
	mu.Lock()
	defer mu.Unlock()
	std = newLogger(w, debug)
}

// syncWriter adapts a plain io.Writer.
type syncWriter struct{ io.Writer }

func (syncWriter) Sync() error { return nil }

// AsSyncWriter adapts w so it can be passed to SetOutput.
func AsSyncWriter(w io.Writer) SyncWriter {
	if sw, ok := w.(SyncWriter); ok {
		return sw
	}
	return syncWriter{w}
}

func current() *logger.Logger {
	mu.Lock()
	defer mu.Unlock()
	return std
}

func Debugf(format string, v ...interface{}) {
	current().Debugf(format, v...)
}

func Infof(format string, v ...interface{}) {
	current().Infof(format, v...)
}

func Warningf(format string, v ...interface{}) {
	current().Warningf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	current().Errorf(format, v...)
}
