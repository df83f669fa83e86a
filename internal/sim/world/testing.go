package world

import (
	"log"
	"os"
	"testing"
)

// NewForTest returns a world whose fatal hook fails the calling test
// instead of terminating the process.
func NewForTest(tb testing.TB) *World {
	w := New(log.New(os.Stderr, "[world] ", 0))
	w.fatalf = func(format string, args ...any) {
		tb.Helper()
		tb.Fatalf(format, args...)
	}
	return w
}
