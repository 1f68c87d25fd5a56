package app

import (
	"os"
	"sync/atomic"
)

// TestModeEnv makes both binaries return before opening any connection.
const TestModeEnv = "BOOKS_TEST_MODE"

var testMode atomic.Pointer[bool]

// InTestMode reports whether BOOKS_TEST_MODE=1. The value is read once and
// cached until RefreshTestMode.
func InTestMode() bool {
	if v := testMode.Load(); v != nil {
		return *v
	}
	return RefreshTestMode()
}

// RefreshTestMode re-reads the environment and returns the new value.
func RefreshTestMode() bool {
	on := os.Getenv(TestModeEnv) == "1"
	testMode.Store(&on)
	return on
}
