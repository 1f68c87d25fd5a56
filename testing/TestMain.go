// Package testing puts every test binary that imports it into test mode and
// defaults the store to memory, so nothing reaches for Postgres or redis.
package testing

import (
	"os"
	stdtesting "testing"
)

func init() {
	setDefault("BOOKS_TEST_MODE", "1")
	setDefault("STORE_DRIVER", "memory")
}

func setDefault(key, value string) {
	if os.Getenv(key) == "" {
		_ = os.Setenv(key, value)
	}
}

// TestMain can be called from a package TestMain to run its tests.
func TestMain(m *stdtesting.M) {
	os.Exit(m.Run())
}
