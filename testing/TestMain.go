// Package testing switches binaries into test mode when imported by a test.
package testing

import (
	"os"
	stdtesting "testing"

	"github.com/odyssey-erp/backoffice/internal/app"
)

func init() {
	_ = os.Setenv(app.TestModeEnv, "1")
}

// TestMain can be delegated to from a package TestMain.
func TestMain(m *stdtesting.M) {
	_ = os.Setenv(app.TestModeEnv, "1")
	os.Exit(m.Run())
}
