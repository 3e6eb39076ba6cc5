package app

import (
	"os"
	"strconv"
)

// TestModeEnv makes the binaries return from main before touching the network.
const TestModeEnv = "BACKOFFICE_TEST_MODE"

// InTestMode reports whether TestModeEnv is set to a true value.
func InTestMode() bool {
	raw, ok := os.LookupEnv(TestModeEnv)
	if !ok {
		return false
	}
	on, err := strconv.ParseBool(raw)
	return err == nil && on
}
