package cmd_test

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/nodable-lang/nodable/cmd/nodablec/cmd"
)

// TestMain lets the test binary re-exec itself as nodablec, the pattern
// testscript.Run needs to invoke the real command tree without building
// a separate binary.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"nodablec": cmd.Main,
	}))
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
	})
}
