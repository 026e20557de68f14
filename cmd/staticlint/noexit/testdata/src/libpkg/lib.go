package libpkg

import (
	"fmt"
	"os"
)

func Check(ok bool) error {
	if !ok {
		os.Exit(1) // want "os.Exit in package libpkg"
	}
	return fmt.Errorf("unreachable in tests")
}
