// Where: internal/app/error_helpers.go
// What: Shared error-exit helper for CLI commands.
// Why: Keep failure output and exit codes uniform across handlers.
package app

import (
	"fmt"
	"io"
)

func exitWithError(out io.Writer, err error) int {
	fmt.Fprintln(out, err)
	return 1
}
