// Where: cmd/qtp-diversity/main.go
// What: CLI entrypoint.
// Why: Execute plugin commands with configured dependencies.
package main

import (
	"os"

	"github.com/qiita-spots/qtp-diversity/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:], buildDependencies()))
}
