// # cmd/semresolve/main.go
package main

import (
	"os"

	"semresolve/internal/cliapp"
)

func main() {
	os.Exit(cliapp.Run(os.Args[1:]))
}
