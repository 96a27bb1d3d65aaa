// sandbox runs a single untrusted program under CPU, memory, stack,
// output, open-file and thread ceilings and reports a structured verdict.
//
// It is invoked either as the normal CLI (parsing the flags in cmd/root.go
// and running the supervisor), or, when re-exec'd by the supervisor with
// a hidden argument, as the forked child's initializer.
package main

import (
	"fmt"
	"os"

	"sandbox-go/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
