// Command calku is the CalKu expression language's command line front end.
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-calku/cmd/calku/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
