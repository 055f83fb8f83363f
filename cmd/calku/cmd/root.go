// Package cmd holds the calku CLI's cobra commands: one file per
// subcommand, with root.go carrying persistent flags and a version
// template.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "calku",
	Short: "CalKu expression evaluator",
	Long: `calku is a Go implementation of the CalKu expression language.

CalKu evaluates small property-and-function expressions against an
optional JSON target document:
  - operators and builtin functions over null/boolean/number/string/
    date/array/object values
  - dotted/colon property paths into the target document
  - errors returned as values rather than raised`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
