package cmd

import (
	"fmt"

	"github.com/cwbudde/go-calku/pkg/calku"
	"github.com/spf13/cobra"
)

var propertiesCmd = &cobra.Command{
	Use:   "properties <expr>",
	Short: "List the distinct property paths an expression references",
	Long: `Print the distinct property-reference paths observed in an expression,
one per line, in order of first appearance. Exercises Expression.Properties.

Example:
  calku properties '{name} & " " & {address.city}'`,
	Args: cobra.ExactArgs(1),
	RunE: runProperties,
}

func init() {
	rootCmd.AddCommand(propertiesCmd)
}

func runProperties(cmd *cobra.Command, args []string) error {
	expr := calku.New(args[0])
	paths, err := expr.Properties()
	if err != nil {
		exitWithError("%s", err)
		return nil
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}
