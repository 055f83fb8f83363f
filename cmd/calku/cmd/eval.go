package cmd

import (
	"fmt"

	"github.com/cwbudde/go-calku/pkg/calku"
	"github.com/spf13/cobra"
)

var (
	targetFile string
	tz         string
)

var evalCmd = &cobra.Command{
	Use:   "eval <expr>",
	Short: "Evaluate a CalKu expression",
	Long: `Evaluate a CalKu expression against an optional JSON target document
and print the typed result.

Examples:
  # Evaluate a literal expression
  calku eval "1 + 2 * 3"

  # Evaluate against a JSON document
  calku eval '{name} & " is " & {age}' --target person.json

  # Evaluate an offset-free date literal in a specific zone
  calku eval "2024-03-15T10:30:00" --tz America/Chicago`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVar(&targetFile, "target", "", "JSON document to evaluate the expression against")
	evalCmd.Flags().StringVar(&tz, "tz", "UTC", "IANA time zone for offset-free date lexemes")
}

func runEval(cmd *cobra.Command, args []string) error {
	target, err := loadTarget(targetFile, tz)
	if err != nil {
		return fmt.Errorf("failed to load target: %w", err)
	}

	expr := calku.New(args[0], calku.WithTimeZone(tz))
	result := expr.Value(target)

	fmt.Printf("%s: %s\n", result.Type(), result.String())
	return nil
}
