package cmd

import (
	"fmt"
	"strings"

	"github.com/cwbudde/go-calku/internal/lexer"
	"github.com/cwbudde/go-calku/internal/operators"
	"github.com/cwbudde/go-calku/internal/token"
	"github.com/cwbudde/go-calku/pkg/calku"
	"github.com/spf13/cobra"
)

var lexCmd = &cobra.Command{
	Use:   "lex <expr>",
	Short: "Tokenize a CalKu expression",
	Long: `Tokenize (lex) a CalKu expression and print the resulting token tree.

This command is useful for debugging the lexer and understanding how
an expression is tokenized.

Example:
  calku lex "SUM(a, b) > 10"`,
	Args: cobra.ExactArgs(1),
	RunE: runLex,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().StringVar(&tz, "tz", "UTC", "IANA time zone for offset-free date lexemes")
}

func runLex(cmd *cobra.Command, args []string) error {
	opts := lexer.Options{
		OperatorMatcher: operators.NewSymbolMatcher(),
		Zone:            tz,
		ResolveZone:     calku.ResolveZone,
	}
	tree, err := lexer.Lex(args[0], opts)
	if err != nil {
		exitWithError("%s", err)
		return nil
	}
	dumpTree(tree, 0)
	return nil
}

func dumpTree(tree []token.Token, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, t := range tree {
		switch tt := t.(type) {
		case *token.Literal:
			fmt.Printf("%sliteral %s(%s) @%d-%d\n", indent, tt.Value.Type(), tt.Value.String(), tt.Start(), tt.End())
		case *token.PropertyRef:
			fmt.Printf("%sproperty %q @%d-%d\n", indent, tt.Path, tt.Start(), tt.End())
		case *token.Operator:
			fmt.Printf("%soperator %s @%d-%d\n", indent, tt.Key, tt.Start(), tt.End())
		case *token.Comment:
			fmt.Printf("%scomment %q @%d-%d\n", indent, tt.Text, tt.Start(), tt.End())
		case *token.Group:
			fmt.Printf("%sgroup @%d-%d\n", indent, tt.Start(), tt.End())
			dumpTree(tt.Children, depth+1)
		case *token.Func:
			fmt.Printf("%sfunc %s(%d args) @%d-%d\n", indent, tt.Name, len(tt.Args), tt.Start(), tt.End())
			for i, a := range tt.Args {
				fmt.Printf("%s  arg %d:\n", indent, i)
				dumpTree(a, depth+2)
			}
		default:
			fmt.Printf("%s%T @%d-%d\n", indent, t, t.Start(), t.End())
		}
	}
}
