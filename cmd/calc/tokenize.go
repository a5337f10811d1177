package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lemonberrylabs/calc/pkg/expr"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize EXPRESSION...",
	Short: "Print the tokens of an expression",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		line := strings.ToLower(strings.Join(args, " "))
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "POS\tTYPE\tVALUE")
		for _, tok := range expr.Tokenize(line) {
			fmt.Fprintf(w, "%d\t%s\t%s\n", tok.Pos, tok.Type, tok.Value)
		}
		return w.Flush()
	},
}
