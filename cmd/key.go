package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/stepcheck/internal/canon"
	"github.com/abhisek/stepcheck/internal/expr"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Print the canonical key of a step",
	RunE: func(cmd *cobra.Command, args []string) error {
		priorArg, _ := cmd.Flags().GetString("prior")
		nextArg, _ := cmd.Flags().GetString("next")
		structural, _ := cmd.Flags().GetBool("structural")

		b := expr.NewBuilder()
		prior, next, err := readPair(priorArg, nextArg, cmd.InOrStdin(), b)
		if err != nil {
			return err
		}

		key := canon.Key(prior, next)
		if structural {
			key = canon.StructuralKey(prior, next)
		}
		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

func init() {
	keyCmd.Flags().String("prior", "", "Prior tree (JSON, file path, or -)")
	keyCmd.Flags().String("next", "", "Next tree (JSON, file path, or -)")
	keyCmd.Flags().Bool("structural", false, "Omit node ids")
	_ = keyCmd.MarkFlagRequired("prior")
	_ = keyCmd.MarkFlagRequired("next")
}
