package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (f CommandFactory) createRiskCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "risk <mc-number>",
		Short: "Run a FraudGuard risk assessment for a carrier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zap.NewNop()
			if verbose {
				var err error
				if logger, err = zap.NewDevelopment(); err != nil {
					return err
				}
			}

			assessment, err := f.NewRiskAssessor(f.LoadConfig(), logger).Assess(cmd.Context(), args[0])
			if err != nil {
				printError(cmd, err)
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(assessment)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log upstream lookups to stderr")
	return cmd
}
