package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fleetflow/internal/brokersnapshot"
	"fleetflow/internal/config"
	"fleetflow/internal/domain"
	"fleetflow/internal/fmcsa"
	"fleetflow/internal/service"
)

// RiskAssessor scores a carrier by MC number.
type RiskAssessor interface {
	Assess(ctx context.Context, mcNumber string) (*domain.RiskAssessment, error)
}

// CommandFactory builds fleetctl commands. Tests swap the constructors.
type CommandFactory struct {
	LoadConfig      func() *config.Config
	NewRiskAssessor func(cfg *config.Config, logger *zap.Logger) RiskAssessor
}

var defaultCommandFactory = CommandFactory{
	LoadConfig:      config.Load,
	NewRiskAssessor: newRiskAssessor,
}

// Execute runs fleetctl and exits non-zero on failure.
func Execute() {
	if err := defaultCommandFactory.CreateRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// CreateRootCommand returns the fleetctl root command with all subcommands.
func (f CommandFactory) CreateRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "fleetctl",
		Short:         "Quote freight and warehousing and screen carriers from the command line",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	quote := &cobra.Command{
		Use:   "quote",
		Short: "Generate freight or warehouse quotes",
	}
	quote.AddCommand(f.createFreightCommand(), f.createWarehouseCommand())

	carrier := &cobra.Command{
		Use:   "carrier",
		Short: "Carrier verification",
	}
	carrier.AddCommand(f.createRiskCommand())

	root.AddCommand(quote, carrier)
	return root
}

// newRiskAssessor wires FraudGuard without Redis, Kafka or RabbitMQ.
func newRiskAssessor(cfg *config.Config, logger *zap.Logger) RiskAssessor {
	fmcsaClient := fmcsa.NewClient(cfg.FMCSA, nil, nil, logger)
	carriers := service.NewCarrierService(fmcsaClient, brokersnapshot.NewClient(cfg.BrokerSnapshot), logger)
	return service.NewFraudGuardService(carriers, nil, nil, logger)
}

func printError(cmd *cobra.Command, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "... %v\n", err)
}
