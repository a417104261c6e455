package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Pablojox/analyze-transactions/config"
	"github.com/Pablojox/analyze-transactions/export"
	"github.com/Pablojox/analyze-transactions/logger"
	"github.com/Pablojox/analyze-transactions/services"
)

var (
	collectSource         string
	collectFixture        string
	collectRegion         string
	collectOutput         string
	collectKeepIDs        bool
	collectChart          bool
	collectWorkers        int
	collectMaxFailureRate float64
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run the collection pipeline and export category spend shares",
	RunE:  runCollect,
}

func init() {
	collectCmd.Flags().StringVar(&collectSource, "source", "", "data source backend: live or file (default from SOURCE)")
	collectCmd.Flags().StringVar(&collectFixture, "fixture", "", "fixture CSV path for the file backend (default from FIXTURE_FILE)")
	collectCmd.Flags().StringVar(&collectRegion, "region", "", "override the configured identity-directory region")
	collectCmd.Flags().StringVarP(&collectOutput, "output", "o", "out/transactions.csv", "CSV output path (empty disables the export)")
	collectCmd.Flags().BoolVar(&collectKeepIDs, "keep-ids", false, "keep the customer_id column in the CSV export")
	collectCmd.Flags().BoolVar(&collectChart, "chart", false, "render a terminal bar chart of category shares")
	collectCmd.Flags().IntVar(&collectWorkers, "workers", 1, "concurrent customer fetches (1 = sequential)")
	collectCmd.Flags().Float64Var(&collectMaxFailureRate, "max-failure-rate", 1.0, "exit non-zero when the upstream failure rate exceeds this fraction")
}

func runCollect(cmd *cobra.Command, args []string) error {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if collectSource != "" {
		cfg.Source = collectSource
	}
	if collectFixture != "" {
		cfg.FixtureFile = collectFixture
	}
	if collectRegion != "" {
		log.Info().Str("region", collectRegion).Msg("using provided region")
		cfg.Region = collectRegion
	}
	// Setup problems abort here, before any network activity.
	if err := cfg.Validate(); err != nil {
		return err
	}

	runLog := log.With().Str("run_id", uuid.NewString()).Logger()
	ctx := logger.WithContext(cmd.Context(), runLog)

	var directory services.CustomerDirectory
	var source services.TransactionSource
	switch cfg.Source {
	case config.SourceFile:
		fixture, err := services.NewFixtureSource(cfg.FixtureFile)
		if err != nil {
			return err
		}
		directory, source = fixture, fixture
	default:
		directory = services.NewCognitoDirectory(cfg)
		source = services.NewSaltEdgeService(cfg)
	}

	collector := services.NewCollector(directory, source, collectWorkers)
	set, stats, err := collector.CollectAll(ctx)
	if err != nil {
		return err
	}
	runLog.Info().
		Int("customers", stats.Customers).
		Int("transactions", stats.Transactions).
		Int("failed_calls", stats.Failures).
		Msg("collection finished")

	matrix := services.CalculatePercentages(set)

	if collectOutput != "" {
		if err := export.WriteCSV(collectOutput, matrix, collectKeepIDs); err != nil {
			return err
		}
		runLog.Info().Str("path", collectOutput).Msg("transaction percentages saved")
	}
	if collectChart {
		export.RenderChart(os.Stdout, matrix)
	}

	if rate := stats.FailureRate(); rate > collectMaxFailureRate {
		return fmt.Errorf("upstream failure rate %.2f exceeds limit %.2f", rate, collectMaxFailureRate)
	}
	return nil
}
