package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Pablojox/analyze-transactions/handlers"
	"github.com/Pablojox/analyze-transactions/logger"
	"github.com/Pablojox/analyze-transactions/middleware"
	"github.com/Pablojox/analyze-transactions/routes"
	"github.com/Pablojox/analyze-transactions/services"
)

var (
	sandboxAddr      string
	sandboxFixture   string
	sandboxPageSize  int
	sandboxRateLimit int
)

var sandboxCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Serve emulated identity-directory and aggregation APIs from fixture data",
	Long: `sandbox exposes the Cognito ListUsers operation and the Salt Edge
partners v1 resources on localhost, backed by a fixture CSV, so collect
can run end to end without live credentials.`,
	RunE: runSandbox,
}

func init() {
	sandboxCmd.Flags().StringVar(&sandboxAddr, "addr", ":8080", "listen address")
	sandboxCmd.Flags().StringVar(&sandboxFixture, "fixture", "./data/transactions.csv", "fixture CSV backing the emulated APIs")
	sandboxCmd.Flags().IntVar(&sandboxPageSize, "page-size", 25, "rows per page served by the paginated endpoints")
	sandboxCmd.Flags().IntVar(&sandboxRateLimit, "rate-limit", 0, "requests per client per minute (0 = unlimited)")
}

func runSandbox(cmd *cobra.Command, args []string) error {
	log := logger.New()

	fixture, err := services.NewFixtureSource(sandboxFixture)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if sandboxRateLimit > 0 {
		router.Use(middleware.RateLimiter(sandboxRateLimit, time.Minute))
	}
	routes.SetupSandboxRoutes(router, handlers.NewSandboxHandler(fixture, sandboxPageSize))

	log.Info().
		Str("addr", sandboxAddr).
		Str("fixture", sandboxFixture).
		Int("customers", len(fixture.Customers())).
		Msg("sandbox listening")
	return router.Run(sandboxAddr)
}
