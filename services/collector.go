package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/Pablojox/analyze-transactions/logger"
	"github.com/Pablojox/analyze-transactions/models"
)

// CustomerDirectory enumerates the customer universe for one run.
type CustomerDirectory interface {
	ListCustomerIDs(ctx context.Context) ([]string, error)
}

// TransactionSource resolves one customer's transactions in three stages:
// connections, eligible accounts, paginated transaction pages. Implemented
// by SaltEdgeService (live) and FixtureSource (local file).
type TransactionSource interface {
	GetActiveConnections(ctx context.Context, customerID string) ([]string, error)
	GetEligibleAccounts(ctx context.Context, connectionID string) ([]string, error)
	FetchTransactions(ctx context.Context, connectionID string, accountIDs []string) (models.TransactionSet, int)
}

// CollectStats counts upstream calls so a run can surface how much of the
// customer universe it actually covered.
type CollectStats struct {
	Customers    int
	Transactions int
	Calls        int
	Failures     int
}

func (s CollectStats) FailureRate() float64 {
	if s.Calls == 0 {
		return 0
	}
	return float64(s.Failures) / float64(s.Calls)
}

func (s *CollectStats) add(other CollectStats) {
	s.Transactions += other.Transactions
	s.Calls += other.Calls
	s.Failures += other.Failures
}

// Collector composes directory and source into the run-wide transaction
// set. Customers are independent: one customer's failures never abort the
// others, they only show up in the stats and the log.
type Collector struct {
	Directory CustomerDirectory
	Source    TransactionSource
	Workers   int
}

func NewCollector(directory CustomerDirectory, source TransactionSource, workers int) *Collector {
	if workers < 1 {
		workers = 1
	}
	return &Collector{Directory: directory, Source: source, Workers: workers}
}

// CollectAll resolves every customer and accumulates their transactions,
// each row tagged with its owning customer id. Only a directory listing
// failure is fatal; everything downstream is contained per customer. With
// Workers > 1 customers are fetched concurrently; the accumulator is the
// one shared resource and is guarded by a mutex.
func (c *Collector) CollectAll(ctx context.Context) (models.TransactionSet, CollectStats, error) {
	customerIDs, err := c.Directory.ListCustomerIDs(ctx)
	if err != nil {
		return nil, CollectStats{}, fmt.Errorf("listing customer ids: %w", err)
	}

	var (
		mu    sync.Mutex
		all   models.TransactionSet
		stats CollectStats
		wg    sync.WaitGroup
	)
	stats.Customers = len(customerIDs)

	sem := make(chan struct{}, c.Workers)
	for _, customerID := range customerIDs {
		wg.Add(1)
		sem <- struct{}{}
		go func(customerID string) {
			defer wg.Done()
			defer func() { <-sem }()

			set, st := c.collectCustomer(ctx, customerID)

			mu.Lock()
			all = append(all, set...)
			stats.add(st)
			mu.Unlock()
		}(customerID)
	}
	wg.Wait()

	return all, stats, nil
}

func (c *Collector) collectCustomer(ctx context.Context, customerID string) (models.TransactionSet, CollectStats) {
	log := logger.FromContext(ctx).With().Str("customer_id", customerID).Logger()
	ctx = logger.WithContext(ctx, log)

	var st CollectStats

	st.Calls++
	connections, err := c.Source.GetActiveConnections(ctx, customerID)
	if err != nil {
		st.Failures++
		log.Error().Err(err).Msg("fetching connections failed")
	}
	if len(connections) == 0 {
		log.Info().Msg("no active connections")
		return nil, st
	}

	var set models.TransactionSet
	for _, connectionID := range connections {
		st.Calls++
		accountIDs, err := c.Source.GetEligibleAccounts(ctx, connectionID)
		if err != nil {
			st.Failures++
			log.Error().Err(err).Str("connection_id", connectionID).Msg("fetching accounts failed")
			continue
		}

		st.Calls += len(accountIDs)
		transactions, failed := c.Source.FetchTransactions(ctx, connectionID, accountIDs)
		st.Failures += failed
		set = append(set, transactions...)
	}

	// Tag every row with its owner before it reaches the shared set; the
	// aggregation keys on this field.
	for i := range set {
		set[i].CustomerID = customerID
	}
	st.Transactions = len(set)

	if len(set) > 0 {
		log.Info().Int("transactions", len(set)).Msg("customer collected")
	}
	return set, st
}
