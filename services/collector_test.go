package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pablojox/analyze-transactions/models"
)

type stubDirectory struct {
	ids []string
	err error
}

func (d *stubDirectory) ListCustomerIDs(ctx context.Context) ([]string, error) {
	return d.ids, d.err
}

type stubSource struct {
	connections  func(customerID string) ([]string, error)
	accounts     func(connectionID string) ([]string, error)
	transactions func(connectionID string, accountIDs []string) (models.TransactionSet, int)
}

func (s *stubSource) GetActiveConnections(ctx context.Context, customerID string) ([]string, error) {
	return s.connections(customerID)
}

func (s *stubSource) GetEligibleAccounts(ctx context.Context, connectionID string) ([]string, error) {
	return s.accounts(connectionID)
}

func (s *stubSource) FetchTransactions(ctx context.Context, connectionID string, accountIDs []string) (models.TransactionSet, int) {
	return s.transactions(connectionID, accountIDs)
}

func rowsFor(accountIDs []string, category string, perAccount int) (models.TransactionSet, int) {
	var set models.TransactionSet
	for _, accountID := range accountIDs {
		for i := 0; i < perAccount; i++ {
			set = append(set, models.Transaction{
				ID:        fmt.Sprintf("%s-%d", accountID, i),
				AccountID: accountID,
				Category:  category,
			})
		}
	}
	return set, 0
}

func TestCollectAll_TagsEveryRowWithItsCustomer(t *testing.T) {
	source := &stubSource{
		connections: func(customerID string) ([]string, error) {
			return []string{"conn-" + customerID}, nil
		},
		accounts: func(connectionID string) ([]string, error) {
			return []string{"acc-" + connectionID}, nil
		},
		transactions: func(connectionID string, accountIDs []string) (models.TransactionSet, int) {
			// Upstream rows arrive without (or with a stale) customer id.
			set, _ := rowsFor(accountIDs, "groceries", 2)
			set[0].CustomerID = "someone-else"
			return set, 0
		},
	}
	collector := NewCollector(&stubDirectory{ids: []string{"C1", "C2"}}, source, 1)

	set, stats, err := collector.CollectAll(context.Background())
	require.NoError(t, err)

	require.Len(t, set, 4)
	assert.Equal(t, "C1", set[0].CustomerID)
	assert.Equal(t, "C1", set[1].CustomerID)
	assert.Equal(t, "C2", set[2].CustomerID)
	assert.Equal(t, 2, stats.Customers)
	assert.Equal(t, 4, stats.Transactions)
	assert.Zero(t, stats.Failures)
}

func TestCollectAll_OneCustomerFailingDoesNotAbortOthers(t *testing.T) {
	source := &stubSource{
		connections: func(customerID string) ([]string, error) {
			if customerID == "C1" {
				return nil, errors.New("status 500: boom")
			}
			return []string{"conn-" + customerID}, nil
		},
		accounts: func(connectionID string) ([]string, error) {
			return []string{"acc-" + connectionID}, nil
		},
		transactions: func(connectionID string, accountIDs []string) (models.TransactionSet, int) {
			return rowsFor(accountIDs, "rent", 3)
		},
	}
	collector := NewCollector(&stubDirectory{ids: []string{"C1", "C2"}}, source, 1)

	set, stats, err := collector.CollectAll(context.Background())
	require.NoError(t, err)

	require.Len(t, set, 3)
	for _, tx := range set {
		assert.Equal(t, "C2", tx.CustomerID)
	}
	assert.Equal(t, 1, stats.Failures)
}

func TestCollectAll_EmptyConnectionIsolatedFromSibling(t *testing.T) {
	source := &stubSource{
		connections: func(customerID string) ([]string, error) {
			return []string{"conn-a", "conn-b"}, nil
		},
		accounts: func(connectionID string) ([]string, error) {
			if connectionID == "conn-a" {
				return nil, nil
			}
			return []string{"acc-b1", "acc-b2"}, nil
		},
		transactions: func(connectionID string, accountIDs []string) (models.TransactionSet, int) {
			return rowsFor(accountIDs, "travel", 5)
		},
	}
	collector := NewCollector(&stubDirectory{ids: []string{"C1"}}, source, 1)

	set, stats, err := collector.CollectAll(context.Background())
	require.NoError(t, err)

	// The customer's total is exactly what conn-b's accounts produced.
	assert.Len(t, set, 10)
	assert.Equal(t, 10, stats.Transactions)
	assert.Zero(t, stats.Failures)
}

func TestCollectAll_ZeroActiveConnectionsIsNormal(t *testing.T) {
	source := &stubSource{
		connections: func(customerID string) ([]string, error) { return nil, nil },
		accounts: func(connectionID string) ([]string, error) {
			t.Error("accounts must not be fetched without a connection")
			return nil, nil
		},
		transactions: func(connectionID string, accountIDs []string) (models.TransactionSet, int) {
			return nil, 0
		},
	}
	collector := NewCollector(&stubDirectory{ids: []string{"C2"}}, source, 1)

	set, stats, err := collector.CollectAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, set)
	assert.Zero(t, stats.Failures)
}

func TestCollectAll_DirectoryFailureIsFatal(t *testing.T) {
	collector := NewCollector(&stubDirectory{err: errors.New("pool missing")}, &stubSource{}, 1)

	_, _, err := collector.CollectAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pool missing")
}

func TestCollectAll_ConcurrentMatchesSequential(t *testing.T) {
	ids := make([]string, 20)
	for i := range ids {
		ids[i] = fmt.Sprintf("C%02d", i)
	}
	source := &stubSource{
		connections: func(customerID string) ([]string, error) {
			return []string{"conn-" + customerID}, nil
		},
		accounts: func(connectionID string) ([]string, error) {
			return []string{"acc-" + connectionID}, nil
		},
		transactions: func(connectionID string, accountIDs []string) (models.TransactionSet, int) {
			return rowsFor(accountIDs, "groceries", 3)
		},
	}

	sequentialSet, seqStats, err := NewCollector(&stubDirectory{ids: ids}, source, 1).CollectAll(context.Background())
	require.NoError(t, err)
	concurrentSet, concStats, err := NewCollector(&stubDirectory{ids: ids}, source, 8).CollectAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, seqStats, concStats)
	// Interleaving may reorder the accumulator; the aggregate is identical.
	sortSet := func(set models.TransactionSet) {
		sort.Slice(set, func(i, j int) bool { return set[i].CustomerID+set[i].ID < set[j].CustomerID+set[j].ID })
	}
	sortSet(sequentialSet)
	sortSet(concurrentSet)
	assert.Equal(t, sequentialSet, concurrentSet)
	assert.Equal(t, CalculatePercentages(sequentialSet), CalculatePercentages(concurrentSet))
}

func TestCollectStats_FailureRate(t *testing.T) {
	assert.Zero(t, CollectStats{}.FailureRate())
	assert.InDelta(t, 0.25, CollectStats{Calls: 8, Failures: 2}.FailureRate(), 1e-9)
}
