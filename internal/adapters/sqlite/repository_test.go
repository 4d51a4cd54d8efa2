package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoLedger/internal/domain"
	"cryptoLedger/internal/ports"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) *Repository {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	repo, err := NewRepository(Config{
		DBPath: dbPath,
		Logger: &mockLogger{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return repo
}

func trade(id string) domain.Transaction {
	return domain.Transaction{
		Date:           "03/15/2021 14:05:00",
		Exchange:       domain.ExchangeNDAX,
		Received:       domain.NewAmount(decimal.RequireFromString("0.01"), domain.BTC),
		Sent:           domain.NewAmount(decimal.RequireFromString("500.00"), domain.FiatCAD),
		Fee:            domain.NewAmount(decimal.RequireFromString("0.00002"), domain.BTC),
		CostBasis:      decimal.NewNullDecimal(decimal.RequireFromString("50100.2")),
		CostBasisUnits: "CAD/BTC",
		TxID:           id,
	}
}

func deposit(id string) domain.Transaction {
	return domain.Transaction{
		Date:     "03/14/2021 09:00:00",
		Exchange: domain.ExchangeCoinsquare,
		Received: domain.NewAmount(decimal.RequireFromString("1000"), domain.FiatCAD),
		TxID:     id,
	}
}

func TestNewRepository(t *testing.T) {
	t.Run("requires logger", func(t *testing.T) {
		_, err := NewRepository(Config{DBPath: ":memory:"})
		assert.Error(t, err)
	})

	t.Run("in-memory database", func(t *testing.T) {
		repo, err := NewRepository(Config{DBPath: ":memory:", Logger: &mockLogger{}})
		require.NoError(t, err)
		defer repo.Close()

		entries, err := repo.LoadAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("reopen keeps entries", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "ledger.db")
		repo, err := NewRepository(Config{DBPath: dbPath, Logger: &mockLogger{}})
		require.NoError(t, err)
		_, err = repo.Append(context.Background(), "run-1", []domain.Transaction{deposit("D1")})
		require.NoError(t, err)
		require.NoError(t, repo.Close())

		repo, err = NewRepository(Config{DBPath: dbPath, Logger: &mockLogger{}})
		require.NoError(t, err)
		defer repo.Close()
		entries, err := repo.LoadAll(context.Background())
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "D1", entries[0].TxID)
	})
}

func TestRepository_AppendAndLoadAll(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	n, err := repo.Append(ctx, "run-1", []domain.Transaction{trade("T1"), deposit("D1")})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.Append(ctx, "run-2", []domain.Transaction{deposit("")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	entries, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	first := entries[0]
	assert.Equal(t, int64(1), first.Position)
	assert.Equal(t, "run-1", first.ImportID)
	assert.Equal(t, "T1", first.TxID)
	assert.Equal(t, domain.ExchangeNDAX, first.Exchange)
	assert.Equal(t, "03/15/2021 14:05:00", first.Date)
	require.NotNil(t, first.Received)
	assert.True(t, decimal.RequireFromString("0.01").Equal(first.Received.Qty))
	assert.Equal(t, domain.BTC, first.Received.Currency)
	require.NotNil(t, first.Sent)
	assert.Equal(t, domain.FiatCAD, first.Sent.Currency)
	require.NotNil(t, first.Fee)
	assert.True(t, decimal.RequireFromString("0.00002").Equal(first.Fee.Qty))
	require.True(t, first.CostBasis.Valid)
	assert.True(t, decimal.RequireFromString("50100.2").Equal(first.CostBasis.Decimal))
	assert.Equal(t, "CAD/BTC", first.CostBasisUnits)

	second := entries[1]
	assert.Equal(t, "D1", second.TxID)
	assert.Nil(t, second.Sent)
	assert.Nil(t, second.Fee)
	assert.False(t, second.CostBasis.Valid)

	third := entries[2]
	assert.Equal(t, "run-2", third.ImportID)
	assert.Empty(t, third.TxID)
	assert.Greater(t, third.Position, second.Position)
}

func TestRepository_AppendDuplicate(t *testing.T) {
	tests := []struct {
		name      string
		existing  []domain.Transaction
		batch     []domain.Transaction
		wantN     int
		wantErr   error
		wantTotal int
	}{
		{
			name:      "identifier already stored",
			existing:  []domain.Transaction{trade("T1")},
			batch:     []domain.Transaction{deposit("D1"), trade("T1"), deposit("D2")},
			wantN:     1,
			wantErr:   ports.ErrDuplicateEntry,
			wantTotal: 2,
		},
		{
			name:      "empty identifiers never collide",
			existing:  []domain.Transaction{deposit("")},
			batch:     []domain.Transaction{deposit(""), deposit("")},
			wantN:     2,
			wantTotal: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := setupTestDB(t)
			ctx := context.Background()
			_, err := repo.Append(ctx, "seed", tt.existing)
			require.NoError(t, err)

			n, err := repo.Append(ctx, "run", tt.batch)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantN, n)

			entries, err := repo.LoadAll(ctx)
			require.NoError(t, err)
			assert.Len(t, entries, tt.wantTotal)
		})
	}
}

func TestRepository_AppendCancelledContext(t *testing.T) {
	repo := setupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Append(ctx, "run", []domain.Transaction{deposit("D1")})
	assert.ErrorIs(t, err, ports.ErrLedgerIO)
}

func TestRepository_ImportRuns(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"run-a", "run-b", "run-c"} {
		run := &domain.ImportRun{
			ID:         id,
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
			Reports:    2,
			Skipped:    1,
			Submitted:  10 + i,
			Appended:   7,
			Duplicates: 3 + i,
		}
		require.NoError(t, repo.RecordImport(ctx, run))
	}

	err := repo.RecordImport(ctx, &domain.ImportRun{ID: "run-a", StartedAt: base, FinishedAt: base})
	assert.ErrorIs(t, err, ports.ErrDuplicateEntry)

	runs, err := repo.FindImports(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-c", runs[0].ID)
	assert.Equal(t, "run-b", runs[1].ID)
	assert.Equal(t, 12, runs[0].Submitted)
	assert.Equal(t, 5, runs[0].Duplicates)
	assert.True(t, runs[0].StartedAt.Equal(base.Add(2*time.Hour)))
}
