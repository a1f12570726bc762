package cache

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/costoracle/internal/model"
)

// newMockPostgresCache creates a PostgresCache backed by pgxmock for unit testing.
func newMockPostgresCache(t *testing.T) (*PostgresCache, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresFromPool(mock), mock
}

func TestPostgresCache_Get_Miss(t *testing.T) {
	c, mock := newMockPostgresCache(t)

	mock.ExpectQuery(`SELECT estimate FROM cost_estimates WHERE key = \$1`).
		WithArgs("saffron::XX").
		WillReturnRows(pgxmock.NewRows([]string{"estimate"}))

	_, ok, err := c.Get(context.Background(), "saffron::XX")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCache_Get_Hit(t *testing.T) {
	c, mock := newMockPostgresCache(t)

	stored := &model.CostEstimate{
		CostInUSD:      0.52,
		WeightUnit:     "kg",
		Justification:  "commodity index price",
		DerivationType: model.DerivationDirectLocal,
	}
	raw, err := json.Marshal(stored)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT estimate FROM cost_estimates WHERE key = \$1`).
		WithArgs("wheat flour::AU").
		WillReturnRows(pgxmock.NewRows([]string{"estimate"}).AddRow(raw))

	got, ok, err := c.Get(context.Background(), "wheat flour::AU")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0.52, got.CostInUSD)
	assert.Equal(t, "kg", got.WeightUnit)
	assert.Equal(t, model.DerivationDirectLocal, got.DerivationType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCache_Put_Upsert(t *testing.T) {
	c, mock := newMockPostgresCache(t)

	mock.ExpectExec(`ON CONFLICT`).
		WithArgs("rice::TH", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := c.Put(context.Background(), "rice::TH", &model.CostEstimate{
		CostInUSD:  0.80,
		WeightUnit: "kg",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCache_Get_QueryError(t *testing.T) {
	c, mock := newMockPostgresCache(t)

	mock.ExpectQuery(`SELECT estimate FROM cost_estimates`).
		WithArgs("broken::XX").
		WillReturnError(assert.AnError)

	_, _, err := c.Get(context.Background(), "broken::XX")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres get")
	assert.NoError(t, mock.ExpectationsWereMet())
}
