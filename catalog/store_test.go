package catalog

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vireolabs/beacon/auth"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db, zap.NewNop().Sugar()), mock
}

func TestClassifyPartitionsByTier(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "tier"}).
		AddRow("DS1", "PUBLIC").
		AddRow("DS2", "REGISTERED").
		AddRow("DS3", "CONTROLLED").
		AddRow("DS4", "PUBLIC")
	mock.ExpectQuery("SELECT id, tier FROM datasets WHERE id IN").
		WithArgs("DS1", "DS2", "DS3", "DS4").
		WillReturnRows(rows)

	public, registered, controlled, err := store.Classify(context.Background(), []string{"DS1", "DS2", "DS3", "DS4"})
	require.NoError(t, err)
	assert.Equal(t, []string{"DS1", "DS4"}, public)
	assert.Equal(t, []string{"DS2"}, registered)
	assert.Equal(t, []string{"DS3"}, controlled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassifyDropsUnknownIDs(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "tier"}).
		AddRow("DS1", "PUBLIC")
	mock.ExpectQuery("SELECT id, tier FROM datasets WHERE id IN").
		WithArgs("DS1", "NOPE").
		WillReturnRows(rows)

	public, registered, controlled, err := store.Classify(context.Background(), []string{"DS1", "NOPE"})
	require.NoError(t, err)
	assert.Equal(t, []string{"DS1"}, public)
	assert.Empty(t, registered)
	assert.Empty(t, controlled)
}

func TestClassifyEmptyRequestTargetsWholeCatalogue(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "tier", "description"}).
		AddRow("DS1", "PUBLIC", "open data").
		AddRow("DS2", "CONTROLLED", "restricted cohort")
	mock.ExpectQuery("SELECT id, tier, description FROM datasets ORDER BY id").
		WillReturnRows(rows)

	public, registered, controlled, err := store.Classify(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"DS1"}, public)
	assert.Empty(t, registered)
	assert.Equal(t, []string{"DS2"}, controlled)
}

func TestClassifyRejectsInvalidTier(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "tier"}).
		AddRow("DS1", "SECRET")
	mock.ExpectQuery("SELECT id, tier FROM datasets WHERE id IN").
		WithArgs("DS1").
		WillReturnRows(rows)

	_, _, _, err := store.Classify(context.Background(), []string{"DS1"})
	assert.ErrorContains(t, err, "invalid tier")
}

func TestListDatasets(t *testing.T) {
	store, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "tier", "description"}).
		AddRow("DS1", "PUBLIC", "open data").
		AddRow("DS2", "REGISTERED", "registered cohort")
	mock.ExpectQuery("SELECT id, tier, description FROM datasets ORDER BY id").
		WillReturnRows(rows)

	datasets, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, datasets, 2)
	assert.Equal(t, auth.TierPublic, datasets[0].Tier)
	assert.Equal(t, "registered cohort", datasets[1].Description)
}

func TestUpsertDataset(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO datasets").
		WithArgs("DS9", "CONTROLLED", "new cohort").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.Upsert(context.Background(), Dataset{
		ID:          "DS9",
		Tier:        auth.TierControlled,
		Description: "new cohort",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
