package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/kasamthapa/krisi/internal/domain/shared"
	"github.com/kasamthapa/krisi/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDatabase creates a GORM DB over a mocked postgres connection
func newMockDatabase(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func productRows(id uuid.UUID, qty, version int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "owner_id", "name", "price_per_unit", "quantity", "unit", "category", "status",
		"version", "created_at", "updated_at",
	}).AddRow(id, uuid.New(), "Tomatoes", "2.50", qty, "WEIGHT", "VEGETABLES", "APPROVED",
		version, now, now)
}

func TestNewDatabase(t *testing.T) {
	t.Run("opens sqlite in memory and migrates", func(t *testing.T) {
		db, err := NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite}, zap.NewNop(), Options{LogLevel: "silent"})
		require.NoError(t, err)
		defer db.Close()

		require.NoError(t, db.Migrate())
		assert.NoError(t, db.Ping(context.Background()))
		assert.Equal(t, config.DriverSQLite, db.Driver())

		for _, table := range []string{"products", "orders", "payments", "escrow_ledger_entries", "notifications"} {
			assert.True(t, db.DB.Migrator().HasTable(table), table)
		}
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		_, err := NewDatabase(&config.DatabaseConfig{Driver: "oracle"}, nil, Options{})
		assert.ErrorContains(t, err, "unsupported database driver")
	})
}

func TestGormProductRepository_ReserveStock_SQL(t *testing.T) {
	t.Run("reserves with a conditional update", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(db)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "products" SET .*quantity - \$\d.* WHERE \(?id = \$\d+ AND status = \$\d+ AND quantity >= \$\d+\)?`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).
			WillReturnRows(productRows(id, 70, 2))
		mock.ExpectCommit()

		p, err := repo.ReserveStock(context.Background(), id, 30)
		require.NoError(t, err)
		assert.Equal(t, 70, p.Quantity)
		assert.Equal(t, 2, p.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports insufficient stock when no row matched", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(db)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).
			WillReturnRows(productRows(id, 2, 5))
		mock.ExpectRollback()

		_, err := repo.ReserveStock(context.Background(), id, 3)
		assert.True(t, shared.IsCode(err, shared.CodeInsufficientStock))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_SaveWithLock_SQL(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormProductRepository(db)

	p := newApprovedProduct(t, 10)
	p.Version = 4

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "products" SET .* WHERE \(?id = \$\d+ AND version = \$\d+\)?`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "products" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.SaveWithLock(context.Background(), p)
	assert.True(t, shared.IsCode(err, shared.CodeConcurrencyConflict))
	assert.Equal(t, 4, p.Version, "version is untouched on conflict")
	assert.NoError(t, mock.ExpectationsWereMet())
}
