package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/secretbroker/internal/errors"
)

func TestConnect(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown driver", func(t *testing.T) {
		db, err := Connect(ctx, Config{Driver: "invalid", ConnectionString: "invalid"})
		assert.Nil(t, db)
		assert.ErrorContains(t, err, "sql: unknown driver")
	})

	t.Run("ping succeeds", func(t *testing.T) {
		mockDB, mock, err := sqlmock.NewWithDSN("connect-ok", sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer func() { _ = mockDB.Close() }()
		mock.ExpectPing()

		db, err := Connect(ctx, Config{
			Driver:             "sqlmock",
			ConnectionString:   "connect-ok",
			MaxOpenConnections: 4,
			MaxIdleConnections: 2,
			ConnMaxLifetime:    time.Minute,
		})
		require.NoError(t, err)
		assert.Equal(t, 4, db.Stats().MaxOpenConnections)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ping fails", func(t *testing.T) {
		mockDB, mock, err := sqlmock.NewWithDSN("connect-down", sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer func() { _ = mockDB.Close() }()
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		db, err := Connect(ctx, Config{Driver: "sqlmock", ConnectionString: "connect-down"})
		assert.Nil(t, db)
		assert.ErrorIs(t, err, apperrors.ErrUnavailable)
		assert.ErrorContains(t, err, "connection refused")
	})
}
