package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cimillas/bloodbank/internal/domain"
	"github.com/cimillas/bloodbank/internal/storage/sqlite"
)

func TestRequestRepository_RollsBackOnDecrementFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := sqlite.NewRequestRepository(db)

	diskErr := errors.New("disk I/O error")
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM requests WHERE id = \?`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "recipient_id", "requested_at", "blood_type", "volume", "status"}).
			AddRow(int64(7), int64(3), int64(0), "O+", int64(3), "pending"))
	mock.ExpectQuery(`UPDATE blood_stock`).WillReturnError(diskErr)
	mock.ExpectRollback()

	err = repo.WithTx(context.Background(), func(txCtx context.Context) error {
		req, err := repo.GetRequestForUpdate(txCtx, 7)
		if err != nil {
			return err
		}
		_, err = repo.DecrementStock(txCtx, req.BloodType, req.Volume, time.Now())
		return err
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, diskErr)
	assert.Equal(t, domain.KindUnknown, domain.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_CreateRollsBackRecipient(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := sqlite.NewRequestRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO recipients`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectQuery(`INSERT INTO requests`).WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	_, err = repo.CreateRequest(context.Background(),
		domain.Request{Date: time.Now(), BloodType: "A+", Volume: 1, Status: domain.RequestStatusPending},
		domain.Recipient{Name: "Bea", Email: "bea@example.com", Contact: "555", BloodType: "A+"},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create request")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepository_WrapsDriverErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := sqlite.NewStockRepository(db)

	mock.ExpectQuery(`SELECT blood_type, volume, updated_at FROM blood_stock`).
		WillReturnError(errors.New("no such table: blood_stock"))

	_, err = repo.ListStock(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list stock")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDonorRepository_WrapsDriverErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := sqlite.NewDonorRepository(db)

	mock.ExpectQuery(`SELECT .* FROM donors WHERE email = \?`).
		WithArgs("ana@example.com").
		WillReturnError(errors.New("connection reset"))

	_, err = repo.FindDonorByEmail(context.Background(), "ana@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "find donor by email")
	assert.NoError(t, mock.ExpectationsWereMet())
}
