package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ownerCols() []string {
	return []string{"id", "phone_number", "display_name", "active", "created_at"}
}

func TestOwnerRepo_GetByPhone(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOwnerRepo(mock)

	mock.ExpectQuery("SELECT (.+) FROM owners WHERE phone_number").
		WithArgs("0708091011").
		WillReturnRows(pgxmock.NewRows(ownerCols()).
			AddRow(int64(1), "0708091011", "Awa", true, time.Now().UTC()))

	got, err := repo.GetByPhone(context.Background(), "0708091011")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "Awa", got.DisplayName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOwnerRepo_GetByPhone_Unknown(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOwnerRepo(mock)

	mock.ExpectQuery("SELECT (.+) FROM owners WHERE phone_number").
		WithArgs("0000000000").
		WillReturnRows(pgxmock.NewRows(ownerCols()))

	got, err := repo.GetByPhone(context.Background(), "0000000000")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOwnerRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOwnerRepo(mock)

	mock.ExpectQuery("SELECT (.+) FROM owners WHERE id").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(ownerCols()).
			AddRow(int64(1), "0708091011", "Awa", true, time.Now().UTC()))

	got, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "0708091011", got.PhoneNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}
