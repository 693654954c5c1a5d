package boat

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/owt-boats/internal/types"
)

var boatRowColumns = []string{"id", "name", "description", "capacity", "size", "type", "created_at", "updated_at"}

func newMockRepository(t *testing.T) (*RepositoryImpl, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return NewRepository(mockPool, discardLogger()), mockPool
}

func TestRepositoryFindAll(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	t.Run("Success", func(t *testing.T) {
		repo, mockPool := newMockRepository(t)
		rows := pgxmock.NewRows(boatRowColumns).
			AddRow(int64(1), "Titanic", strPtr("Large passenger ship"), int32(1000), int32(269), "SAILBOAT", created, updated).
			AddRow(int64(2), "Dinghy", nil, int32(2), int32(3), "OTHER", created, created)
		mockPool.ExpectQuery(regexp.QuoteMeta("FROM boats ORDER BY id")).WillReturnRows(rows)

		boats, err := repo.FindAll(ctx)

		require.NoError(t, err)
		require.Len(t, boats, 2)
		assert.Equal(t, int64(1), boats[0].ID)
		require.NotNil(t, boats[0].Description)
		assert.Equal(t, "Large passenger ship", *boats[0].Description)
		assert.Equal(t, types.BoatTypeSailboat, boats[0].Type)
		assert.True(t, boats[0].UpdatedAt.Equal(updated))
		assert.Nil(t, boats[1].Description)
		assert.Equal(t, types.BoatTypeOther, boats[1].Type)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("Empty", func(t *testing.T) {
		repo, mockPool := newMockRepository(t)
		mockPool.ExpectQuery(regexp.QuoteMeta("FROM boats ORDER BY id")).WillReturnRows(pgxmock.NewRows(boatRowColumns))

		boats, err := repo.FindAll(ctx)

		require.NoError(t, err)
		assert.NotNil(t, boats)
		assert.Empty(t, boats)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("QueryError", func(t *testing.T) {
		repo, mockPool := newMockRepository(t)
		mockPool.ExpectQuery(regexp.QuoteMeta("FROM boats ORDER BY id")).WillReturnError(errors.New("connection reset"))

		boats, err := repo.FindAll(ctx)

		assert.Error(t, err)
		assert.Nil(t, boats)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestRepositoryFindByID(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Found", func(t *testing.T) {
		repo, mockPool := newMockRepository(t)
		rows := pgxmock.NewRows(boatRowColumns).
			AddRow(int64(7), "Ferry", nil, int32(300), int32(80), "FERRY", created, created)
		mockPool.ExpectQuery(regexp.QuoteMeta("FROM boats WHERE id = $1")).WithArgs(int64(7)).WillReturnRows(rows)

		boat, err := repo.FindByID(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, int64(7), boat.ID)
		assert.Equal(t, types.BoatTypeFerry, boat.Type)
		assert.True(t, boat.CreatedAt.Equal(created))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, mockPool := newMockRepository(t)
		mockPool.ExpectQuery(regexp.QuoteMeta("FROM boats WHERE id = $1")).WithArgs(int64(999)).
			WillReturnRows(pgxmock.NewRows(boatRowColumns))

		_, err := repo.FindByID(ctx, 999)

		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("DatabaseError", func(t *testing.T) {
		repo, mockPool := newMockRepository(t)
		mockPool.ExpectQuery(regexp.QuoteMeta("FROM boats WHERE id = $1")).WithArgs(int64(1)).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.FindByID(ctx, 1)

		require.Error(t, err)
		assert.NotErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestRepositorySave(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("InsertAssignsID", func(t *testing.T) {
		repo, mockPool := newMockRepository(t)
		boat := types.NewBoat(titanicInput(), now)
		mockPool.ExpectQuery(regexp.QuoteMeta("INSERT INTO boats")).
			WithArgs("Titanic", boat.Description, int32(1000), int32(269), "SAILBOAT", now, now).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))

		saved, err := repo.Save(ctx, boat)

		require.NoError(t, err)
		assert.Equal(t, int64(1), saved.ID)
		assert.Equal(t, "Titanic", saved.Name)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("InsertError", func(t *testing.T) {
		repo, mockPool := newMockRepository(t)
		mockPool.ExpectQuery(regexp.QuoteMeta("INSERT INTO boats")).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(errors.New("check constraint violated"))

		_, err := repo.Save(ctx, types.NewBoat(titanicInput(), now))

		assert.Error(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("UpdateLeavesCreatedAt", func(t *testing.T) {
		repo, mockPool := newMockRepository(t)
		later := now.Add(time.Minute)
		boat := types.NewBoat(titanicInput(), now)
		boat.ID = 1
		boat.Name = "NewName"
		boat.UpdatedAt = types.NewDisplayDate(later)
		mockPool.ExpectExec(regexp.QuoteMeta("UPDATE boats")).
			WithArgs(int64(1), "NewName", boat.Description, int32(1000), int32(269), "SAILBOAT", later).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		saved, err := repo.Save(ctx, boat)

		require.NoError(t, err)
		assert.Equal(t, "NewName", saved.Name)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("UpdateMissingRow", func(t *testing.T) {
		repo, mockPool := newMockRepository(t)
		boat := types.NewBoat(titanicInput(), now)
		boat.ID = 42
		mockPool.ExpectExec(regexp.QuoteMeta("UPDATE boats")).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		_, err := repo.Save(ctx, boat)

		assert.ErrorIs(t, err, types.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestRepositoryDeleteByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Deleted", func(t *testing.T) {
		repo, mockPool := newMockRepository(t)
		mockPool.ExpectExec(regexp.QuoteMeta("DELETE FROM boats WHERE id = $1")).WithArgs(int64(1)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, repo.DeleteByID(ctx, 1))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("AbsentIsNoop", func(t *testing.T) {
		repo, mockPool := newMockRepository(t)
		mockPool.ExpectExec(regexp.QuoteMeta("DELETE FROM boats WHERE id = $1")).WithArgs(int64(5)).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.NoError(t, repo.DeleteByID(ctx, 5))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("DatabaseError", func(t *testing.T) {
		repo, mockPool := newMockRepository(t)
		mockPool.ExpectExec(regexp.QuoteMeta("DELETE FROM boats WHERE id = $1")).WithArgs(int64(1)).
			WillReturnError(errors.New("connection reset"))

		assert.Error(t, repo.DeleteByID(ctx, 1))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestRepositoryExistsByID(t *testing.T) {
	ctx := context.Background()

	for _, want := range []bool{true, false} {
		repo, mockPool := newMockRepository(t)
		mockPool.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).WithArgs(int64(3)).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(want))

		got, err := repo.ExistsByID(ctx, 3)

		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	}
}
