// file: repository/token_repository_test.go

package repository

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func newTokenRepo(t *testing.T) (*TokenRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, dbMock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("could not create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewTokenRepository(db), dbMock
}

func TestTokenRepository_Upsert(t *testing.T) {
	repo, dbMock := newTokenRepo(t)
	expiresAt := time.Now().Add(24 * time.Hour)

	dbMock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens (user_id, token, expires_at)")).
		WithArgs(1, "signed-token", expiresAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Upsert(1, "signed-token", expiresAt)

	assert.NoError(t, err)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestTokenRepository_UpsertOverwritesOnConflict(t *testing.T) {
	repo, dbMock := newTokenRepo(t)
	expiresAt := time.Now().Add(24 * time.Hour)

	// The conflict clause turns the second write for the same user into an
	// update; one row is affected either way.
	dbMock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (user_id) DO UPDATE")).
		WithArgs(1, "rotated-token", expiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(1, "rotated-token", expiresAt)

	assert.NoError(t, err)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestTokenRepository_FindValid(t *testing.T) {
	t.Run("returns the matching unexpired record", func(t *testing.T) {
		repo, dbMock := newTokenRepo(t)
		expiresAt := time.Now().Add(time.Hour)
		createdAt := time.Now().Add(-time.Hour)

		rows := sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "created_at"}).
			AddRow(7, 1, "signed-token", expiresAt, createdAt)
		dbMock.ExpectQuery(regexp.QuoteMeta("expires_at > now()")).
			WithArgs(1, "signed-token").
			WillReturnRows(rows)

		record, err := repo.FindValid("signed-token", 1)

		assert.NoError(t, err)
		assert.Equal(t, 1, record.UserID)
		assert.Equal(t, "signed-token", record.Token)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("mismatch or expiry yields ErrNoRows", func(t *testing.T) {
		repo, dbMock := newTokenRepo(t)

		dbMock.ExpectQuery(regexp.QuoteMeta("expires_at > now()")).
			WithArgs(1, "stale-token").
			WillReturnError(sql.ErrNoRows)

		record, err := repo.FindValid("stale-token", 1)

		assert.Nil(t, record)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestTokenRepository_GetByUserIDForUpdate(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("could not create sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewTokenRepository(db)

	expiresAt := time.Now().Add(time.Hour)
	dbMock.ExpectBegin()
	rows := sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "created_at"}).
		AddRow(7, 1, "signed-token", expiresAt, time.Now())
	dbMock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(1).
		WillReturnRows(rows)
	dbMock.ExpectCommit()

	tx, err := db.Begin()
	assert.NoError(t, err)

	record, err := repo.GetByUserIDForUpdate(tx, 1)
	assert.NoError(t, err)
	assert.Equal(t, "signed-token", record.Token)

	assert.NoError(t, tx.Commit())
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestTokenRepository_DeleteByUserID(t *testing.T) {
	t.Run("deletes the user's record", func(t *testing.T) {
		repo, dbMock := newTokenRepo(t)

		dbMock.ExpectExec(regexp.QuoteMeta("DELETE FROM refresh_tokens WHERE user_id = $1")).
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.DeleteByUserID(1))
	})

	t.Run("zero affected rows is not an error", func(t *testing.T) {
		repo, dbMock := newTokenRepo(t)

		dbMock.ExpectExec(regexp.QuoteMeta("DELETE FROM refresh_tokens WHERE user_id = $1")).
			WithArgs(1).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.DeleteByUserID(1))
	})
}

func TestTokenRepository_DeleteExpired(t *testing.T) {
	repo, dbMock := newTokenRepo(t)

	dbMock.ExpectExec(regexp.QuoteMeta("DELETE FROM refresh_tokens WHERE expires_at <= now()")).
		WillReturnResult(sqlmock.NewResult(0, 5))

	purged, err := repo.DeleteExpired()

	assert.NoError(t, err)
	assert.Equal(t, int64(5), purged)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
