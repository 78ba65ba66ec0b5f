// file: repository/token_repository.go

package repository

import (
	"database/sql"
	"time"

	"backups-api/logger"
	"backups-api/model"

	"github.com/sirupsen/logrus"
)

// ITokenRepository defines the contract for refresh record database operations.
type ITokenRepository interface {
	Upsert(userID int, token string, expiresAt time.Time) error
	UpsertTx(tx *sql.Tx, record *model.RefreshToken) error
	GetByUserIDForUpdate(tx *sql.Tx, userID int) (*model.RefreshToken, error)
	GetByUserID(userID int) (*model.RefreshToken, error)
	FindValid(token string, userID int) (*model.RefreshToken, error)
	DeleteByUserID(userID int) error
	DeleteExpired() (int64, error)
}

// TokenRepository implements ITokenRepository over the refresh_tokens table.
type TokenRepository struct {
	DB *sql.DB
}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

const upsertQuery = `INSERT INTO refresh_tokens (user_id, token, expires_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (user_id) DO UPDATE SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at`

// Upsert writes the single refresh record for a user in one statement.
// The ON CONFLICT clause is what keeps concurrent writers from producing
// a second row for the same user; the last write wins.
func (r *TokenRepository) Upsert(userID int, token string, expiresAt time.Time) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    userID,
		"expires_at": expiresAt,
	})
	log.Info("Executing query to upsert refresh record")

	_, err := r.DB.Exec(upsertQuery, userID, token, expiresAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute upsert refresh record query")
		return err
	}
	return nil
}

// UpsertTx is Upsert inside a caller-owned transaction; the login path uses
// it so the policy check and the write commit or roll back together.
func (r *TokenRepository) UpsertTx(tx *sql.Tx, record *model.RefreshToken) error {
	_, err := tx.Exec(upsertQuery, record.UserID, record.Token, record.ExpiresAt)
	if err != nil {
		logger.Log.WithField("user_id", record.UserID).WithError(err).Error("Failed to execute upsert refresh record query in transaction")
		return err
	}
	return nil
}

// GetByUserIDForUpdate reads a user's refresh record with a row lock so the
// login policy decision and the subsequent write are serialized.
func (r *TokenRepository) GetByUserIDForUpdate(tx *sql.Tx, userID int) (*model.RefreshToken, error) {
	record := &model.RefreshToken{}
	query := `SELECT id, user_id, token, expires_at, created_at FROM refresh_tokens WHERE user_id = $1 FOR UPDATE`
	err := tx.QueryRow(query, userID).Scan(&record.ID, &record.UserID, &record.Token, &record.ExpiresAt, &record.CreatedAt)
	if err != nil {
		return nil, err // sql.ErrNoRows when the user has no record
	}
	return record, nil
}

// GetByUserID retrieves a user's refresh record regardless of expiry.
func (r *TokenRepository) GetByUserID(userID int) (*model.RefreshToken, error) {
	record := &model.RefreshToken{}
	query := `SELECT id, user_id, token, expires_at, created_at FROM refresh_tokens WHERE user_id = $1`
	err := r.DB.QueryRow(query, userID).Scan(&record.ID, &record.UserID, &record.Token, &record.ExpiresAt, &record.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithField("user_id", userID).WithError(err).Error("Failed to execute get refresh record query")
		}
		return nil, err
	}
	return record, nil
}

// FindValid returns the record only when the presented value matches the
// stored one for that user AND the absolute expiry has not passed. Any
// mismatch returns sql.ErrNoRows; value equality is what makes a
// stolen-but-already-rotated token unusable.
func (r *TokenRepository) FindValid(token string, userID int) (*model.RefreshToken, error) {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to find valid refresh record")

	record := &model.RefreshToken{}
	query := `SELECT id, user_id, token, expires_at, created_at FROM refresh_tokens
		WHERE user_id = $1 AND token = $2 AND expires_at > now()`
	err := r.DB.QueryRow(query, userID, token).Scan(&record.ID, &record.UserID, &record.Token, &record.ExpiresAt, &record.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			log.WithError(err).Error("Failed to execute find valid refresh record query")
		}
		return nil, err
	}
	return record, nil
}

// DeleteByUserID deletes the refresh record for a user. Zero affected rows
// is success: logout must be idempotent.
func (r *TokenRepository) DeleteByUserID(userID int) error {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to delete refresh record")

	query := `DELETE FROM refresh_tokens WHERE user_id = $1`
	_, err := r.DB.Exec(query, userID)
	if err != nil {
		log.WithError(err).Error("Failed to execute delete refresh record query")
		return err
	}
	return nil
}

// DeleteExpired purges records past their absolute expiry. Expired rows are
// already rejected lazily on rotation; this keeps them from accumulating.
func (r *TokenRepository) DeleteExpired() (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE expires_at <= now()`
	res, err := r.DB.Exec(query)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute delete expired refresh records query")
		return 0, err
	}
	return res.RowsAffected()
}
