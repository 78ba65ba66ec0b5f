package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"backups-api/logger"
	"backups-api/model"
	"backups-api/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionActive      = errors.New("an active session already exists for this user")
	ErrTokenInvalid       = errors.New("refresh token is invalid")
	ErrSessionNotFound    = errors.New("no refresh session found for this user")
	ErrSessionExpired     = errors.New("session has reached its absolute expiry")
)

// AuthService owns the session lifecycle: credential verification, login,
// refresh token rotation and logout. It holds no session state of its own;
// the refresh_tokens table is the single source of truth, which keeps the
// service safe to run on multiple instances.
type AuthService struct {
	db         *sql.DB
	userRepo   repository.IUserRepository
	tokenRepo  repository.ITokenRepository
	issuer     *TokenIssuer
	sessionTTL time.Duration
}

func NewAuthService(db *sql.DB, userRepo repository.IUserRepository, tokenRepo repository.ITokenRepository, issuer *TokenIssuer, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		db:         db,
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		issuer:     issuer,
		sessionTTL: sessionTTL,
	}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return string(bytes), err
}

func (s *AuthService) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Register creates a new user with a bcrypt-hashed password.
func (s *AuthService) Register(req model.RegisterRequest) (*model.User, error) {
	role := req.Role
	if role == "" {
		role = model.RoleUser
	}

	hashed, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username: req.Username,
		Role:     role,
		Password: hashed,
	}
	if err := s.userRepo.CreateUser(user); err != nil {
		return nil, err
	}

	user.Password = ""
	return user, nil
}

// verifyCredentials looks the user up by name and compares the presented
// password against the stored hash. Read-only.
func (s *AuthService) verifyCredentials(username, password string) (*model.User, error) {
	user, err := s.userRepo.GetUserByUsername(username)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !s.CheckPasswordHash(password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Login verifies credentials and starts a new session. The absolute session
// expiry is fixed here, at first issuance; rotation only ever counts it down.
//
// Policy: a second login while a non-expired refresh record exists is
// rejected with ErrSessionActive. An expired leftover record is replaced.
// The check and the write share one transaction with a row lock, so two
// competing logins for the same user serialize instead of both succeeding.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.SessionData, error) {
	log := logger.Log.WithField("username", username)

	user, err := s.verifyCredentials(username, password)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := s.tokenRepo.GetByUserIDForUpdate(tx, user.ID)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	if existing != nil && existing.ExpiresAt.After(time.Now()) {
		log.Warn("Login rejected: active session exists")
		return nil, ErrSessionActive
	}

	accessToken, err := s.issuer.SignAccess(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.issuer.SignRefresh(user, s.sessionTTL)
	if err != nil {
		return nil, err
	}

	record := &model.RefreshToken{
		UserID:    user.ID,
		Token:     refreshToken,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := s.tokenRepo.UpsertTx(tx, record); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	log.WithField("user_id", user.ID).Info("Login successful, session started")

	return &model.SessionData{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		RefreshTTL:   s.sessionTTL,
		User:         model.UserData{ID: user.ID, Name: user.Username, Role: string(user.Role)},
	}, nil
}

// RefreshSession exchanges a valid refresh token for a new access+refresh
// pair. The new refresh token's embedded TTL equals the time remaining until
// the absolute session expiry, and the stored record keeps that same expiry,
// so no number of rotations can extend the session past the ceiling set at
// login. Persisting the new value also invalidates the one just consumed: a
// captured token becomes worthless after the holder's next rotation.
func (s *AuthService) RefreshSession(rawToken string) (*model.SessionData, error) {
	claims := s.issuer.Verify(rawToken, model.RefreshTokenKind)
	if claims == nil {
		return nil, ErrTokenInvalid
	}

	// Re-read the identity so a profile change since issuance is reflected
	// in the new claims instead of the cached ones.
	user, err := s.userRepo.GetUserByID(claims.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	log := logger.Log.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	})

	record, err := s.tokenRepo.FindValid(rawToken, user.ID)
	if err != nil {
		if err != sql.ErrNoRows {
			return nil, err
		}
		stored, gerr := s.tokenRepo.GetByUserID(user.ID)
		if gerr != nil {
			if gerr == sql.ErrNoRows {
				return nil, ErrSessionNotFound
			}
			return nil, gerr
		}
		if stored.Token == rawToken {
			log.Warn("Rotation rejected: absolute session expiry reached")
			return nil, ErrSessionExpired
		}
		// The stored value has moved on; the presented copy was rotated
		// away and is permanently dead, even before its own expiry.
		log.Warn("Rotation rejected: presented token does not match stored value")
		return nil, ErrTokenInvalid
	}

	remaining := time.Until(record.ExpiresAt)
	if remaining <= 0 {
		return nil, ErrSessionExpired
	}

	accessToken, err := s.issuer.SignAccess(user)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.issuer.SignRefresh(user, remaining)
	if err != nil {
		return nil, err
	}

	// Two rotations racing on the same user can both pass FindValid against
	// the same old value; whichever upsert lands last wins and the other
	// caller's fresh cookie fails closed on its next attempt. Accepted
	// trade-off, no row lock taken here.
	if err := s.tokenRepo.Upsert(user.ID, refreshToken, record.ExpiresAt); err != nil {
		return nil, err
	}

	log.WithField("remaining", remaining.String()).Info("Session rotated")

	return &model.SessionData{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		RefreshTTL:   remaining,
		User:         model.UserData{ID: user.ID, Name: user.Username, Role: string(user.Role)},
	}, nil
}

// Logout deletes the user's refresh record. Idempotent: a missing record is
// success, so a double logout never errors on the second call.
func (s *AuthService) Logout(userID int) error {
	if err := s.tokenRepo.DeleteByUserID(userID); err != nil {
		return err
	}
	logger.Log.WithField("user_id", userID).Info("Logout successful, session destroyed")
	return nil
}
