package repository

import (
	"database/sql"

	"backups-api/model"
)

// IUserRepository is the identity store consumed by the auth service.
// Lookups are read-only from the session subsystem's point of view.
type IUserRepository interface {
	CreateUser(user *model.User) error
	GetUserByUsername(username string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
}

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) CreateUser(user *model.User) error {
	query := `INSERT INTO users (username, role, password) VALUES ($1, $2, $3) RETURNING id, created_at`
	return r.DB.QueryRow(query, user.Username, user.Role, user.Password).Scan(&user.ID, &user.CreatedAt)
}

func (r *UserRepository) GetUserByUsername(username string) (*model.User, error) {
	user := &model.User{}
	query := `SELECT id, username, role, password, created_at FROM users WHERE username=$1`
	err := r.DB.QueryRow(query, username).Scan(&user.ID, &user.Username, &user.Role, &user.Password, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID is called on every rotation so that a profile change is
// reflected in the next issued claims instead of the cached ones.
func (r *UserRepository) GetUserByID(id int) (*model.User, error) {
	user := &model.User{}
	query := `SELECT id, username, role, password, created_at FROM users WHERE id=$1`
	err := r.DB.QueryRow(query, id).Scan(&user.ID, &user.Username, &user.Role, &user.Password, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}
