package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"studiodesk/internal/database"
	"studiodesk/internal/models"
)

// ErrUserNotFound is returned when a lookup matches no account
var ErrUserNotFound = errors.New("user not found")

// UserService handles account storage. Accounts live in SQLite and are
// managed through the admin surface; the shared store only ever holds a
// read-only mirror of them.
type UserService struct {
	db *database.DB
}

// NewUserService creates a new user service
func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db}
}

// Create inserts a new account and returns it with its assigned id
func (s *UserService) Create(user *models.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.LastLoginAt = now

	res, err := s.db.Exec(`
		INSERT INTO users (name, email, password_hash, role, created_at, last_login_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.Name, user.Email, user.PasswordHash, user.Role, user.CreatedAt, user.LastLoginAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted id: %w", err)
	}
	user.ID = id
	return nil
}

// GetByEmail returns the account with the given email
func (s *UserService) GetByEmail(email string) (*models.User, error) {
	return s.scanOne(s.db.QueryRow(`
		SELECT id, name, email, password_hash, role, created_at, last_login_at
		FROM users WHERE email = ?
	`, email))
}

// GetByID returns the account with the given id
func (s *UserService) GetByID(id int64) (*models.User, error) {
	return s.scanOne(s.db.QueryRow(`
		SELECT id, name, email, password_hash, role, created_at, last_login_at
		FROM users WHERE id = ?
	`, id))
}

func (s *UserService) scanOne(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.LastLoginAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// Count returns the number of accounts
func (s *UserService) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// List returns all accounts ordered by creation
func (s *UserService) List() ([]models.User, error) {
	rows, err := s.db.Query(`
		SELECT id, name, email, password_hash, role, created_at, last_login_at
		FROM users ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.LastLoginAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// Update changes an account's profile fields
func (s *UserService) Update(id int64, req *models.UpdateUserRequest) (*models.User, error) {
	res, err := s.db.Exec(`
		UPDATE users SET name = ?, email = ?, role = ? WHERE id = ?
	`, req.Name, req.Email, req.Role, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return nil, ErrUserNotFound
	}

	return s.GetByID(id)
}

// Delete removes an account
func (s *UserService) Delete(id int64) error {
	res, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// TouchLogin records a successful login
func (s *UserService) TouchLogin(id int64) error {
	if _, err := s.db.Exec(`UPDATE users SET last_login_at = ? WHERE id = ?`, time.Now(), id); err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}
