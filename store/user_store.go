package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/castworks/designdesk/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db}
}

func (s *UserStore) Get(ctx context.Context, id string) (u model.User, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT id, email, name, role, last_login, created_at
		FROM user
		WHERE id = ?`,
		id,
	).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.LastLogin, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
	}
	return
}

// ListIDsExcept returns every user id but the excluded one. Fanout uses it
// to notify everyone except the mutating admin.
func (s *UserStore) ListIDsExcept(ctx context.Context, excludeID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id
		FROM user
		WHERE id != ?`,
		excludeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *UserStore) Create(ctx context.Context, email, name, password, role string) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 10)
	if err != nil {
		return model.User{}, err
	}

	u := model.User{
		ID:        uuid.Must(uuid.NewV4()).String(),
		Email:     strings.ToLower(email),
		Name:      name,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user (id, email, name, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, string(hash), u.Role, u.CreatedAt,
	)
	return u, err
}

// UpdateProfile updates name and role, and optionally rotates the password
// after checking the current one.
func (s *UserStore) UpdateProfile(ctx context.Context, id, name, role, currentPassword, newPassword string) (model.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return u, err
	}

	if currentPassword != "" && newPassword != "" {
		var hash []byte
		err = s.db.QueryRowContext(ctx, "SELECT password_hash FROM user WHERE id = ?", id).Scan(&hash)
		if err != nil {
			return u, err
		}
		if bcrypt.CompareHashAndPassword(hash, []byte(currentPassword)) != nil {
			return u, ValidationError{Reason: "Current password is incorrect"}
		}

		newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), 10)
		if err != nil {
			return u, err
		}
		_, err = s.db.ExecContext(ctx, "UPDATE user SET password_hash = ? WHERE id = ?", string(newHash), id)
		if err != nil {
			return u, err
		}
	}

	_, err = s.db.ExecContext(ctx, "UPDATE user SET name = ?, role = ? WHERE id = ?", name, role, id)
	if err != nil {
		return u, err
	}

	u.Name = name
	u.Role = role
	return u, nil
}
