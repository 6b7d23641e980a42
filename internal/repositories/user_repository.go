package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"greenbus/backend/internal/domain"
	"greenbus/backend/internal/domain/models"
)

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, email, phone, password_hash, role, status
		 FROM users WHERE LOWER(email) = ?`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return nil, domain.InternalError{Msg: "user lookup failed", Err: err}
	}
	return &u, nil
}

func (r UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, email, phone, password_hash, role, status
		 FROM users WHERE id = ?`,
		id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.Role, &u.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundError{Resource: "user"}
	}
	if err != nil {
		return nil, domain.InternalError{Msg: "user lookup failed", Err: err}
	}
	return &u, nil
}
