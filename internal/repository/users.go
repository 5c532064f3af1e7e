package repository

import (
	"context"
)

const createUser = `
INSERT INTO users (id, email, name, password)
VALUES (?, ?, ?, ?)
RETURNING id, email, name, password, role, email_verified, banned, ban_expires, created_at
`

type CreateUserParams struct {
	ID       string
	Email    string
	Name     string
	Password string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser, arg.ID, arg.Email, arg.Name, arg.Password)
	return scanUser(row)
}

const getUser = `
SELECT id, email, name, password, role, email_verified, banned, ban_expires, created_at
FROM users WHERE id = ?
`

func (q *Queries) GetUser(ctx context.Context, id string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUser, id))
}

const getUserByEmail = `
SELECT id, email, name, password, role, email_verified, banned, ban_expires, created_at
FROM users WHERE email = ?
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const updateUserProfile = `
UPDATE users SET name = ? WHERE id = ?
`

func (q *Queries) UpdateUserProfile(ctx context.Context, id, name string) error {
	_, err := q.db.ExecContext(ctx, updateUserProfile, name, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Password,
		&u.Role,
		&u.EmailVerified,
		&u.Banned,
		&u.BanExpires,
		&u.CreatedAt,
	)
	return u, err
}
