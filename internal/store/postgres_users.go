package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// ErrEmailTaken: another user already registered with the same email.
var ErrEmailTaken = errors.New("email already in use")

// ErrUserNotFound: no user with the given id.
var ErrUserNotFound = errors.New("user not found")

type PostgresUsersRepo struct {
	db *sql.DB
}

func NewPostgresUsersRepo(db *sql.DB) *PostgresUsersRepo {
	return &PostgresUsersRepo{db: db}
}

const userColumns = `user_id, name, email, avatar, created_at, updated_at`

func (r *PostgresUsersRepo) Create(ctx context.Context, u *User) error {
	if u.Avatar == "" {
		u.Avatar = defaultAvatar(u.Name)
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (user_id, name, email, avatar)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		u.ID, u.Name, strings.ToLower(u.Email), u.Avatar,
	)
	if err := row.Scan(&u.CreatedAt, &u.UpdatedAt); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *PostgresUsersRepo) ByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = $1`, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch user %s: %w", id, err)
	}
	return &u, nil
}

func (r *PostgresUsersRepo) List(ctx context.Context, page, limit int) ([]User, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, (page-1)*limit,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// SearchByName finds users whose name contains the query, case-insensitive.
// Backs @mention lookups.
func (r *PostgresUsersRepo) SearchByName(ctx context.Context, query string, limit int) ([]User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE name ILIKE $1 ORDER BY name LIMIT $2`,
		"%"+query+"%", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update merges the non-nil fields into the user record. A duplicate email
// surfaces as ErrEmailTaken, same as on create.
func (r *PostgresUsersRepo) Update(ctx context.Context, id string, name, email, avatar *string) (*User, error) {
	if email != nil {
		lowered := strings.ToLower(*email)
		email = &lowered
	}

	var u User
	err := r.db.QueryRowContext(ctx, `
		UPDATE users
		SET name = COALESCE($2, name),
		    email = COALESCE($3, email),
		    avatar = COALESCE($4, avatar),
		    updated_at = NOW()
		WHERE user_id = $1
		RETURNING `+userColumns,
		id, name, email, avatar,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}
	return &u, nil
}

func (r *PostgresUsersRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func defaultAvatar(name string) string {
	seed := strings.ReplaceAll(name, " ", "")
	if seed == "" {
		seed = "default"
	}
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + seed
}
