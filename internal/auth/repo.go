package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sunderlandtech/backend/pkg"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrAdminNotFound = errors.New("admin not found")
	ErrUsernameTaken = errors.New("admin username already taken")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, admin *Admin) error {
	if admin.Username == "" || admin.PasswordHash == "" {
		return errors.New("admin username or password hash empty")
	}
	if admin.CreatedAt.IsZero() {
		admin.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(
		ctx,
		`INSERT INTO admin (id, username, password_hash, created_at) VALUES ($1, $2, $3, $4);`,
		admin.ID, admin.Username, admin.PasswordHash, admin.CreatedAt,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("insert admin: %w", err)
	}

	return nil
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (*Admin, error) {
	return r.get(ctx, `SELECT id, username, password_hash, created_at FROM admin WHERE username = $1;`, username)
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Admin, error) {
	return r.get(ctx, `SELECT id, username, password_hash, created_at FROM admin WHERE id = $1;`, id)
}

func (r *Repo) get(ctx context.Context, query, arg string) (*Admin, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !rows.Next() {
		return nil, ErrAdminNotFound
	}

	var admin Admin
	if err := rows.Scan(&admin.ID, &admin.Username, &admin.PasswordHash, &admin.CreatedAt); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	return &admin, nil
}
