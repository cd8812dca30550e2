package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// PostgresRepository stores users in the users table.
// The pool is owned by the caller; the repository never closes it.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository wraps pool.
func NewPostgresRepository(pool *pgxpool.Pool) (*PostgresRepository, error) {
	if pool == nil {
		return nil, errors.New("users: nil pool")
	}
	return &PostgresRepository{pool: pool}, nil
}

// Create inserts u inside a transaction.
func (r *PostgresRepository) Create(ctx context.Context, u User) error {
	if err := u.Validate(); err != nil {
		return err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite})
	if err != nil {
		return fmt.Errorf("users: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, wallet_address, username) VALUES ($1, $2, $3)`,
		u.ID, u.WalletAddress, u.Username,
	)
	if err != nil {
		return classify("create", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("users: commit: %w", err)
	}
	return nil
}

// GetByID returns the user with id or ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	return r.getOne(ctx, `SELECT id, wallet_address, username FROM users WHERE id = $1`, id)
}

// GetByWallet returns the user owning wallet or ErrNotFound.
func (r *PostgresRepository) GetByWallet(ctx context.Context, wallet string) (User, error) {
	return r.getOne(ctx, `SELECT id, wallet_address, username FROM users WHERE wallet_address = $1`, wallet)
}

// Update overwrites the wallet address and username of u.ID.
func (r *PostgresRepository) Update(ctx context.Context, u User) error {
	if err := u.Validate(); err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET wallet_address = $1, username = $2, updated_at = now() WHERE id = $3`,
		u.WalletAddress, u.Username, u.ID,
	)
	if err != nil {
		return classify("update", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (User, error) {
	var u User
	err := r.pool.QueryRow(ctx, query, arg).Scan(&u.ID, &u.WalletAddress, &u.Username)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("users: query: %w", err)
	}
	return u, nil
}

func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrAlreadyExists
	}
	return fmt.Errorf("users: %s: %w", op, err)
}
