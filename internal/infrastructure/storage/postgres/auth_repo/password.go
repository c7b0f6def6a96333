// Package auth_repo provides PostgreSQL storage for operator credentials.
package auth_repo

import (
	"context"
	"fmt"

	"linksoc/internal/domain/auth"
	"linksoc/internal/infrastructure/storage/postgres"
)

var _ auth.Repository = (*PasswordRepo)(nil)

// PasswordRepo implements auth.Repository over fifo_auth.
type PasswordRepo struct {
	txManager *postgres.TxManager
}

// NewPasswordRepo creates a new password repository.
func NewPasswordRepo(txManager *postgres.TxManager) *PasswordRepo {
	return &PasswordRepo{txManager: txManager}
}

// PasswordHashes returns every stored bcrypt hash, oldest first.
func (r *PasswordRepo) PasswordHashes(ctx context.Context) ([]string, error) {
	rows, err := r.txManager.GetQuerier(ctx).Query(ctx, `
		SELECT password_hash FROM fifo_auth ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query password hashes: %w", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scan password hash: %w", err)
		}
		hashes = append(hashes, h)
	}
	return hashes, rows.Err()
}

// AddPasswordHash stores a new bcrypt hash.
func (r *PasswordRepo) AddPasswordHash(ctx context.Context, hash string) error {
	_, err := r.txManager.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO fifo_auth (password_hash) VALUES ($1)
	`, hash)
	if err != nil {
		return fmt.Errorf("insert password hash: %w", err)
	}
	return nil
}
