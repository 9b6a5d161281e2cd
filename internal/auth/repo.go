package auth

import (
	"context"
	"database/sql"
	"time"
)

// Repository persists issued refresh tokens for rotation checks.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// SaveRefreshToken stores a refresh token issued to a bridge.
func (r *Repository) SaveRefreshToken(ctx context.Context, bridgeID, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (bridge_id, token, expires_at)
		VALUES ($1, $2, $3)
	`, bridgeID, token, expiresAt)
	return err
}

// RevokeRefreshToken marks a token revoked.
func (r *Repository) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`, token)
	return err
}
