package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo keeps the SHA-256 hashes of issued refresh tokens.  A token
// is usable while it is neither revoked nor past expires_at.
type TokenRepo struct {
	db *sql.DB
}

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

// StoreRefresh records a newly issued token for userID.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	const q = `INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, userID, tokenHash, exp)
	return translate(err)
}

// ValidateRefresh resolves a token hash to its user.  Unknown, revoked
// and expired tokens all yield ErrNotFound.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	const q = `SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token_hash = ? LIMIT 1`
	var (
		userID  uint64
		exp     time.Time
		revoked sql.NullTime
	)
	if err := r.db.QueryRowContext(ctx, q, tokenHash).Scan(&userID, &exp, &revoked); err != nil {
		return 0, translate(err)
	}
	if revoked.Valid || !exp.After(time.Now().UTC()) {
		return 0, ErrNotFound
	}
	return userID, nil
}

// RevokeByHash ends one session (logout, refresh rotation).
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	return r.revoke(ctx, "token_hash = ?", tokenHash)
}

// RevokeAllForUser ends every session of a user.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	return r.revoke(ctx, "user_id = ?", userID)
}

func (r *TokenRepo) revoke(ctx context.Context, cond string, arg any) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP() WHERE `+cond+` AND revoked_at IS NULL`, arg)
	return err
}
