package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/chat/application/domain"
	"github.com/priymavani/FarmTrust-x-Hackathon/internal/pkg/profile/port"
)

// PgProfileDirectory resolves display names from the marketplace profile
// tables. Lookups are by normalized email; a missing row falls back to the
// email itself so the inbox never fails on a deleted or unknown profile.
type PgProfileDirectory struct {
	pool *pgxpool.Pool
}

func NewPgProfileDirectory(pool *pgxpool.Pool) *PgProfileDirectory {
	return &PgProfileDirectory{pool: pool}
}

var _ port.Directory = (*PgProfileDirectory)(nil)

func (d *PgProfileDirectory) DisplayName(ctx context.Context, role chat.Role, email string) (string, error) {
	if d == nil || d.pool == nil {
		return "", errors.New("PgProfileDirectory: nil pool")
	}
	email = chat.NormalizeEmail(email)

	table := "marketplace.app_user"
	if role == chat.RoleFarmer {
		table = "marketplace.farmer"
	}

	var name string
	err := d.pool.QueryRow(ctx,
		"SELECT name FROM "+table+" WHERE lower(email) = $1", email,
	).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return email, nil
	}
	if err != nil {
		return "", err
	}
	if name == "" {
		return email, nil
	}
	return name, nil
}
