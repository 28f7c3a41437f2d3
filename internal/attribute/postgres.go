package attribute

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"veriflow/pkg/platform/sentinel"
)

// Postgres reads attributes from the platform's user_attributes table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const Schema = `
CREATE TABLE IF NOT EXISTS user_attributes (
	user_id   TEXT NOT NULL,
	tenant_id TEXT NOT NULL,
	claim_uri TEXT NOT NULL,
	value     TEXT NOT NULL,
	PRIMARY KEY (tenant_id, user_id, claim_uri)
);
`

func (p *Postgres) AttributeValue(ctx context.Context, userID, claimURI, tenantID string) (string, error) {
	var value string
	err := p.db.QueryRowContext(ctx,
		`SELECT value FROM user_attributes WHERE user_id = $1 AND claim_uri = $2 AND tenant_id = $3`,
		userID, claimURI, tenantID).Scan(&value)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("attribute value: %w", err)
	}

	// Distinguish "user gone" from "attribute unset" so callers can treat
	// the former as a hard failure.
	var exists bool
	err = p.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_attributes WHERE user_id = $1 AND tenant_id = $2)`,
		userID, tenantID).Scan(&exists)
	if err != nil {
		return "", fmt.Errorf("attribute user lookup: %w", err)
	}
	if !exists {
		return "", sentinel.ErrUserNotFound
	}
	return "", sentinel.ErrNotFound
}
