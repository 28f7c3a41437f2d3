package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"veriflow/internal/provider/models"
	"veriflow/pkg/platform/sentinel"
)

// Postgres persists providers in the idv_providers table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const Schema = `
CREATE TABLE IF NOT EXISTS idv_providers (
	id             TEXT        NOT NULL,
	tenant_id      TEXT        NOT NULL,
	name           TEXT        NOT NULL,
	enabled        BOOLEAN     NOT NULL DEFAULT TRUE,
	config         JSONB       NOT NULL DEFAULT '{}',
	claim_mappings JSONB       NOT NULL DEFAULT '{}',
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (tenant_id, id)
);
`

func (p *Postgres) Create(ctx context.Context, provider *models.Provider) error {
	config, err := json.Marshal(provider.Config)
	if err != nil {
		return fmt.Errorf("marshal provider config: %w", err)
	}
	mappings, err := json.Marshal(provider.ClaimMappings)
	if err != nil {
		return fmt.Errorf("marshal claim mappings: %w", err)
	}

	now := time.Now()
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO idv_providers (id, tenant_id, name, enabled, config, claim_mappings, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		provider.ID, provider.TenantID, provider.Name, provider.Enabled, config, mappings, now)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create provider: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, id, tenantID string) (*models.Provider, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, enabled, config, claim_mappings, created_at, updated_at
		 FROM idv_providers WHERE id = $1 AND tenant_id = $2`,
		id, tenantID)

	var provider models.Provider
	var config, mappings []byte
	err := row.Scan(&provider.ID, &provider.TenantID, &provider.Name, &provider.Enabled,
		&config, &mappings, &provider.CreatedAt, &provider.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get provider: %w", err)
	}
	if err := json.Unmarshal(config, &provider.Config); err != nil {
		return nil, fmt.Errorf("unmarshal provider config: %w", err)
	}
	if err := json.Unmarshal(mappings, &provider.ClaimMappings); err != nil {
		return nil, fmt.Errorf("unmarshal claim mappings: %w", err)
	}
	return &provider, nil
}

func (p *Postgres) SetEnabled(ctx context.Context, id, tenantID string, enabled bool) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE idv_providers SET enabled = $1, updated_at = $2 WHERE id = $3 AND tenant_id = $4`,
		enabled, time.Now(), id, tenantID)
	if err != nil {
		return fmt.Errorf("set provider enabled: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set provider enabled rows: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
