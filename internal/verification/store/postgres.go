package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"veriflow/internal/verification/models"
	"veriflow/pkg/platform/sentinel"
)

// Postgres persists claims in the idv_claims table. Metadata is a jsonb
// column; the sdk_token key is stripped before serialization.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Schema is applied by the operator (or testcontainers setup); kept here so
// the store and its table definition travel together.
const Schema = `
CREATE TABLE IF NOT EXISTS idv_claims (
	id          UUID PRIMARY KEY,
	user_id     TEXT        NOT NULL,
	tenant_id   TEXT        NOT NULL,
	provider_id TEXT        NOT NULL,
	claim_uri   TEXT        NOT NULL,
	verified    BOOLEAN     NOT NULL DEFAULT FALSE,
	metadata    JSONB       NOT NULL DEFAULT '{}',
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL,
	UNIQUE (tenant_id, provider_id, user_id, claim_uri)
);
CREATE INDEX IF NOT EXISTS idx_idv_claims_run
	ON idv_claims (tenant_id, provider_id, (metadata->>'onfido_workflow_run_id'));
`

const claimColumns = `id, user_id, tenant_id, provider_id, claim_uri, verified, metadata, created_at, updated_at`

func (p *Postgres) ClaimsByUser(ctx context.Context, userID, providerID, tenantID string) ([]*models.Claim, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+claimColumns+` FROM idv_claims
		 WHERE user_id = $1 AND provider_id = $2 AND tenant_id = $3`,
		userID, providerID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("claims by user: %w", err)
	}
	defer rows.Close()
	return scanClaims(rows)
}

func (p *Postgres) ClaimsByMetadata(ctx context.Context, field, value, providerID, tenantID string) ([]*models.Claim, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+claimColumns+` FROM idv_claims
		 WHERE metadata->>$1 = $2 AND provider_id = $3 AND tenant_id = $4`,
		field, value, providerID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("claims by metadata %s: %w", field, err)
	}
	defer rows.Close()
	return scanClaims(rows)
}

func (p *Postgres) Claim(ctx context.Context, userID, claimURI, providerID, tenantID string) (*models.Claim, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM idv_claims
		 WHERE user_id = $1 AND claim_uri = $2 AND provider_id = $3 AND tenant_id = $4`,
		userID, claimURI, providerID, tenantID)
	claim, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get claim: %w", err)
	}
	return claim, nil
}

func (p *Postgres) SaveAll(ctx context.Context, userID string, claims []*models.Claim, tenantID string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save claims: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, c := range claims {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		meta, err := marshalMetadata(c.Metadata)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO idv_claims (`+claimColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
			 ON CONFLICT (tenant_id, provider_id, user_id, claim_uri)
			 DO UPDATE SET verified = EXCLUDED.verified,
			               metadata = EXCLUDED.metadata,
			               updated_at = EXCLUDED.updated_at`,
			c.ID, userID, tenantID, c.ProviderID, c.ClaimURI, c.Verified, meta, now)
		if err != nil {
			return fmt.Errorf("save claim %s: %w", c.ClaimURI, err)
		}
	}
	return tx.Commit()
}

func (p *Postgres) Update(ctx context.Context, userID string, claim *models.Claim, tenantID string) error {
	meta, err := marshalMetadata(claim.Metadata)
	if err != nil {
		return err
	}
	res, err := p.db.ExecContext(ctx,
		`UPDATE idv_claims
		 SET verified = $1, metadata = $2, updated_at = $3
		 WHERE user_id = $4 AND claim_uri = $5 AND provider_id = $6 AND tenant_id = $7`,
		claim.Verified, meta, time.Now(), userID, claim.ClaimURI, claim.ProviderID, tenantID)
	if err != nil {
		return fmt.Errorf("update claim %s: %w", claim.ClaimURI, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update claim rows: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// marshalMetadata serializes claim metadata with the response-only token key
// removed.
func marshalMetadata(meta map[string]any) ([]byte, error) {
	clean := make(map[string]any, len(meta))
	for k, v := range meta {
		if k == models.MetaSDKToken {
			continue
		}
		clean[k] = v
	}
	out, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("marshal claim metadata: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (*models.Claim, error) {
	var c models.Claim
	var meta []byte
	if err := row.Scan(&c.ID, &c.UserID, &c.TenantID, &c.ProviderID, &c.ClaimURI,
		&c.Verified, &meta, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(meta, &c.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal claim metadata: %w", err)
	}
	return &c, nil
}

func scanClaims(rows *sql.Rows) ([]*models.Claim, error) {
	var out []*models.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
