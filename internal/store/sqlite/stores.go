// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/shopsage-dev/shopsage/internal/store"
	ssgerr "github.com/shopsage-dev/shopsage/pkg/errors"
)

var _ store.StoreRegistry = (*storeRegistry)(nil)

type storeRegistry struct {
	db     *sql.DB
	cipher store.TokenCipher
}

// Upsert relies on the UNIQUE constraint on shop_domain: concurrent OAuth
// callbacks for the same shop race on the same row instead of creating
// duplicates.
func (r *storeRegistry) Upsert(ctx context.Context, s *store.Store) (*store.Store, error) {
	if s.ShopDomain == "" {
		return nil, ssgerr.New(ssgerr.CodeStoreInvalidInput, "shop domain is required")
	}

	sealed, err := r.cipher.Seal(s.AccessToken)
	if err != nil {
		return nil, ssgerr.Wrap(err, ssgerr.CodeSecretsSealFailure, "sealing access token",
			ssgerr.FieldShop(s.ShopDomain))
	}

	metadata, err := json.Marshal(orEmptyMap(s.Metadata))
	if err != nil {
		return nil, ssgerr.Wrap(err, ssgerr.CodeStoreInvalidInput, "marshalling store metadata")
	}

	now := formatTime(time.Now())

	const q = `INSERT INTO stores (id, shop_domain, access_token, scope, active, api_version, metadata, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(shop_domain) DO UPDATE SET
	access_token = excluded.access_token,
	scope        = excluded.scope,
	active       = excluded.active,
	api_version  = excluded.api_version,
	metadata     = excluded.metadata,
	updated_at   = excluded.updated_at`

	_, err = r.db.ExecContext(ctx, q,
		uuid.NewString(),
		s.ShopDomain,
		sealed,
		s.Scope,
		boolToInt(s.Active),
		s.APIVersion,
		string(metadata),
		now,
		now,
	)
	if err != nil {
		return nil, ssgerr.Wrap(err, ssgerr.CodeStoreDatabaseFailure, "upserting store",
			ssgerr.FieldShop(s.ShopDomain))
	}

	return r.GetByDomain(ctx, s.ShopDomain)
}

const storeColumns = `id, shop_domain, access_token, scope, active, api_version, metadata, created_at, updated_at`

func (r *storeRegistry) GetByID(ctx context.Context, id string) (*store.Store, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = ?`, id)
	return r.scanStore(row, id)
}

func (r *storeRegistry) GetByDomain(ctx context.Context, domain string) (*store.Store, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+storeColumns+` FROM stores WHERE shop_domain = ?`, domain)
	return r.scanStore(row, domain)
}

func (r *storeRegistry) List(ctx context.Context, opts store.ListOpts) ([]*store.Store, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+storeColumns+` FROM stores ORDER BY created_at DESC, shop_domain ASC LIMIT ? OFFSET ?`,
		limit, opts.Offset)
	if err != nil {
		return nil, ssgerr.Wrap(err, ssgerr.CodeStoreDatabaseFailure, "listing stores")
	}
	defer rows.Close()

	stores := []*store.Store{}
	for rows.Next() {
		s, err := r.scanStoreRow(rows)
		if err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}

	if err := rows.Err(); err != nil {
		return nil, ssgerr.Wrap(err, ssgerr.CodeStoreDatabaseFailure, "iterating store rows")
	}
	return stores, nil
}

func (r *storeRegistry) SetActive(ctx context.Context, domain string, active bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE stores SET active = ?, updated_at = ? WHERE shop_domain = ?`,
		boolToInt(active), formatTime(time.Now()), domain)
	if err != nil {
		return ssgerr.Wrap(err, ssgerr.CodeStoreDatabaseFailure, "updating store active flag",
			ssgerr.FieldShop(domain))
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return ssgerr.Wrap(err, ssgerr.CodeStoreDatabaseFailure, "checking rows affected",
			ssgerr.FieldShop(domain))
	}
	if rows == 0 {
		return ssgerr.Errorf(ssgerr.CodeStoreNotFound, "store %s not found", domain)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *storeRegistry) scanStore(row rowScanner, key string) (*store.Store, error) {
	s, err := r.scanStoreRow(row)
	if err == sql.ErrNoRows {
		return nil, ssgerr.Errorf(ssgerr.CodeStoreNotFound, "store %s not found", key)
	}
	return s, err
}

func (r *storeRegistry) scanStoreRow(row rowScanner) (*store.Store, error) {
	var s store.Store
	var sealed, metaJSON, createdAt, updatedAt string
	var active int

	err := row.Scan(
		&s.ID,
		&s.ShopDomain,
		&sealed,
		&s.Scope,
		&active,
		&s.APIVersion,
		&metaJSON,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, ssgerr.Wrap(err, ssgerr.CodeStoreDatabaseFailure, "scanning store row")
	}

	token, err := r.cipher.Open(sealed)
	if err != nil {
		return nil, ssgerr.Wrap(err, ssgerr.CodeSecretsOpenFailure, "opening access token",
			ssgerr.FieldShop(s.ShopDomain))
	}
	s.AccessToken = token

	if metaJSON != "" && metaJSON != "{}" {
		if err := json.Unmarshal([]byte(metaJSON), &s.Metadata); err != nil {
			return nil, ssgerr.Wrap(err, ssgerr.CodeStoreDatabaseFailure, "unmarshalling store metadata")
		}
	}

	s.Active = active != 0
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)

	return &s, nil
}

func orEmptyMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
