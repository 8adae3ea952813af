// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package profilestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Postgres schema (reference):
//
// CREATE TABLE IF NOT EXISTS device_profiles (
//   device_id  TEXT PRIMARY KEY,
//   merge_hash BIGINT NOT NULL,
//   resolved   JSONB NOT NULL,
//   updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
// );
//
// Idempotent upsert: skip the write entirely when merge_hash is unchanged,
// so a device re-announcing the same resolved profile on every boot does not
// churn the row's updated_at.

// PostgresStore persists StoredProfiles in a device_profiles table.
type PostgresStore struct {
	db             *sql.DB
	defaultTimeout time.Duration
}

// NewPostgresStore returns a store backed by db.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, defaultTimeout: 10 * time.Second}
}

func (p *PostgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok || p.defaultTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.defaultTimeout)
}

func (p *PostgresStore) Persist(ctx context.Context, sp StoredProfile) error {
	if sp.DeviceID == "" {
		return errors.New("StoredProfile.DeviceID must be set")
	}
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	resolved, err := json.Marshal(sp.Resolved)
	if err != nil {
		return fmt.Errorf("marshal profile device=%s: %w", sp.DeviceID, err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO device_profiles(device_id, merge_hash, resolved, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (device_id) DO UPDATE
		  SET merge_hash = EXCLUDED.merge_hash,
		      resolved   = EXCLUDED.resolved,
		      updated_at = now()
		  WHERE device_profiles.merge_hash IS DISTINCT FROM EXCLUDED.merge_hash`,
		sp.DeviceID, int64(sp.MergeHash), resolved)
	if err != nil {
		return fmt.Errorf("upsert device_profiles device=%s: %w", sp.DeviceID, err)
	}
	return nil
}

func (p *PostgresStore) Load(ctx context.Context, deviceID string) (StoredProfile, bool, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	var mergeHash int64
	var resolved []byte
	row := p.db.QueryRowContext(ctx,
		`SELECT merge_hash, resolved FROM device_profiles WHERE device_id = $1`, deviceID)
	if err := row.Scan(&mergeHash, &resolved); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return StoredProfile{}, false, nil
		}
		return StoredProfile{}, false, fmt.Errorf("select device_profiles device=%s: %w", deviceID, err)
	}
	sp := StoredProfile{DeviceID: deviceID, MergeHash: uint64(mergeHash)}
	if err := json.Unmarshal(resolved, &sp.Resolved); err != nil {
		return StoredProfile{}, false, fmt.Errorf("unmarshal profile device=%s: %w", deviceID, err)
	}
	return sp, true, nil
}
