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
	"encoding/json"
	"errors"
	"fmt"

	redis "github.com/redis/go-redis/v9"
)

// RedisEvaler abstracts the minimal surface needed from a Redis client, so
// tests can supply a fake without a running server.
type RedisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error)
	Get(ctx context.Context, key string) (string, error)
}

// GoRedisEvaler wraps a *redis.Client to satisfy RedisEvaler.
type GoRedisEvaler struct{ c *redis.Client }

// NewGoRedisEvaler connects to addr (e.g. "127.0.0.1:6379").
func NewGoRedisEvaler(addr string) *GoRedisEvaler {
	return &GoRedisEvaler{c: redis.NewClient(&redis.Options{Addr: addr})}
}

func (g *GoRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) (interface{}, error) {
	return g.c.Eval(ctx, script, keys, args...).Result()
}

func (g *GoRedisEvaler) Get(ctx context.Context, key string) (string, error) {
	return g.c.Get(ctx, key).Result()
}

// redisPersistScript keeps a separate hash marker key so a repeated apply of
// an already-stored profile touches Redis once (a GET) instead of
// unconditionally overwriting the payload key.
const redisPersistScript = `
local dataKey = KEYS[1]
local hashKey = KEYS[2]
local hash = ARGV[1]
local payload = ARGV[2]
local existing = redis.call('GET', hashKey)
if existing == hash then
  return 0
end
redis.call('SET', dataKey, payload)
redis.call('SET', hashKey, hash)
return 1
`

// RedisStore persists StoredProfiles as two plain string keys per device id:
// the payload under profile:<id> and the merge-hash marker under
// profile-hash:<id>.
type RedisStore struct {
	client RedisEvaler
}

// NewRedisStore returns a store backed by client.
func NewRedisStore(client RedisEvaler) *RedisStore {
	return &RedisStore{client: client}
}

func redisProfileKey(deviceID string) string { return fmt.Sprintf("profile:%s", deviceID) }
func redisHashKey(deviceID string) string    { return fmt.Sprintf("profile-hash:%s", deviceID) }

func (r *RedisStore) Persist(ctx context.Context, sp StoredProfile) error {
	if sp.DeviceID == "" {
		return errors.New("StoredProfile.DeviceID must be set")
	}
	payload, err := json.Marshal(sp)
	if err != nil {
		return fmt.Errorf("marshal profile device=%s: %w", sp.DeviceID, err)
	}
	keys := []string{redisProfileKey(sp.DeviceID), redisHashKey(sp.DeviceID)}
	args := []interface{}{fmt.Sprintf("%d", sp.MergeHash), string(payload)}
	if _, err := r.client.Eval(ctx, redisPersistScript, keys, args...); err != nil {
		return fmt.Errorf("redis eval device=%s: %w", sp.DeviceID, err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, deviceID string) (StoredProfile, bool, error) {
	raw, err := r.client.Get(ctx, redisProfileKey(deviceID))
	if errors.Is(err, redis.Nil) {
		return StoredProfile{}, false, nil
	}
	if err != nil {
		return StoredProfile{}, false, fmt.Errorf("redis get device=%s: %w", deviceID, err)
	}
	var sp StoredProfile
	if err := json.Unmarshal([]byte(raw), &sp); err != nil {
		return StoredProfile{}, false, fmt.Errorf("unmarshal profile device=%s: %w", deviceID, err)
	}
	return sp, true, nil
}
