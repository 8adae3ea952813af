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
	"database/sql"
	"errors"
	"fmt"
)

// Options holds the knobs needed to build any of the supported adapters.
type Options struct {
	RedisAddr string
	Postgres  *sql.DB
}

// Build constructs a Store based on a string selector.
// Supported adapters:
//   - "", "memory": in-process, non-durable (default)
//   - "redis": requires Options.RedisAddr
//   - "postgres": requires Options.Postgres
func Build(adapter string, opts Options) (Store, error) {
	switch adapter {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		if opts.RedisAddr == "" {
			return nil, errors.New("profilestore: redis adapter requires Options.RedisAddr")
		}
		return NewRedisStore(NewGoRedisEvaler(opts.RedisAddr)), nil
	case "postgres":
		if opts.Postgres == nil {
			return nil, errors.New("profilestore: postgres adapter requires Options.Postgres")
		}
		return NewPostgresStore(opts.Postgres), nil
	default:
		return nil, fmt.Errorf("profilestore: unknown adapter %q", adapter)
	}
}
