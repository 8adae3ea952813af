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

import "testing"

func TestBuild_DefaultIsMemory(t *testing.T) {
	s, err := Build("", Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Fatalf("got %T, want *MemoryStore", s)
	}
}

func TestBuild_RedisWithoutAddrFails(t *testing.T) {
	if _, err := Build("redis", Options{}); err == nil {
		t.Fatal("expected error for missing RedisAddr")
	}
}

func TestBuild_PostgresWithoutDBFails(t *testing.T) {
	if _, err := Build("postgres", Options{}); err == nil {
		t.Fatal("expected error for missing Postgres DB")
	}
}

func TestBuild_UnknownAdapterFails(t *testing.T) {
	if _, err := Build("carrier-pigeon", Options{}); err == nil {
		t.Fatal("expected error for unknown adapter")
	}
}

func TestBuild_RedisWithAddrSucceeds(t *testing.T) {
	s, err := Build("redis", Options{RedisAddr: "127.0.0.1:6379"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(*RedisStore); !ok {
		t.Fatalf("got %T, want *RedisStore", s)
	}
}
