// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package snapshot keeps the merged, filtered result list of a search for
// the length of a paging session, so later pages come from the same
// ordering as the first one. Entries are keyed by the request signature
// and expire after a TTL.
package snapshot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/job-aggregator/pkg/types"
)

// ErrMiss is returned by Load when no live snapshot exists for a key.
var ErrMiss = errors.New("snapshot miss")

// KeyPrefix namespaces snapshot keys in shared stores.
const KeyPrefix = "jobsearch:snapshot:"

// Snapshot is the cached ordered list for one search signature.
type Snapshot struct {
	Jobs []types.JobPosting `json:"jobs"`

	// Depth is how many postings each adapter was asked for when the
	// list was built. Windows ending at or before Depth can be served
	// from Jobs.
	Depth int `json:"depth"`
}

// Store persists snapshots.
type Store interface {
	Load(ctx context.Context, key string) (Snapshot, error)
	Save(ctx context.Context, key string, s Snapshot, ttl time.Duration) error
	Close() error
}

// Key derives the store key for a request signature.
func Key(signature string) string {
	sum := sha256.Sum256([]byte(signature))
	return KeyPrefix + hex.EncodeToString(sum[:16])
}

// Open builds the store selected by cfg. SnapshotNone, or an empty
// backend, returns a nil Store.
func Open(ctx context.Context, cfg types.SnapshotConfig) (Store, error) {
	switch cfg.Backend {
	case "", types.SnapshotNone:
		return nil, nil
	case types.SnapshotRedis:
		s, err := OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case types.SnapshotSQLite:
		s, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.Backend)
	}
}
