package boltstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agora/internal/guard"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// keySep separates key components. Actor ids, actions and fingerprints never
// contain a NUL byte.
const keySep = "\x00"

// maxFingerprintAge is how long fingerprints are kept before the write path
// garbage-collects them. It must cover the longest duplicate window.
const maxFingerprintAge = 25 * time.Hour

// GuardStore implements guard.Store on BoltDB.
type GuardStore struct {
	db *bolt.DB
}

// SumActive sums counts across the actor's still-open rate windows and
// returns the earliest expiry among them. Records whose window closed before
// now-maxLookback are deleted in the same pass.
func (s *GuardStore) SumActive(ctx context.Context, actorID string, action guard.Action, now time.Time, maxLookback time.Duration) (int, time.Time, error) {
	if err := ctx.Err(); err != nil {
		return 0, time.Time{}, err
	}

	var (
		total   int
		expiry  time.Time
		horizon = now.Add(-maxLookback)
	)
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(BucketRateRecords)
		prefix := []byte(actorID + keySep + string(action) + keySep)

		var stale [][]byte
		c := b.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var rec guard.Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("failed to unmarshal rate record: %w", err)
			}
			if rec.WindowEnd.Before(horizon) {
				stale = append(stale, append([]byte(nil), k...))
				continue
			}
			if rec.WindowEnd.After(now) {
				total += rec.Count
				if expiry.IsZero() || rec.WindowEnd.Before(expiry) {
					expiry = rec.WindowEnd
				}
			}
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return fmt.Errorf("failed to purge rate record: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, time.Time{}, err
	}
	return total, expiry, nil
}

// AppendRecord stores a new rate-limit record.
func (s *GuardStore) AppendRecord(ctx context.Context, rec guard.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal rate record: %w", err)
	}
	key := []byte(rec.ActorID + keySep + string(rec.Action) + keySep +
		rec.WindowEnd.UTC().Format(time.RFC3339Nano) + keySep + uuid.NewString())

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(BucketRateRecords).Put(key, data)
	})
}

// LastCreation returns when the actor last performed the action, or the zero
// time if never recorded.
func (s *GuardStore) LastCreation(ctx context.Context, actorID string, action guard.Action) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}

	var last time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(BucketLastCreation).Get([]byte(actorID + keySep + string(action)))
		if v == nil {
			return nil
		}
		t, err := time.Parse(time.RFC3339Nano, string(v))
		if err != nil {
			return fmt.Errorf("failed to parse last creation time: %w", err)
		}
		last = t
		return nil
	})
	return last, err
}

// SeenFingerprint reports whether the actor produced content with this
// fingerprint at or after since.
func (s *GuardStore) SeenFingerprint(ctx context.Context, actorID string, action guard.Action, fingerprint string, since time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var seen bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(BucketFingerprints).Get([]byte(actorID + keySep + string(action) + keySep + fingerprint))
		if v == nil {
			return nil
		}
		t, err := time.Parse(time.RFC3339Nano, string(v))
		if err != nil {
			return fmt.Errorf("failed to parse fingerprint time: %w", err)
		}
		seen = !t.Before(since)
		return nil
	})
	return seen, err
}

// RecordCreation stores the creation timestamp and content fingerprint for a
// successfully admitted action. Fingerprints older than any duplicate window
// are garbage-collected on the way through.
func (s *GuardStore) RecordCreation(ctx context.Context, actorID string, action guard.Action, at time.Time, fingerprint string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	stamp := []byte(at.UTC().Format(time.RFC3339Nano))
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(BucketLastCreation).Put([]byte(actorID+keySep+string(action)), stamp); err != nil {
			return err
		}

		fb := tx.Bucket(BucketFingerprints)
		if err := fb.Put([]byte(actorID+keySep+string(action)+keySep+fingerprint), stamp); err != nil {
			return err
		}

		var stale [][]byte
		horizon := at.Add(-maxFingerprintAge)
		prefix := []byte(actorID + keySep + string(action) + keySep)
		c := fb.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			t, err := time.Parse(time.RFC3339Nano, string(v))
			if err != nil {
				continue
			}
			if t.Before(horizon) {
				stale = append(stale, append([]byte(nil), k...))
			}
		}
		for _, k := range stale {
			if err := fb.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}
