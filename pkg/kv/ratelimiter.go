package kv

import (
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"github.com/starskey-io/starskey"
)

type bucket struct {
	Attempts  int       `json:"attempts"`
	ResetTime time.Time `json:"reset_time"`
}

// RateLimiterStore is a per-client rate limiter backed by a Starskey KV
// database, so counters survive restarts. It implements echo's
// middleware.RateLimiterStore interface.
type RateLimiterStore struct {
	db        *starskey.Starskey
	rate      float64 // tokens refilled per second
	burst     int
	expiresIn time.Duration
}

// NewRateLimiterStore opens (or creates) the Starskey database at dbPath.
func NewRateLimiterStore(dbPath string, rate float64, burst int, expiresIn time.Duration) (*RateLimiterStore, error) {
	db, err := starskey.Open(&starskey.Config{
		Permission:        0755,
		Directory:         dbPath,
		FlushThreshold:    8 * 1024 * 1024,
		MaxLevel:          3,
		SizeFactor:        10,
		BloomFilter:       true,
		SuRF:              false,
		Logging:           false,
		Compression:       true,
		CompressionOption: starskey.SnappyCompression,
	})
	if err != nil {
		return nil, err
	}

	log.Info("Initialized rate limiter with Starskey backend",
		"path", dbPath,
		"rate", rate,
		"burst", burst,
		"expiration", expiresIn)

	return &RateLimiterStore{
		db:        db,
		rate:      rate,
		burst:     burst,
		expiresIn: expiresIn,
	}, nil
}

// Allow reports whether the client identified by identifier may proceed.
func (s *RateLimiterStore) Allow(identifier string) (bool, error) {
	var allowed bool

	err := s.db.Update(func(txn *starskey.Txn) error {
		now := time.Now()
		key := []byte(identifier)

		info := bucket{Attempts: 0, ResetTime: now}

		value, err := txn.Get(key)
		if err == nil && value != nil {
			if err := json.Unmarshal(value, &info); err != nil {
				// Corrupted entry, start over
				info = bucket{Attempts: 0, ResetTime: now}
			}

			if now.After(info.ResetTime.Add(s.expiresIn)) {
				info.Attempts = 0
				info.ResetTime = now
			} else {
				// Refill according to elapsed time
				refill := int(now.Sub(info.ResetTime).Seconds() * s.rate)
				if refill > 0 {
					info.Attempts = max(0, info.Attempts-refill)
					info.ResetTime = now
				}
			}
		}

		if info.Attempts >= s.burst {
			log.Debug("Request blocked (rate limited)", "client", identifier, "attempts", info.Attempts)
			allowed = false
			return nil
		}

		info.Attempts++
		allowed = true

		data, err := json.Marshal(info)
		if err != nil {
			return err
		}
		txn.Put(key, data)
		return nil
	})

	return allowed, err
}

// Reset clears the counter for identifier.
func (s *RateLimiterStore) Reset(identifier string) error {
	return s.db.Delete([]byte(identifier))
}

func (s *RateLimiterStore) Close() error {
	return s.db.Close()
}
