package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	eventClaimPrefix  = "stripe:webhook:event:"
	eventFailuresKey  = "stripe:webhook:failures"
	eventClaimTTL     = 72 * time.Hour
	maxFailureRecords = 100
)

// EventLedger de-duplicates webhook deliveries and keeps a short history of
// events whose processing failed.
type EventLedger interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
	RecordFailure(ctx context.Context, eventID, eventType string, cause error) error
}

type FailureRecord struct {
	EventID   string    `json:"eventId"`
	EventType string    `json:"eventType"`
	Error     string    `json:"error"`
	At        time.Time `json:"at"`
}

type RedisEventLedger struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisEventLedger(rdb *redis.Client) *RedisEventLedger {
	return &RedisEventLedger{rdb: rdb, now: time.Now}
}

func (l *RedisEventLedger) Claim(ctx context.Context, eventID string) (bool, error) {
	return l.rdb.SetNX(ctx, eventClaimPrefix+eventID, "1", eventClaimTTL).Result()
}

func (l *RedisEventLedger) Release(ctx context.Context, eventID string) error {
	return l.rdb.Del(ctx, eventClaimPrefix+eventID).Err()
}

func (l *RedisEventLedger) RecordFailure(ctx context.Context, eventID, eventType string, cause error) error {
	rec := FailureRecord{EventID: eventID, EventType: eventType, At: l.now().UTC()}
	if cause != nil {
		rec.Error = cause.Error()
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := l.rdb.LPush(ctx, eventFailuresKey, string(b)).Err(); err != nil {
		return err
	}
	return l.rdb.LTrim(ctx, eventFailuresKey, 0, maxFailureRecords-1).Err()
}

// RecentFailures returns the newest failure records first.
func (l *RedisEventLedger) RecentFailures(ctx context.Context, limit int64) ([]FailureRecord, error) {
	raw, err := l.rdb.LRange(ctx, eventFailuresKey, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]FailureRecord, 0, len(raw))
	for _, s := range raw {
		var rec FailureRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// NopEventLedger lets every delivery through. Status writes are idempotent so
// duplicates are harmless without Redis.
type NopEventLedger struct{}

func (NopEventLedger) Claim(context.Context, string) (bool, error)                { return true, nil }
func (NopEventLedger) Release(context.Context, string) error                      { return nil }
func (NopEventLedger) RecordFailure(context.Context, string, string, error) error { return nil }
