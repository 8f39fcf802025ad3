package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Cached values here are read optimizations only. The occupancy ledger
// recomputes dormitory counters from occupancy rows inside its
// transactions; the cache is invalidated on every mutation and repopulated
// lazily by the query surface.
const (
	DormitoryKeyPrefix   = "dormitory:%d"
	VacancyBoardKey      = "dormitories:board"
	ReservationKeyPrefix = "reservation:%s:%d"
)

const (
	DormitoryTTL    = 5 * time.Minute
	VacancyBoardTTL = 30 * time.Second
	ReservationTTL  = 5 * time.Minute
)

func DormitoryKey(dormitoryID uint) string {
	return fmt.Sprintf(DormitoryKeyPrefix, dormitoryID)
}

func ReservationKey(kind string, id uint) string {
	return fmt.Sprintf(ReservationKeyPrefix, kind, id)
}

// GetJSON loads a cached value into dest. Returns false on miss, unmarshal
// failure or when Redis is unavailable; callers always fall back to the
// database.
func GetJSON(ctx context.Context, key string, dest interface{}) bool {
	if client == nil {
		return false
	}
	raw, err := client.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), dest) == nil
}

// SetJSON stores a value with a TTL. Failures are ignored.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	client.Set(ctx, key, raw, ttl)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateDormitory drops the dormitory snapshot and the shared vacancy board.
func InvalidateDormitory(ctx context.Context, dormitoryID uint) {
	Invalidate(ctx, DormitoryKey(dormitoryID))
	Invalidate(ctx, VacancyBoardKey)
}

func InvalidateReservation(ctx context.Context, kind string, id uint) {
	Invalidate(ctx, ReservationKey(kind, id))
}
