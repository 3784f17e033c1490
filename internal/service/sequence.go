package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SequenceStore allocates per-day order counters.
// Satisfied by *database.Queries.
type SequenceStore interface {
	AllocateDailySequence(ctx context.Context, dateKey string) (int32, error)
}

// DateKey returns the YYYYMMDD key of t in the canteen's local time.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("20060102")
}

// FormatOrderNumber renders a counter as a display order number, e.g. "PES-7".
func FormatOrderNumber(prefix string, counter int32) string {
	return prefix + strconv.FormatInt(int64(counter), 10)
}

// OrderNumberSuffix extracts the numeric part after the last '-'.
// Returns 0 when there is no parsable suffix.
func OrderNumberSuffix(number string) int {
	s := number
	if i := strings.LastIndex(number, "-"); i >= 0 {
		s = number[i+1:]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Allocate returns the next counter for dateKey. The increment is a single
// upsert, so the store must run it inside the caller's transaction for the
// counter to be released on rollback.
func Allocate(ctx context.Context, store SequenceStore, dateKey string) (int32, error) {
	counter, err := store.AllocateDailySequence(ctx, dateKey)
	if err != nil {
		return 0, fmt.Errorf("allocate sequence %s: %w", dateKey, err)
	}
	if counter < 1 {
		return 0, fmt.Errorf("allocate sequence %s: invalid counter %d", dateKey, counter)
	}
	return counter, nil
}
