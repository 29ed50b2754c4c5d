package state

import (
	"time"

	"quiz-shorts-pipeline/faults"
)

const dayLayout = "2006-01-02"

// rateLimitState is the persisted record: the calendar day and how many
// publishes happened on it.
type rateLimitState struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// RateLimiter enforces the daily publish cap across process invocations.
// Days are UTC calendar days. A stored date other than today means an
// effective count of zero; storage is only mutated when a publish is
// actually recorded.
type RateLimiter struct {
	path      string
	maxPerDay int
}

// NewRateLimiter returns a limiter backed by the given file.
func NewRateLimiter(path string, maxPerDay int) *RateLimiter {
	return &RateLimiter{path: path, maxPerDay: maxPerDay}
}

// CanPublish reports whether another publish is allowed at now.
func (r *RateLimiter) CanPublish(now time.Time) (bool, error) {
	st, err := r.load()
	if err != nil {
		return false, err
	}
	if st.Date != dayKey(now) {
		return r.maxPerDay > 0, nil
	}
	return st.Count < r.maxPerDay, nil
}

// Remaining returns how many publishes are left today, never negative.
func (r *RateLimiter) Remaining(now time.Time) (int, error) {
	st, err := r.load()
	if err != nil {
		return 0, err
	}
	if st.Date != dayKey(now) {
		return r.maxPerDay, nil
	}
	left := r.maxPerDay - st.Count
	if left < 0 {
		left = 0
	}
	return left, nil
}

// RecordPublish performs the read-modify-write: reset the record if the
// stored day is not today, increment, persist atomically.
func (r *RateLimiter) RecordPublish(now time.Time) error {
	st, err := r.load()
	if err != nil {
		return err
	}
	key := dayKey(now)
	if st.Date != key {
		st = rateLimitState{Date: key}
	}
	if st.Count >= r.maxPerDay {
		return faults.Newf(faults.KindPersistence,
			"publish recorded beyond daily cap (%d/%d on %s)", st.Count, r.maxPerDay, key)
	}
	st.Count++
	return writeJSONAtomic(r.path, st)
}

func (r *RateLimiter) load() (rateLimitState, error) {
	var st rateLimitState
	if err := readJSON(r.path, &st); err != nil {
		return rateLimitState{}, err
	}
	return st, nil
}

func dayKey(now time.Time) string {
	return now.UTC().Format(dayLayout)
}
