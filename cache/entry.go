package cache

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// State describes where an entry sits in its lifecycle relative to a
// point in time.
type State int

const (
	// StateFresh entries are served without invoking the handler.
	StateFresh State = iota

	// StateStale entries are served immediately while a background
	// refresh recomputes them.
	StateStale

	// StateDead entries are past their stale horizon and behave like a
	// miss; the store's TTL eviction removes them eventually.
	StateDead
)

// Entry is the envelope stored for every cached value. The freshness
// windows travel with the value so any store instance, local or shared,
// can classify the entry without extra metadata lookups.
type Entry struct {
	Value      []byte    `msgpack:"v"`
	StoredAt   time.Time `msgpack:"s"`
	FreshUntil time.Time `msgpack:"f"`
	StaleUntil time.Time `msgpack:"e"`
}

// newEntry builds an envelope for value stored at now.
// FreshUntil = now + freshTTL; StaleUntil = FreshUntil + swr.
func newEntry(value []byte, now time.Time, freshTTL, swr time.Duration) Entry {
	freshUntil := now.Add(freshTTL)
	return Entry{
		Value:      value,
		StoredAt:   now,
		FreshUntil: freshUntil,
		StaleUntil: freshUntil.Add(swr),
	}
}

// StateAt classifies the entry relative to now.
func (e Entry) StateAt(now time.Time) State {
	switch {
	case !now.After(e.FreshUntil):
		return StateFresh
	case !now.After(e.StaleUntil):
		return StateStale
	default:
		return StateDead
	}
}

// Lifetime is the duration from now until the entry is dead. Used as the
// store TTL so dead entries are garbage-collected without a sweeper.
func (e Entry) Lifetime(now time.Time) time.Duration {
	return e.StaleUntil.Sub(now)
}

func (e Entry) encode() ([]byte, error) {
	return msgpack.Marshal(e)
}

func decodeEntry(raw []byte) (Entry, error) {
	var e Entry
	if err := msgpack.Unmarshal(raw, &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}
