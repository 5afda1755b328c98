// Package verifycache implements the verification result cache described
// in SPEC_FULL.md: re-running `check` on a function whose source and
// contract text haven't changed since the last clean pass should
// short-circuit before basic-path extraction ever runs.
//
// The interface shape (Get/Put/Exists/Invalidate/Stats) is grounded on the
// teacher's own internal/build.Cache abstraction; unlike its in-memory and
// filesystem implementations, this one is backed by SQLite so the cache
// survives across CLI invocations.
package verifycache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Key is a content hash of one function's name and the source text its
// caller hashes for it (see HashKey).
type Key string

// HashKey derives a Key from functionName and sourceText exactly as given,
// with no normalization, so any textual change to sourceText invalidates
// the cache entry.
func HashKey(functionName, sourceText string) Key {
	h := sha256.New()
	h.Write([]byte(functionName))
	h.Write([]byte{0})
	h.Write([]byte(sourceText))
	return Key(hex.EncodeToString(h.Sum(nil)))
}

// Result is what gets cached for one function: not the full basic-path
// stream (that's cheap to regenerate once lowering is known to succeed),
// just whether it passed and, if not, a summary of why — a cache hit on a
// known-bad function still surfaces its stored diagnostic without
// re-running the pipeline.
type Result struct {
	OK        bool
	CheckedAt time.Time
	Message   string // diagnostic summary; empty when OK
}

// Stats mirrors the teacher's CacheStats, trimmed to what a hash-keyed
// verification cache actually tracks — there is no eviction policy here,
// so no Evictions field.
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int64
}

// Cache abstracts a Key -> Result store.
type Cache interface {
	Get(key Key) (Result, bool, error)
	Put(key Key, r Result) error
	Exists(key Key) bool
	Invalidate(key Key) error
	Clear() error
	Stats() Stats
	Close() error
}
