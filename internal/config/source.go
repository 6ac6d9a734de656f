// internal/config/source.go
//
// Key-value sources consumed by Resolve.
//
// Context
// -------
// The resolver never calls os.Getenv directly.  It asks a Source, which
// lets tests hand in a plain map and lets the bootstrap layer stack a
// `.env` file, the process environment, and Vault references behind one
// lookup.  Key matching is case-sensitive in every implementation.
package config

import "os"

// Source looks up a raw string by key.  ok is false when the key is absent;
// a present-but-empty value returns ("", true).
type Source interface {
	Lookup(key string) (value string, ok bool)
}

// FallibleSource is a Source whose lookups can fail, e.g. because a value
// is a reference that must be fetched elsewhere.  Resolve prefers LookupE
// when a source implements it.
type FallibleSource interface {
	Source
	LookupE(key string) (value string, ok bool, err error)
}

// MapSource is a hermetic in-memory Source.
type MapSource map[string]string

func (m MapSource) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// EnvSource reads the live process environment.
type EnvSource struct{}

func (EnvSource) Lookup(key string) (string, bool) { return os.LookupEnv(key) }

// lookup dispatches to LookupE when available.
func lookup(src Source, key string) (string, bool, error) {
	if fs, ok := src.(FallibleSource); ok {
		return fs.LookupE(key)
	}
	v, ok := src.Lookup(key)
	return v, ok, nil
}
