// internal/config/model.go
//
// Typed configuration model.
//
// Context
// -------
// Config is built once by Resolve and then shared read-only for the life
// of the process.  Nothing in this package mutates a Config after Resolve
// returns it, so concurrent readers (queue workers, query runners) need no
// locking.
//
// The TLS/compression flag is not a plain field.  It lives in Variant,
// which holds exactly one of Compression (schema v1) or SkipVerify
// (schema v2), so a deployment can never carry both flags at once.
//
// Notes
// -----
//   - `env` tags name the source key and double as field names in
//     validation errors.
//   - NativePort is uint16; out-of-range ports fail resolution rather
//     than wrap.
package config

import "time"

//
// Schema variants
//

// Variant is the schema-specific ClickHouse flag.
type Variant interface {
	Schema() Schema
}

// Compression is the v1 variant (CH_COMPRESSION).
type Compression struct {
	Enabled bool
}

func (Compression) Schema() Schema { return SchemaCompression }

// SkipVerify is the v2 variant (CH_INSECURE_SKIP_VERIFY).
type SkipVerify struct {
	Insecure bool
}

func (SkipVerify) Schema() Schema { return SchemaSkipVerify }

//
// Root aggregate
//

// Config is the resolved, immutable configuration.
type Config struct {
	BotToken string `env:"BOT_TOKEN" validate:"required"`

	Host       string  `env:"CH_HOST"`
	NativePort uint16  `env:"CH_NATIVE_PORT"`
	Secure     bool    `env:"CH_SECURE"`
	Variant    Variant `env:"-" validate:"required"`
	User       string  `env:"CH_USER"`
	Password   string  `env:"CH_PASSWORD"`
	Database   string  `env:"CH_DATABASE"`

	BlockedFile string `env:"BLOCKED_FILE"`

	DBQueueMaxSize uint   `env:"DB_QUEUE_MAXSIZE"`
	QueryTimeout   uint64 `env:"QUERY_TIMEOUT"` // seconds
}

// Compression reports the v1 flag; ok is false under schema v2.
func (c *Config) Compression() (enabled, ok bool) {
	v, ok := c.Variant.(Compression)
	return v.Enabled, ok
}

// InsecureSkipVerify reports the v2 flag; ok is false under schema v1.
func (c *Config) InsecureSkipVerify() (insecure, ok bool) {
	v, ok := c.Variant.(SkipVerify)
	return v.Insecure, ok
}

// QueryTimeoutDuration converts QueryTimeout to a time.Duration.
func (c *Config) QueryTimeoutDuration() time.Duration {
	return time.Duration(c.QueryTimeout) * time.Second
}
