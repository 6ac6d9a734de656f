// internal/config/rules.go
//
// Per-key coercion table.
//
// Context
// -------
// Every recognised key is one row: primary key, legacy fallbacks, default,
// coercion, and the schema it belongs to.  Resolve walks the rows in order
// and stops at the first failure, so BOT_TOKEN sits first and a missing
// token is always the reported error.  Adding a key means adding a row.
package config

import (
	"errors"
	"strconv"
	"strings"
)

type setter func(c *Config, raw string, o Options) error

type rule struct {
	key      string
	legacy   []string // consulted in order when key is absent
	def      string
	required bool   // absent (or empty) is KindMissingRequired
	secret   bool   // raw value never logged or printed
	schema   Schema // 0: every schema
	set      setter
}

var rules = []rule{
	{key: "BOT_TOKEN", required: true, secret: true,
		set: str(func(c *Config) *string { return &c.BotToken })},

	{key: "CH_HOST", def: "localhost",
		set: str(func(c *Config) *string { return &c.Host })},
	{key: "CH_NATIVE_PORT", legacy: []string{"CH_PORT"}, def: "9000",
		set: unsigned(16, func(c *Config, n uint64) { c.NativePort = uint16(n) })},
	{key: "CH_SECURE", def: "false",
		set: boolean(func(c *Config, b bool) { c.Secure = b })},
	{key: "CH_COMPRESSION", def: "true", schema: SchemaCompression,
		set: boolean(func(c *Config, b bool) { c.Variant = Compression{Enabled: b} })},
	{key: "CH_INSECURE_SKIP_VERIFY", def: "false", schema: SchemaSkipVerify,
		set: boolean(func(c *Config, b bool) { c.Variant = SkipVerify{Insecure: b} })},
	{key: "CH_USER", def: "default",
		set: str(func(c *Config) *string { return &c.User })},
	{key: "CH_PASSWORD", def: "test", secret: true,
		set: str(func(c *Config) *string { return &c.Password })},
	{key: "CH_DATABASE", def: "default",
		set: str(func(c *Config) *string { return &c.Database })},

	{key: "BLOCKED_FILE", def: "blocked.txt",
		set: str(func(c *Config) *string { return &c.BlockedFile })},

	{key: "DB_QUEUE_MAXSIZE", def: "100",
		set: unsigned(strconv.IntSize, func(c *Config, n uint64) { c.DBQueueMaxSize = uint(n) })},
	{key: "QUERY_TIMEOUT", def: "30",
		set: unsigned(64, func(c *Config, n uint64) { c.QueryTimeout = n })},
}

// applies reports whether the row is part of schema s.
func (r rule) applies(s Schema) bool { return r.schema == 0 || r.schema == s }

/*──────────────────────────── coercions ───────────────────────────────────*/

var errBoolLiteral = errors.New(`want "true" or "false"`)

func str(dst func(*Config) *string) setter {
	return func(c *Config, raw string, _ Options) error {
		*dst(c) = raw
		return nil
	}
}

func boolean(dst func(*Config, bool)) setter {
	return func(c *Config, raw string, o Options) error {
		b, err := parseBool(raw, o.BoolPolicy)
		if err != nil {
			return err
		}
		dst(c, b)
		return nil
	}
}

func unsigned(bits int, dst func(*Config, uint64)) setter {
	return func(c *Config, raw string, _ Options) error {
		n, err := parseUint(raw, bits)
		if err != nil {
			return err
		}
		dst(c, n)
		return nil
	}
}

// parseBool never fails under BoolPermissive.
func parseBool(raw string, p BoolPolicy) (bool, error) {
	if p == BoolStrict {
		switch raw {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return false, errBoolLiteral
	}
	return raw == "1" || strings.EqualFold(raw, "true"), nil
}

// parseUint accepts base-10 digits only.  The returned error is
// strconv.ErrRange or strconv.ErrSyntax so the raw value is not repeated.
func parseUint(raw string, bits int) (uint64, error) {
	n, err := strconv.ParseUint(raw, 10, bits)
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return 0, ne.Err
	}
	return n, err
}

// kindOf maps a coercion error to the taxonomy.
func kindOf(err error) Kind {
	if errors.Is(err, strconv.ErrRange) {
		return KindOutOfRange
	}
	return KindMalformed
}
