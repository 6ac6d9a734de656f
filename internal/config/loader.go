// internal/config/loader.go
//
// Configuration resolver.
//
/*
Context
--------
`Resolve()` turns a Source into one immutable `Config`:

  1. Walk the rule table.  For each row, look up the primary key, then any
     legacy keys (CH_NATIVE_PORT before CH_PORT).
  2. Absent keys take the row default.  BOT_TOKEN has none; absent or empty
     is fatal.
  3. Coerce the raw string.  The first failing key aborts resolution with a
     `*Error` naming the key, the kind, and the raw value.
  4. Run the validator backstop.

`Load()` wraps Resolve for process bootstrap: it caches the result in an
`atomic.Pointer` for lock-free `Get()` and logs the non-secret highlights.
There is no reload; the configuration is fixed at startup.

Instrumentation
---------------
  • DEBUG spans: defaulted keys, legacy-key fallbacks.
  • ERROR spans: rejected keys (key and kind only, never secrets).
  • INFO span: final “config resolved” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed.
*/
package config

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var current atomic.Pointer[Config]

/*─────────────────────────────── resolver ─────────────────────────────────*/

// Resolve builds a Config from src.  Zero fields in opts take the build
// defaults.  Calling Resolve twice on an unchanged source yields equal
// configs.
func Resolve(src Source, opts Options) (*Config, error) {
	opts = opts.normalize()
	log := zap.S()

	var c Config
	for _, r := range rules {
		if !r.applies(opts.Schema) {
			continue
		}

		key, raw, ok, err := r.find(src)
		if err != nil {
			e := &Error{Key: key, Kind: KindMalformed, Err: err, secret: r.secret}
			log.Errorw("config key lookup failed", "key", key, "err", err)
			return nil, e
		}

		// An empty required value counts as missing.
		if r.required && (!ok || raw == "") {
			log.Errorw("config key missing", "key", r.key)
			return nil, &Error{Key: r.key, Kind: KindMissingRequired}
		}
		if !ok {
			raw = r.def
			shown := r.def
			if r.secret {
				shown = "<redacted>"
			}
			log.Debugw("config key defaulted", "key", r.key, "default", shown)
		}

		if err := r.set(&c, raw, opts); err != nil {
			e := &Error{Key: key, Kind: kindOf(err), Raw: raw, Err: err, secret: r.secret}
			log.Errorw("config key rejected", "key", key, "reason", e.Kind.String())
			return nil, e
		}
	}

	if err := validateStruct(&c); err != nil {
		log.Errorw("config validation failed", "err", err)
		return nil, err
	}
	return &c, nil
}

// find returns the key that supplied the value; when every candidate is
// absent it returns the primary key.
func (r rule) find(src Source) (key, raw string, ok bool, err error) {
	for i, k := range append([]string{r.key}, r.legacy...) {
		raw, ok, err = lookup(src, k)
		if err != nil || ok {
			if ok && i > 0 {
				zap.S().Debugw("config legacy key used", "key", k, "instead_of", r.key)
			}
			return k, raw, ok, err
		}
	}
	return r.key, "", false, nil
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load resolves src, caches the result for Get, and logs highlights.
func Load(src Source, opts Options) (*Config, error) {
	opts = opts.normalize()
	cfg, err := Resolve(src, opts)
	if err != nil {
		return nil, err
	}

	current.Store(cfg)
	zap.S().Infow("config resolved",
		"schema", opts.Schema.String(),
		"bool_policy", opts.BoolPolicy.String(),
		"dsn", cfg.RedactedDSN(),
		"blocked_file", cfg.BlockedFile,
		"db_queue_maxsize", cfg.DBQueueMaxSize,
		"query_timeout", cfg.QueryTimeoutDuration().String(),
	)
	return cfg, nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// Get returns the config cached by the last successful Load, or nil.
func Get() *Config { return current.Load() }
