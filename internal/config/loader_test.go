// internal/config/loader_test.go
//
// Unit-tests for Resolve and Load.
//
// Context
// -------
// Every case feeds a MapSource, so nothing here reads or mutates the real
// process environment.  The cases cover defaults, the legacy port key,
// both schema variants, both boolean policies, and the error taxonomy.

package config

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var (
	v1Permissive = Options{Schema: SchemaCompression, BoolPolicy: BoolPermissive}
	v2Permissive = Options{Schema: SchemaSkipVerify, BoolPolicy: BoolPermissive}
	v2Strict     = Options{Schema: SchemaSkipVerify, BoolPolicy: BoolStrict}
)

func TestResolve_Defaults(t *testing.T) {
	cfg, err := Resolve(MapSource{"BOT_TOKEN": "123:abc"}, v2Permissive)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.BotToken)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, uint16(9000), cfg.NativePort)
	assert.False(t, cfg.Secure)
	assert.Equal(t, SkipVerify{Insecure: false}, cfg.Variant)
	assert.Equal(t, "default", cfg.User)
	assert.Equal(t, "test", cfg.Password)
	assert.Equal(t, "default", cfg.Database)
	assert.Equal(t, "blocked.txt", cfg.BlockedFile)
	assert.Equal(t, uint(100), cfg.DBQueueMaxSize)
	assert.Equal(t, uint64(30), cfg.QueryTimeout)
}

func TestResolve_DefaultsSchemaV1(t *testing.T) {
	cfg, err := Resolve(MapSource{"BOT_TOKEN": "t", "CH_INSECURE_SKIP_VERIFY": "true"}, v1Permissive)
	require.NoError(t, err)

	enabled, ok := cfg.Compression()
	assert.True(t, ok)
	assert.True(t, enabled)

	_, ok = cfg.InsecureSkipVerify()
	assert.False(t, ok, "v2 key must be ignored under v1")
}

func TestResolve_MissingBotToken(t *testing.T) {
	cases := map[string]MapSource{
		"absent":           {},
		"empty":            {"BOT_TOKEN": ""},
		"others malformed": {"CH_NATIVE_PORT": "nope", "QUERY_TIMEOUT": "-1"},
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := Resolve(src, v2Permissive)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, ErrMissingRequired)

			var ce *Error
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, "BOT_TOKEN", ce.Key)
			assert.Equal(t, KindMissingRequired, ce.Kind)
		})
	}
}

func TestResolve_PortKeys(t *testing.T) {
	tests := []struct {
		name string
		src  MapSource
		want uint16
	}{
		{"new key wins", MapSource{"CH_NATIVE_PORT": "1234", "CH_PORT": "9999"}, 1234},
		{"legacy fallback", MapSource{"CH_PORT": "9999"}, 9999},
		{"neither", MapSource{}, 9000},
		{"upper bound", MapSource{"CH_NATIVE_PORT": "65535"}, 65535},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.src["BOT_TOKEN"] = "t"
			cfg, err := Resolve(tt.src, v2Permissive)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.NativePort)
		})
	}
}

func TestResolve_CoercionFailures(t *testing.T) {
	tests := []struct {
		name    string
		src     MapSource
		opts    Options
		key     string
		kind    Kind
		wantErr error
	}{
		{"port overflow", MapSource{"CH_NATIVE_PORT": "65536"}, v2Permissive,
			"CH_NATIVE_PORT", KindOutOfRange, ErrOutOfRange},
		{"legacy port reported", MapSource{"CH_PORT": "x"}, v2Permissive,
			"CH_PORT", KindMalformed, ErrMalformed},
		{"queue overflow", MapSource{"DB_QUEUE_MAXSIZE": "99999999999999999999"}, v2Permissive,
			"DB_QUEUE_MAXSIZE", KindOutOfRange, ErrOutOfRange},
		{"negative timeout", MapSource{"QUERY_TIMEOUT": "-5"}, v2Permissive,
			"QUERY_TIMEOUT", KindMalformed, ErrMalformed},
		{"empty timeout", MapSource{"QUERY_TIMEOUT": ""}, v2Permissive,
			"QUERY_TIMEOUT", KindMalformed, ErrMalformed},
		{"strict bool", MapSource{"CH_SECURE": "yes"}, v2Strict,
			"CH_SECURE", KindMalformed, ErrMalformed},
		{"strict bool casing", MapSource{"CH_INSECURE_SKIP_VERIFY": "TRUE"}, v2Strict,
			"CH_INSECURE_SKIP_VERIFY", KindMalformed, ErrMalformed},
		{"strict bool v1", MapSource{"CH_COMPRESSION": "yes"},
			Options{Schema: SchemaCompression, BoolPolicy: BoolStrict},
			"CH_COMPRESSION", KindMalformed, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.src["BOT_TOKEN"] = "t"
			_, err := Resolve(tt.src, tt.opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var ce *Error
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.key, ce.Key)
			assert.Equal(t, tt.kind, ce.Kind)
			assert.Equal(t, tt.src[tt.key], ce.Raw)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestResolve_PermissiveBools(t *testing.T) {
	for raw, want := range map[string]bool{
		"1": true, "true": true, "TRUE": true, "True": true,
		"0": false, "false": false, "yes": false, "": false, " true": false,
	} {
		cfg, err := Resolve(MapSource{"BOT_TOKEN": "t", "CH_SECURE": raw}, v2Permissive)
		require.NoError(t, err, raw)
		assert.Equal(t, want, cfg.Secure, "CH_SECURE=%q", raw)
	}
}

func TestResolve_StrictBools(t *testing.T) {
	for raw, want := range map[string]bool{"true": true, "false": false} {
		cfg, err := Resolve(MapSource{"BOT_TOKEN": "t", "CH_SECURE": raw}, v2Strict)
		require.NoError(t, err, raw)
		assert.Equal(t, want, cfg.Secure)
	}
}

func TestResolve_EmptyOptionalStringKept(t *testing.T) {
	cfg, err := Resolve(MapSource{"BOT_TOKEN": "t", "CH_PASSWORD": ""}, v2Permissive)
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Password)
}

func TestResolve_Idempotent(t *testing.T) {
	src := MapSource{"BOT_TOKEN": "t", "CH_HOST": "ch.internal", "CH_SECURE": "1"}
	a, err := Resolve(src, v2Permissive)
	require.NoError(t, err)
	b, err := Resolve(src, v2Permissive)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotSame(t, a, b)
}

func TestError_RedactsSecrets(t *testing.T) {
	err := &Error{Key: "CH_PASSWORD", Kind: KindMalformed, Raw: "hunter2", secret: true}
	assert.NotContains(t, err.Error(), "hunter2")
	assert.Contains(t, err.Error(), "CH_PASSWORD")
}

func TestError_OutOfRangeMessage(t *testing.T) {
	_, err := Resolve(MapSource{"BOT_TOKEN": "t", "DB_QUEUE_MAXSIZE": "99999999999999999999"}, v2Permissive)
	require.Error(t, err)
	assert.Equal(t, `config: DB_QUEUE_MAXSIZE="99999999999999999999": value out of range`, err.Error())
}

func TestResolve_DoesNotLogSecrets(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := zap.L()
	zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	_, err := Load(MapSource{"BOT_TOKEN": "tok-123"}, v2Permissive)
	require.NoError(t, err)
	require.NotZero(t, logs.Len())

	for _, entry := range logs.All() {
		for k, v := range entry.ContextMap() {
			s := fmt.Sprint(v)
			assert.NotContains(t, s, "tok-123", "%s: field %s", entry.Message, k)
			if k == "default" || k == "dsn" {
				assert.False(t, s == "test" || strings.Contains(s, ":test@"),
					"%s: field %s leaks the password: %s", entry.Message, k, s)
			}
		}
	}
}

func TestValidate_NilVariant(t *testing.T) {
	cfg := &Config{BotToken: "t"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingRequired)
}

func TestLoad_CachesConfig(t *testing.T) {
	cfg, err := Load(MapSource{"BOT_TOKEN": "t"}, v2Permissive)
	require.NoError(t, err)
	assert.Same(t, cfg, Get())
}

func TestParseOptions(t *testing.T) {
	s, err := ParseSchema("compression")
	require.NoError(t, err)
	assert.Equal(t, SchemaCompression, s)

	_, err = ParseSchema("v3")
	assert.Error(t, err)

	p, err := ParseBoolPolicy("strict")
	require.NoError(t, err)
	assert.Equal(t, BoolStrict, p)

	assert.Equal(t, Options{Schema: SchemaSkipVerify, BoolPolicy: BoolPermissive}, DefaultOptions())
	assert.Equal(t, DefaultOptions(), Options{}.normalize())
}
