// internal/vault/vault.go
//
// Vault client wrapper and secret-reference Source.
//
// Context
// -------
//   - Client wraps the HashiCorp Vault Go SDK with a KV-v2 read helper that
//     caches each secret for the lifetime of the client, so several keys in
//     one secret cost one request.
//   - Source decorates a config.Source.  Any value of the form
//     `vault:<mount>/<path>#<key>` is replaced by the secret it names
//     before the resolver coerces it.  Plain values pass through untouched.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(vault.Settings{Addr: addr, Token: tok})
//  2. src      := vault.NewSource(ctx, base, cli)
//  3. cfg, err := config.Load(src, config.DefaultOptions())
package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	vault "github.com/hashicorp/vault/api"

	"github.com/yanizio/chbot/internal/config"
)

// Prefix marks a value as a Vault reference.
const Prefix = "vault:"

var ErrBadReference = errors.New("vault reference must look like vault:<mount>/<path>#<key>")

//
// SECTION 1.  Client
//

// Settings override the SDK's VAULT_* environment handling when non-empty.
type Settings struct {
	Addr  string
	Token string
}

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	api *vault.Client

	mu      sync.Mutex
	secrets map[string]map[string]interface{} // secret path → data
}

// New builds a client from the SDK defaults (VAULT_ADDR, VAULT_TOKEN,
// ~/.vault-token) with s applied on top.
func New(s Settings) (*Client, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}
	if s.Addr != "" {
		cfg.Address = s.Addr
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if s.Token != "" {
		apiCli.SetToken(s.Token)
	}

	return &Client{api: apiCli, secrets: make(map[string]map[string]interface{})}, nil
}

// GetKV reads one key from a KV-v2 secret.
func (c *Client) GetKV(ctx context.Context, secretPath, key string) (string, error) {
	if secretPath == "" || key == "" {
		return "", ErrBadReference
	}

	data, err := c.secret(ctx, secretPath)
	if err != nil {
		return "", err
	}

	raw, ok := data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s#%s is not a string", secretPath, key)
	}
	return sval, nil
}

func (c *Client) secret(ctx context.Context, secretPath string) (map[string]interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if data, ok := c.secrets[secretPath]; ok {
		return data, nil
	}

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return nil, fmt.Errorf("vault get %s: %w", secretPath, err)
	}
	c.secrets[secretPath] = sec.Data
	return sec.Data, nil
}

//
// SECTION 2.  Source decorator
//

// KV is the subset of Client that Source needs.
type KV interface {
	GetKV(ctx context.Context, secretPath, key string) (string, error)
}

// Source resolves Vault references found in an underlying config.Source.
type Source struct {
	ctx  context.Context
	base config.Source
	kv   KV
}

var _ config.FallibleSource = (*Source)(nil)

func NewSource(ctx context.Context, base config.Source, kv KV) *Source {
	return &Source{ctx: ctx, base: base, kv: kv}
}

// Lookup reports a failed reference as absent.  The resolver calls LookupE,
// which surfaces the failure instead.
func (s *Source) Lookup(key string) (string, bool) {
	v, ok, err := s.LookupE(key)
	if err != nil {
		return "", false
	}
	return v, ok
}

func (s *Source) LookupE(key string) (string, bool, error) {
	raw, ok := s.base.Lookup(key)
	if !ok || !strings.HasPrefix(raw, Prefix) {
		return raw, ok, nil
	}

	path, field, err := ParseReference(raw)
	if err != nil {
		return "", true, err
	}
	val, err := s.kv.GetKV(s.ctx, path, field)
	if err != nil {
		return "", true, err
	}
	return val, true, nil
}

//
// SECTION 3.  Helpers
//

// ParseReference splits `vault:<mount>/<path>#<key>`.
func ParseReference(ref string) (secretPath, key string, err error) {
	body, ok := strings.CutPrefix(ref, Prefix)
	if !ok {
		return "", "", ErrBadReference
	}
	secretPath, key, ok = strings.Cut(body, "#")
	if !ok || key == "" {
		return "", "", ErrBadReference
	}
	if mount, rel := splitMount(secretPath); mount == "" || rel == "" {
		return "", "", ErrBadReference
	}
	return secretPath, key, nil
}

func splitMount(p string) (mount, rel string) {
	if p == "" {
		return "", ""
	}
	parts := strings.SplitN(p, "/", 2)
	mount = parts[0]
	if len(parts) == 2 {
		rel = parts[1]
	}
	return
}
