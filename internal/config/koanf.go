// internal/config/koanf.go
//
// Koanf-backed Source: optional `.env` file overlaid by the environment.
//
// Context
// -------
// NewKoanfSource builds one flat Koanf tree from two layers (highest
// precedence last):
//
//  1. Optional `.env` file, read with the file provider and parsed by
//     godotenv.  Missing, unreadable, or unparsable files are skipped.
//  2. The process environment, unprefixed.
//
// The environment wins over the file, which is the same rule dotenv loaders
// apply when they refuse to override variables that are already set.  The
// process environment itself is never modified, so building the source
// twice yields the same tree.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// KoanfSource is a read-only Source over a merged Koanf tree.
type KoanfSource struct {
	k *koanf.Koanf
}

// NewKoanfSource loads envFile (may be "") and then the process
// environment.  Only the environment layer can return an error.
func NewKoanfSource(envFile string) (*KoanfSource, error) {
	k := koanf.New(".")

	if envFile != "" {
		if err := k.Load(file.Provider(envFile), dotenvParser{}); err != nil {
			zap.S().Debugw("dotenv file skipped", "file", envFile, "err", err)
		} else {
			zap.S().Debugw("dotenv file loaded", "file", envFile, "keys", len(k.Keys()))
		}
	}

	identity := func(s string) string { return s }
	if err := k.Load(env.Provider("", ".", identity), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, fmt.Errorf("env overlay: %w", err)
	}
	return &KoanfSource{k: k}, nil
}

// Lookup returns leaf string values only; a key that names a subtree
// reports absent.
func (s *KoanfSource) Lookup(key string) (string, bool) {
	if !s.k.Exists(key) {
		return "", false
	}
	v, ok := s.k.Get(key).(string)
	return v, ok
}

/*──────────────────────────── dotenv parser ────────────────────────────────*/

// dotenvParser adapts godotenv to koanf.Parser.
type dotenvParser struct{}

func (dotenvParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	kv, err := godotenv.UnmarshalBytes(b)
	if err != nil {
		return nil, err
	}
	out := make(map[string]interface{}, len(kv))
	for k, v := range kv {
		out[k] = v
	}
	return out, nil
}

func (dotenvParser) Marshal(m map[string]interface{}) ([]byte, error) {
	kv := make(map[string]string, len(m))
	for k, v := range m {
		kv[k] = fmt.Sprint(v)
	}
	s, err := godotenv.Marshal(kv)
	return []byte(s), err
}
