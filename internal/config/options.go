// internal/config/options.go
//
// Deployment-time resolver options.
//
// Context
// -------
// Two choices are fixed per deployment, never per call site:
//
//   - Schema.  v1 recognises CH_COMPRESSION, v2 recognises
//     CH_INSECURE_SKIP_VERIFY.  The two keys never coexist.
//   - BoolPolicy.  permissive accepts "1" or any casing of "true" as true
//     and everything else as false.  strict accepts only "true" or "false".
//
// Both default from string variables that release builds set with
//
//	go build -ldflags "-X github.com/yanizio/chbot/internal/config.schemaName=v1"
package config

import "fmt"

// Schema selects the revision of the recognised key set.
type Schema int

const (
	SchemaCompression Schema = iota + 1 // v1: CH_COMPRESSION
	SchemaSkipVerify                    // v2: CH_INSECURE_SKIP_VERIFY
)

func (s Schema) String() string {
	switch s {
	case SchemaCompression:
		return "v1"
	case SchemaSkipVerify:
		return "v2"
	}
	return fmt.Sprintf("Schema(%d)", int(s))
}

// ParseSchema accepts "v1"/"compression" and "v2"/"skip_verify".
func ParseSchema(s string) (Schema, error) {
	switch s {
	case "v1", "compression":
		return SchemaCompression, nil
	case "v2", "skip_verify":
		return SchemaSkipVerify, nil
	}
	return 0, fmt.Errorf("unknown config schema %q", s)
}

// BoolPolicy selects how boolean keys are coerced.
type BoolPolicy int

const (
	BoolPermissive BoolPolicy = iota + 1
	BoolStrict
)

func (p BoolPolicy) String() string {
	switch p {
	case BoolPermissive:
		return "permissive"
	case BoolStrict:
		return "strict"
	}
	return fmt.Sprintf("BoolPolicy(%d)", int(p))
}

func ParseBoolPolicy(s string) (BoolPolicy, error) {
	switch s {
	case "permissive":
		return BoolPermissive, nil
	case "strict":
		return BoolStrict, nil
	}
	return 0, fmt.Errorf("unknown bool policy %q", s)
}

// Overridden at link time.
var (
	schemaName     = "v2"
	boolPolicyName = "permissive"
)

// Options fixes the schema revision and boolean policy for one Resolve.
type Options struct {
	Schema     Schema
	BoolPolicy BoolPolicy
}

// DefaultOptions returns the build-time defaults.  A bad -X value is a
// build error, so it panics.
func DefaultOptions() Options {
	s, err := ParseSchema(schemaName)
	if err != nil {
		panic(err)
	}
	p, err := ParseBoolPolicy(boolPolicyName)
	if err != nil {
		panic(err)
	}
	return Options{Schema: s, BoolPolicy: p}
}

// normalize fills zero fields from DefaultOptions.
func (o Options) normalize() Options {
	if o.Schema == 0 || o.BoolPolicy == 0 {
		d := DefaultOptions()
		if o.Schema == 0 {
			o.Schema = d.Schema
		}
		if o.BoolPolicy == 0 {
			o.BoolPolicy = d.BoolPolicy
		}
	}
	return o
}
