// internal/config/dsn.go
//
// ClickHouse native-protocol DSN rendering.
//
// Context
// -------
// The DSN has the shape
//
//	{scheme}://{user}:{password}@{host}:{port}/{database}[?skip_verify=true]
//
// with scheme `tcp+tls` when CH_SECURE is set and `tcp` otherwise.  The
// query suffix appears only when the connection is secure AND the v2
// skip-verify flag is on; v1 configs never carry one.
//
// User, password, and database are percent-encoded, so credentials that
// contain `:`, `@`, or `/` still round-trip through url.Parse.  Plain
// values render byte-for-byte in the form above.
package config

import (
	"net"
	"net/url"
	"strconv"
)

// DSN renders the connection string.  It never fails; c is assumed to
// come from Resolve.
func (c *Config) DSN() string {
	u := c.dsnURL()
	return u.String()
}

// RedactedDSN is DSN with the password replaced by "xxxxx".
func (c *Config) RedactedDSN() string {
	u := c.dsnURL()
	return u.Redacted()
}

func (c *Config) dsnURL() *url.URL {
	scheme := "tcp"
	if c.Secure {
		scheme = "tcp+tls"
	}

	u := &url.URL{
		Scheme:  scheme,
		User:    url.UserPassword(c.User, c.Password),
		Host:    net.JoinHostPort(c.Host, strconv.FormatUint(uint64(c.NativePort), 10)),
		Path:    "/" + c.Database,
		RawPath: "/" + url.PathEscape(c.Database),
	}
	if insecure, _ := c.InsecureSkipVerify(); c.Secure && insecure {
		u.RawQuery = "skip_verify=true"
	}
	return u
}
