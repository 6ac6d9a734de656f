// cmd/chconfig/main.go
//
// chconfig – resolve bot configuration and print the ClickHouse DSN.
//
// Start-up sequence
// -----------------
//
//  1. Start the logger (file sink when -log-dir is set, console tee in a TTY).
//
//  2. Build the key-value source: optional .env file overlaid by the
//     process environment.
//
//  3. When VAULT_ADDR is present, wrap the source so `vault:` references
//     are fetched from Vault.
//
//  4. Resolve once.  On failure, print the offending key and reason and
//     exit 2.  On success, print the DSN (password redacted unless
//     -reveal).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/yanizio/chbot/internal/config"
	"github.com/yanizio/chbot/internal/logger"
	"github.com/yanizio/chbot/internal/vault"
)

func main() {
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the environment (optional)")
	reveal := flag.Bool("reveal", false, "print the DSN with the password")
	logDir := flag.String("log-dir", "", "directory for daily JSON logs (empty: console only)")
	logLevel := flag.String("log-level", "info", "debug, info, warn, or error")
	flag.Parse()

	logOut, err := logger.New(logger.Options{
		Dir:   *logDir,
		Tee:   logger.RunningInTTY(),
		Level: *logLevel,
	})
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := resolve(ctx, *envFile)
	if err != nil {
		var ce *config.Error
		if errors.As(err, &ce) {
			fmt.Fprintf(os.Stderr, "invalid configuration: key %s is %s\n", ce.Key, ce.Kind)
		}
		fmt.Fprintln(os.Stderr, err)
		_ = logOut.Sync()
		os.Exit(2)
	}

	if *reveal {
		fmt.Println(cfg.DSN())
		return
	}
	fmt.Println(cfg.RedactedDSN())
}

// resolve wires the source stack and loads the config.
func resolve(ctx context.Context, envFile string) (*config.Config, error) {
	base, err := config.NewKoanfSource(envFile)
	if err != nil {
		return nil, err
	}

	var src config.Source = base
	if addr, ok := base.Lookup("VAULT_ADDR"); ok && addr != "" {
		token, _ := base.Lookup("VAULT_TOKEN")
		cli, err := vault.New(vault.Settings{Addr: addr, Token: token})
		if err != nil {
			return nil, err
		}
		src = vault.NewSource(ctx, base, cli)
	}

	return config.Load(src, config.DefaultOptions())
}
