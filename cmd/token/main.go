// Command token issues bearer tokens for local development against fundledger.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/prajwalbharadwajbm/fundledger/internal/auth"
	"github.com/prajwalbharadwajbm/fundledger/internal/config"
	"github.com/prajwalbharadwajbm/fundledger/internal/models"
)

func main() {
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to AUTH_TOKEN_TTL)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: token [-ttl 1h] <address>")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := config.LoadConfigs(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg := config.AppConfigInstance.AuthConfig

	principal, err := models.ParseAddress(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	lifetime := cfg.TokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	token, err := auth.NewTokenManager(cfg.JWTSecret, cfg.Issuer, lifetime).Issue(principal)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}
