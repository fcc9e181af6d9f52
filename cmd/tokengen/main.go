// Command tokengen mints a publisher token for an issuer DID using the
// server's JWT settings.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	jwttoken "didweb-anoncreds/internal/jwt_token"
	"didweb-anoncreds/internal/platform/config"
)

func main() {
	issuer := flag.String("issuer", "", "issuer DID the token may publish for (did:web:...)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg := config.FromEnv()
	token, err := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience).
		GeneratePublisherToken(*issuer, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tokengen: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
