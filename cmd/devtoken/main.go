// Command devtoken prints an access token for local testing against a
// server configured with the same JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/booking-hub/internal/auth"
)

func main() {
	_ = godotenv.Load()

	user := flag.Uint64("user", 0, "user id (token subject)")
	role := flag.String("role", "CUSTOMER", "CUSTOMER or ADMIN")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	tok, err := auth.NewAccessToken(secret, *user, *role, *ttl)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(tok.Token)
}
