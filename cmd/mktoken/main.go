// mktoken prints a signed bearer token for local testing.
//
//	go run ./cmd/mktoken -user admin -admin
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"jobly/catalog-service/internal/auth"
)

func main() {
	user := flag.String("user", "", "username claim (required)")
	admin := flag.Bool("admin", false, "set the isAdmin claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime, 0 for none")
	flag.Parse()

	_ = godotenv.Load()
	secret := os.Getenv("SECRET_KEY")
	if secret == "" || *user == "" {
		fmt.Fprintln(os.Stderr, "usage: SECRET_KEY=... mktoken -user NAME [-admin] [-ttl 24h]")
		os.Exit(2)
	}

	token, err := auth.NewKeys(secret, *ttl).Sign(*user, *admin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}
