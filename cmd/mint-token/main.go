// Command mint-token signs an access token with the configured JWT secret,
// for local development and smoke testing without the identity provider.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/nekogravitycat/gym-booking-backend/internal/auth"
	"github.com/nekogravitycat/gym-booking-backend/internal/config"
)

func main() {
	role := flag.String("role", string(auth.RoleClient), "client or staff")
	subject := flag.String("sub", "", "user id, random when empty")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if *subject == "" {
		*subject = uuid.NewString()
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTokenTTL).
		GenerateAccessToken(*subject, auth.Role(*role))
	if err != nil {
		log.Fatalf("failed to mint token: %v", err)
	}
	fmt.Println(token)
}
