// Command provision creates a staff account. Operator accounts have no
// self-registration endpoint, so this is how new console users are added:
//
//	provision -email ana@example.com -name "Ana Petrova" -password '...' -role STAFF
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/hkhang692004/cinema-ops-console/internal/config"
	"github.com/hkhang692004/cinema-ops-console/internal/database"
	"github.com/hkhang692004/cinema-ops-console/internal/repository"
)

func main() {
	email := flag.String("email", "", "login email")
	name := flag.String("name", "", "full name")
	password := flag.String("password", "", "initial password")
	role := flag.String("role", "STAFF", "MANAGER or STAFF")
	flag.Parse()

	if *email == "" || *name == "" || *password == "" {
		log.Fatal("email, name and password are required")
	}
	if *role != "MANAGER" && *role != "STAFF" {
		log.Fatalf("invalid role %q", *role)
	}

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := repository.NewUserRepo(db)
	id, err := users.Create(ctx, *email, *name, *password, *role, cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			log.Fatalf("account %s already exists", *email)
		}
		log.Fatalf("create account: %v", err)
	}
	log.Printf("created %s account %s (id=%d)", *role, *email, id)
}
