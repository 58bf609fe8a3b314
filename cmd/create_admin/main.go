package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/practika/practika/internal/adapter/persistence"
	"github.com/practika/practika/internal/config"
	"github.com/practika/practika/internal/domain"
	"github.com/practika/practika/internal/service/password"
)

// Bootstraps the first super admin account. Usage:
//
//	create_admin [email] [password] [name]
func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	email := "admin@practika.io"
	plainPassword := "admin123"
	name := "Super Administrator"

	if len(os.Args) > 1 {
		email = os.Args[1]
	}
	if len(os.Args) > 2 {
		plainPassword = os.Args[2]
	}
	if len(os.Args) > 3 {
		name = os.Args[3]
	}

	passwordService := password.NewBcryptService(10)
	hash, err := passwordService.HashPassword(plainPassword)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	admin := &domain.Actor{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		Role:         domain.RoleSuperAdmin,
		Permissions:  domain.PermissionMatrix{},
		Active:       true,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	actorRepo := persistence.NewPostgresActorRepository(db)
	if err := actorRepo.Create(ctx, admin); err != nil {
		log.Fatalf("Failed to create super admin: %v", err)
	}

	fmt.Printf("Super admin created\n")
	fmt.Printf("  Email: %s\n", email)
	fmt.Printf("  Name:  %s\n", name)
	fmt.Printf("  ID:    %s\n", admin.ID)
}
