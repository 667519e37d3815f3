package main

import (
	"context"
	"log"
	"time"

	sq "github.com/Masterminds/squirrel"
	uuid "github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/whiteflags26/turfmania-sub000/internal/core/domain"
	"github.com/whiteflags26/turfmania-sub000/internal/infra/config"
	"github.com/whiteflags26/turfmania-sub000/internal/infra/database"
	"github.com/whiteflags26/turfmania-sub000/internal/infra/logger"
)

// Seeds the permission catalog. Re-running is safe: existing names are
// left untouched.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, zlog)
	if err != nil {
		log.Fatalf("failed to init postgres: %v", err)
	}
	defer pool.Close()

	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	var seeded int
	for _, entry := range domain.PermissionCatalog() {
		description := entry.Description

		query, args, err := builder.
			Insert("access.permissions").
			Columns("id", "name", "description", "scope").
			Values(uuid.NewString(), entry.Name, description, string(entry.Scope)).
			Suffix("ON CONFLICT (name) DO NOTHING").
			ToSql()
		if err != nil {
			log.Fatalf("build seed query for %s: %v", entry.Name, err)
		}

		tag, err := pool.Exec(ctx, query, args...)
		if err != nil {
			log.Fatalf("seed permission %s: %v", entry.Name, err)
		}
		if tag.RowsAffected() > 0 {
			seeded++
		}
	}

	log.Printf("permission catalog seeded: %d new entries", seeded)
}
