// Command admin is operator tooling for the review role.
//
//	admin grant -user <subject> [-email <address>]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/PYTHTRADER/findtrader/internal/config"
	"github.com/PYTHTRADER/findtrader/internal/database"
	"github.com/PYTHTRADER/findtrader/internal/database/migration"
	"github.com/PYTHTRADER/findtrader/internal/logging"
	"github.com/PYTHTRADER/findtrader/internal/repository/postgres"
	"github.com/PYTHTRADER/findtrader/internal/service"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: admin grant -user <subject> [-email <address>]")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 || os.Args[1] != "grant" {
		usage()
	}

	fs := flag.NewFlagSet("grant", flag.ExitOnError)
	userID := fs.String("user", "", "identity-provider subject to promote")
	email := fs.String("email", "", "contact address stored with the role")
	_ = fs.Parse(os.Args[2:])
	if *userID == "" {
		usage()
	}

	cfg := config.Load()
	log := logging.New(os.Stderr, cfg.Location())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewPostgres(cfg.Database, log)
	if err != nil {
		log.Error("db_connect_failed", "error", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		log.Error("grant_aborted", "stage", "migration", "error", err.Error())
		os.Exit(1)
	}

	svc := service.NewAdminService(
		postgres.NewSubmissionPostgres(db),
		postgres.NewNotificationPostgres(db),
		postgres.NewUserPostgres(db),
		nil, nil, 0, log,
	)
	u, err := svc.GrantAdmin(ctx, *userID, *email)
	if err != nil {
		log.Error("grant_failed", "user_id", *userID, "error", err.Error())
		os.Exit(1)
	}
	fmt.Printf("granted %s role to %s\n", u.Role, u.ID)
}
