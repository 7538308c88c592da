// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command create-admin enrols an administrator account.
//
// Usage:
//
//	DATABASE_URL=postgres://... create-admin --username root --email root@example.com
//
// The password is read from --password or ADMIN_PASSWORD.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/taibuivan/yomira-toon/internal/admin"
	"github.com/taibuivan/yomira-toon/internal/platform/migration"
	pgstore "github.com/taibuivan/yomira-toon/internal/platform/postgres"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	app := &cli.App{
		Name:  "create-admin",
		Usage: "create an administrator account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "database-url", EnvVars: []string{"DATABASE_URL"}, Required: true, Usage: "PostgreSQL connection string"},
			&cli.StringFlag{Name: "migration-path", EnvVars: []string{"MIGRATION_PATH"}, Value: "./data/migrations", Usage: "SQL migrations directory"},
			&cli.BoolFlag{Name: "migrate", Value: true, Usage: "apply pending migrations first"},
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "name"},
			&cli.StringFlag{Name: "password", EnvVars: []string{"ADMIN_PASSWORD"}, Required: true},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("migrate") {
				if err := migration.RunUp(c.String("database-url"), c.String("migration-path"), log); err != nil {
					return err
				}
			}

			pool, err := pgstore.NewPool(c.Context, c.String("database-url"), log)
			if err != nil {
				return err
			}
			defer pool.Close()

			// Enrolment only; no tokens are issued from this command.
			service, err := admin.NewService(admin.NewAdminRepository(pool), nil, 0, log)
			if err != nil {
				return err
			}

			created, err := service.CreateAdmin(c.Context, admin.CreateInput{
				Username: c.String("username"),
				Email:    c.String("email"),
				Name:     c.String("name"),
				Password: c.String("password"),
			})
			if err != nil {
				return err
			}

			fmt.Printf("Created administrator %s (%s)\n", created.Username, created.ID)
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error("create_admin_failed", slog.Any("error", err))
		os.Exit(1)
	}
}
