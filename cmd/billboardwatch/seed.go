package main

import (
	"context"
	"fmt"

	"billboardwatch/internal/db"
	"billboardwatch/internal/seed"
	"billboardwatch/internal/store"

	"github.com/k0kubun/pp/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Apply the database schema and bootstrap a reviewer account",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "name",
			Usage: "Display name of the reviewer account",
			Value: "City Review Board",
		},
		&cli.StringFlag{
			Name:     "email",
			Usage:    "Email of the reviewer account",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "password",
			Usage:    "Initial password of the reviewer account",
			Required: true,
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		logrus.Info("Applying schema...")
		if err := seed.ApplySchema(ctx, pool); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}

		userRepo := store.NewUserRepository(pool)

		logrus.Info("Seeding organization user...")
		user, err := seed.SeedOrganizationUser(ctx, userRepo, c.String("name"), c.String("email"), c.String("password"))
		if err != nil {
			return fmt.Errorf("failed to seed organization user: %w", err)
		}

		pp.Println(user.View())

		logrus.Info("Seed complete")

		return nil
	},
}
