package main

import (
	"fmt"
	"os"
	"time"

	"github.com/geocoder89/quizvote/internal/config"
	"github.com/geocoder89/quizvote/internal/db"
	"github.com/geocoder89/quizvote/internal/observability"
	"github.com/geocoder89/quizvote/internal/quiz"
	"github.com/geocoder89/quizvote/internal/repo/postgres"
	"github.com/geocoder89/quizvote/internal/seed"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := app().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func app() *cli.App {
	return &cli.App{
		Name:  "seed",
		Usage: "load quiz data into the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "postgres connection string (defaults to the API configuration)",
				EnvVars: []string{"DATABASE_URL"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "overall deadline for the command",
				Value: 30 * time.Second,
			},
		},
		Commands: []*cli.Command{
			questionsCommand(),
		},
	}
}

func questionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "questions",
		Usage: "insert the questions of a YAML question bank",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "question bank file",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			f, err := os.Open(c.String("file"))
			if err != nil {
				return err
			}
			defer f.Close()

			bank, err := seed.ParseBank(f)
			if err != nil {
				return err
			}

			cfg := config.Load()
			dbURL := c.String("database-url")
			if dbURL == "" {
				dbURL = cfg.DBURL
			}

			log := observability.NewLogger(cfg.Env, cfg.LogLevel)

			ctx, cancel := config.WithTimeout(c.Context, c.Duration("timeout"))
			defer cancel()

			pool, err := db.NewPool(ctx, dbURL, db.PoolOptions{MaxConns: 2})
			if err != nil {
				return fmt.Errorf("db connect: %w", err)
			}
			defer pool.Close()

			if err := db.EnsureSchema(ctx, pool); err != nil {
				return err
			}

			prom := observability.NewProm(prometheus.NewRegistry())
			catalog := quiz.NewCatalog(postgres.NewQuestionsRepo(pool, prom))

			rep, err := seed.Load(ctx, catalog, bank, log)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "added %d four-option and %d two-option questions (pools: four=%d two=%d)\n",
				rep.FourOptionAdded, rep.TwoOptionAdded, rep.Pools.FourOption, rep.Pools.TwoOption)
			return nil
		},
	}
}
