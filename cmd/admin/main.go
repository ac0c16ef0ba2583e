// This program performs administrative tasks for the leads store.
//
// Usage example on the command line:
// > LEAD_DB_DRIVER=postgres go run ./cmd/admin migrate
// > go run ./cmd/admin ping
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"
	"github.com/phbpx/leads-api/mongodb"
	"github.com/phbpx/leads-api/pkg/database"
	"github.com/phbpx/leads-api/storage"
	"go.uber.org/zap"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log.Sugar()); err != nil {
		if !errors.Is(err, conf.ErrHelpWanted) {
			log.Sugar().Errorw("admin", "err", err)
		}
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	_ = godotenv.Load()

	cfg := struct {
		Args conf.Args
		DB   struct {
			Driver                 string        `conf:"default:mongo"`
			URL                    string        `conf:"default:mongodb://localhost:27017,mask"`
			Name                   string        `conf:"default:leads"`
			ServerSelectionTimeout time.Duration `conf:"default:5s"`
			User                   string        `conf:"default:leadsvc"`
			Password               string        `conf:"default:leadsvc,mask"`
			Host                   string        `conf:"default:localhost:5432"`
			DisableTLS             bool          `conf:"default:true"`
		}
	}{}

	help, err := conf.Parse("LEAD", &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return err
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	store, err := storage.Open(storage.Config{
		Driver: cfg.DB.Driver,
		Mongo: mongodb.Config{
			URL:                    cfg.DB.URL,
			Name:                   cfg.DB.Name,
			ServerSelectionTimeout: cfg.DB.ServerSelectionTimeout,
		},
		Postgres: database.Config{
			User:       cfg.DB.User,
			Password:   cfg.DB.Password,
			Host:       cfg.DB.Host,
			Name:       cfg.DB.Name,
			DisableTLS: cfg.DB.DisableTLS,
		},
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer store.Close(ctx)

	switch cmd := cfg.Args.Num(0); cmd {
	case "migrate":
		if err := store.Prepare(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Infow("admin", "status", "schema up to date", "driver", store.Driver)

	case "ping":
		if err := store.StatusCheck(ctx); err != nil {
			return fmt.Errorf("ping: %w", err)
		}
		log.Infow("admin", "status", "database reachable", "driver", store.Driver)

	default:
		fmt.Println("migrate: bring the store schema up to date")
		fmt.Println("ping:    check the store is reachable")
		return fmt.Errorf("unknown command %q", cmd)
	}

	return nil
}
