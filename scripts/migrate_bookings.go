// Command migrate_bookings copies bookings from the Redis snapshot store
// into a SQLite database, for switching the storage backend without losing
// existing reservations.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"agendador/internal/config"
	"agendador/internal/database"
	"agendador/internal/domain"
	"agendador/internal/repository"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		redisAddr = flag.String("redis", "localhost:6379", "redis address of the snapshot store")
		redisDB   = flag.Int("redis-db", 0, "redis database number")
		dbPath    = flag.String("db", "./data/bookings.db", "path to sqlite db")
	)
	flag.Parse()

	client := repository.NewRedisClient(config.RedisConfig{Address: *redisAddr, DB: *redisDB})
	defer repository.Close(client)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := repository.Ping(ctx, client); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	snapshot := repository.NewRedisBookingStore(client)
	bookings, err := snapshot.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	if len(bookings) == 0 {
		return fmt.Errorf("snapshot store is empty, nothing to migrate")
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	created := 0
	skipped := 0
	for i := range bookings {
		err := db.Insert(ctx, &bookings[i])
		if errors.Is(err, domain.ErrDuplicateID) {
			skipped++
			continue
		}
		if err != nil {
			return fmt.Errorf("insert %s: %w", bookings[i].ID, err)
		}
		created++
	}

	logger.Info().Int("created", created).Int("skipped", skipped).Msg("migration finished")
	return nil
}
