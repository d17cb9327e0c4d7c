package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/booomerangs/relay-api/internal/store/model"
	"github.com/booomerangs/relay-api/internal/store/sqlite"
)

// Seeds the dispatch log with synthetic traffic so dashboards and
// CountSince queries have something to chew on during development.
func main() {
	dsn := flag.String("dsn", "relay.db", "SQLite DSN")
	count := flag.Int("count", 200, "Number of dispatch logs to insert")
	flag.Parse()

	zlog, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}

	repo, err := sqlite.NewSQLiteStorage(*dsn, zlog)
	if err != nil {
		log.Fatal(err)
	}
	defer repo.Close()

	providers := []string{
		"Qwen_Qwen_2_72B", "Qwen_Qwen_2_5_Max", "Qwen_Qwen_2_5",
		"DeepInfra", "HuggingChat", "Phind",
	}
	endpoints := []string{"chat", "direct", "stream", "probe"}

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := 0; i < *count; i++ {
		providerName := providers[rng.Intn(len(providers))]
		success := rng.Intn(10) != 0
		fallback := !success && rng.Intn(2) == 0

		entry := &model.DispatchLog{
			ID:        uuid.New().String(),
			Endpoint:  endpoints[rng.Intn(len(endpoints))],
			Provider:  providerName,
			Model:     "default",
			Success:   success || fallback,
			Fallback:  fallback,
			Attempts:  1 + rng.Intn(4),
			LatencyMS: int64(100 + rng.Intn(4900)),
			CreatedAt: time.Now().Add(-time.Duration(rng.Intn(72)) * time.Hour),
		}

		if err := repo.Dispatches().Log(ctx, entry); err != nil {
			log.Fatal(err)
		}
	}

	for _, p := range providers {
		n, err := repo.Dispatches().CountSince(ctx, p, 24)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%-20s %d dispatches in last 24h\n", p, n)
	}

	fmt.Printf("\nSeeded %d dispatch logs into %s\n", *count, *dsn)
}
