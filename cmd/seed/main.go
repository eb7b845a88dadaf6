// Command seed writes the bundled demo post collection to the durable
// posts file so a fresh deployment starts with content before the first
// ingestion run.
package main

import (
	"context"
	"flag"
	"log"

	"inkboard/internal/config"
	"inkboard/internal/store"
)

func main() {
	dataDir := flag.String("data-dir", "", "directory for posts.json (defaults to DATA_DIR from config)")
	flag.Parse()

	dir := *dataDir
	if dir == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		dir = cfg.DataDir
	}

	seed := store.SeedPosts()
	fs := store.NewFileStore(dir, nil)
	added, err := fs.UpsertMany(context.Background(), seed)
	if err != nil {
		log.Fatalf("Failed to write seed posts: %v", err)
	}

	log.Printf("Seeded %d of %d posts into %s", added, len(seed), dir)
}
