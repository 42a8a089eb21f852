package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/brensch/tetris/internal/envflag"
)

func main() {
	env := envflag.New(flag.CommandLine, os.LookupEnv)
	archiveDir := env.String("archive-dir", "TETRIS_ARCHIVE_DIR", "archive", "Directory of session parquet files")
	timeout := env.Duration("timeout", "TETRIS_STATS_TIMEOUT", 30*time.Second, "Query timeout")
	if err := env.Parse(os.Args[1:]); err != nil {
		log.Fatalf("Bad configuration: %v", err)
	}

	db, err := openArchive(*archiveDir)
	if err != nil {
		log.Fatalf("Failed to open archive %s: %v", *archiveDir, err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	s, err := summarize(ctx, db)
	if err != nil {
		log.Fatalf("Failed to summarize archive: %v", err)
	}
	s.print(os.Stdout)
}
