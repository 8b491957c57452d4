// everline-watch subscribes to a running tracker and prints each pushed snapshot.
// Usage: go run ./cmd/everline-watch --url ws://localhost:8080/v1/ws
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/everline-data/internal/connection"
	"github.com/rickgao/everline-data/internal/query"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/v1/ws", "tracker WebSocket URL")
	verbose := flag.Bool("verbose", false, "print full snapshot JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := connection.NewWatcher(connection.WatcherConfig{
		Client: connection.DefaultClientConfig(*url),
	}, logger)

	logger.Info("watching - press Ctrl+C to stop", "url", *url)

	err := w.Run(ctx, func(u connection.Update) {
		snap := u.Snapshot
		if *verbose {
			data, _ := json.MarshalIndent(snap, "", "  ")
			fmt.Printf("[SNAPSHOT] %s\n", data)
			return
		}

		fmt.Printf("[SNAPSHOT] %s fetched=%s trains=%d lag=%s\n",
			snap.ID, snap.FetchedAt.Format("15:04:05"), snap.Len(),
			u.ReceivedAt.Sub(snap.FetchedAt).Round(time.Millisecond))
		for _, r := range snap.Records {
			fmt.Printf("  %s\n", query.Describe(r))
		}
	})
	if err != nil {
		logger.Error("watch failed", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped", "connects", w.Connects())
}
