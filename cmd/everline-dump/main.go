// everline-dump polls the Everline feed for a short while and prints what it saw.
// Usage: go run ./cmd/everline-dump --wait 5s
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/rickgao/everline-data/internal/api"
	"github.com/rickgao/everline-data/internal/model"
	"github.com/rickgao/everline-data/internal/poller"
	"github.com/rickgao/everline-data/internal/query"
)

func main() {
	url := flag.String("url", api.DefaultURL, "realtime endpoint")
	wait := flag.Duration("wait", 5*time.Second, "how long to poll before printing")
	interval := flag.Duration("interval", time.Second, "poll interval")
	timeout := flag.Duration("timeout", 3*time.Second, "per-fetch timeout")
	raw := flag.Bool("json", false, "print the raw snapshot as JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	client := api.NewClient(*url, api.WithLogger(logger), api.WithTimeout(*timeout))
	p := poller.New(poller.Config{Interval: *interval, Timeout: *timeout}, client, nil, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *wait)
	defer cancel()

	if err := p.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "start poller: %v\n", err)
		os.Exit(1)
	}
	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	if err := p.Stop(stopCtx); err != nil {
		logger.Warn("failed to stop poller", "error", err)
	}

	snap := p.Latest()
	if snap == nil {
		fmt.Fprintln(os.Stderr, "no snapshot received; is the endpoint reachable?")
		os.Exit(1)
	}

	if *raw {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			fmt.Fprintf(os.Stderr, "encode snapshot: %v\n", err)
			os.Exit(1)
		}
		return
	}

	count, _ := query.TrainCount(snap)
	fmt.Println("=== Snapshot ===")
	fmt.Printf("ID: %s\n", snap.ID)
	fmt.Printf("Fetched: %s (%s ago)\n", snap.FetchedAt.Format(time.RFC3339), snap.Age(time.Now()).Round(time.Millisecond))
	fmt.Printf("Trains: %d\n", count)

	for _, dir := range []model.Direction{model.Up, model.Down} {
		trains := query.TrainsByDirection(snap, dir)
		fmt.Printf("\n=== %s (%d) ===\n", dir.Label(), len(trains))
		for _, r := range trains {
			fmt.Println(query.Describe(r))
		}
	}

	fmt.Println("\n=== Service ===")
	if secs, ok := query.IntervalAt(time.Now()); ok {
		fmt.Printf("Scheduled interval: %d min\n", secs/60)
	} else {
		fmt.Println("Outside service hours")
	}
}
