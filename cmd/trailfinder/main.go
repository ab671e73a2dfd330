package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/yanqian/trailfinder/internal/domain/trailview"
	"github.com/yanqian/trailfinder/internal/infra/geo"
	"github.com/yanqian/trailfinder/internal/infra/trailapi"
	"github.com/yanqian/trailfinder/pkg/logger"
)

func main() {
	apiURL := flag.String("api", envOr("TRAILFINDER_API", "http://localhost:8080"), "base URL of the trailfinder server")
	location := flag.String("location", os.Getenv("TRAILFINDER_LOCATION"), `device position as "lat,lon"; empty means unavailable`)
	level := flag.Int("level", trailview.DefaultFitnessLevel, "initial fitness level (1-5)")
	timeout := flag.Duration("timeout", 90*time.Second, "per request timeout")
	interactive := flag.Bool("interactive", false, "read fitness levels from stdin and re-render after each one")
	flag.Parse()

	if *level < trailview.MinFitnessLevel || *level > trailview.MaxFitnessLevel {
		fmt.Fprintf(os.Stderr, "level must be between %d and %d\n", trailview.MinFitnessLevel, trailview.MaxFitnessLevel)
		os.Exit(2)
	}

	log := logger.NewWithWriter(os.Stderr, os.Getenv("LOG_LEVEL"))

	locator, err := geo.NewStatic(*location)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid location: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := trailapi.NewClient(*apiURL, *timeout)
	store := trailview.NewStore()
	store.Dispatch(trailview.FitnessLevelSelected{Level: *level})
	ctrl := trailview.NewController(store, api, api, locator, log)

	ctrl.Mount(ctx)
	ctrl.Wait()
	if err := writePage(os.Stdout, trailview.Render(store.Snapshot())); err != nil {
		fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
		os.Exit(1)
	}

	if !*interactive {
		return
	}
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("\nfitness level (1-5, q to quit): ")
	for scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input == "q" || ctx.Err() != nil {
			return
		}
		n, err := strconv.Atoi(input)
		if err == nil {
			err = ctrl.SelectFitnessLevel(n)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid level %q: %v\n", input, err)
		} else {
			ctrl.Wait()
			if err := writePage(os.Stdout, trailview.Render(store.Snapshot())); err != nil {
				fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
			}
		}
		fmt.Print("\nfitness level (1-5, q to quit): ")
	}
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
