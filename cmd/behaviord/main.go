package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeusync/behaviortree/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, "behaviord:", err)
			os.Exit(2)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		fmt.Fprintln(os.Stderr, "behaviord:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	a, cleanup, err := initApp(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	return a.run(ctx)
}
