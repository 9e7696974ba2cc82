// Command migrate applies the embedded schema migrations.
//
//	migrate up
//	migrate down
//	migrate status
//	migrate up-to 3
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"kart-checkout/internal/config"
	"kart-checkout/internal/database"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s <up|down|status|reset|redo|version|up-to N|down-to N>\n", os.Args[0])
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		return fmt.Errorf("missing migration command")
	}

	dbCfg, logCfg, err := config.LoadDatabase()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(logCfg)

	ctx := context.Background()
	pool, err := database.NewPool(ctx, dbCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	return database.Migrate(ctx, pool, flag.Arg(0), logger, flag.Args()[1:]...)
}
