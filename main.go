package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	_ "time/tzdata"

	"github.com/dnldd/screener/service"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

func main() {
	var cfg Config
	err := loadConfig(&cfg, "")
	if err != nil {
		log.Printf("loading config: %v", err)
		os.Exit(1)
	}

	// Dates were checked when validating the config.
	start, _ := service.ParseDate(cfg.Start)
	end, _ := service.ParseDate(cfg.End)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scannerCfg := service.ScannerConfig{
		Symbols:         cfg.Symbols,
		SymbolsURL:      cfg.SymbolsURL,
		SymbolSuffix:    cfg.SymbolSuffix,
		UniverseFile:    cfg.UniverseFile,
		Source:          cfg.Source,
		DataDir:         cfg.DataDir,
		YahooURL:        cfg.YahooURL,
		KiteAPIKey:      cfg.KiteAPIKey,
		KiteAccessToken: cfg.KiteAccessToken,
		Start:           start,
		End:             end,
		OutputDir:       cfg.OutputDir,
		CombinedFile:    cfg.CombinedFile,
		Workers:         cfg.Workers,
		Schedule:        cfg.Schedule,
		Timezone:        cfg.Timezone,
		SQLitePath:      cfg.SQLitePath,
		RqliteEndpoint:  cfg.RqliteEndpoint,
		RqliteUser:      cfg.RqliteUser,
		RqlitePass:      cfg.RqlitePass,
		Params:          cfg.Params(),
		Cancel:          cancel,
	}
	scanner, err := service.NewScanner(ctx, &scannerCfg)
	if err != nil {
		log.Printf("creating scanner service: %v", err)
		os.Exit(1)
	}

	go handleTermination(ctx, cancel)

	err = scanner.Run(ctx)
	if err != nil {
		log.Printf("running scanner service: %v", err)
		cancel()
		os.Exit(1)
	}
}
