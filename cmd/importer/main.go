package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"OpenFOF/internal/domain/repository"
	internalrepo "OpenFOF/internal/repository"
	"OpenFOF/internal/usecase"
	pkgch "OpenFOF/pkg/clickhouse"
	"OpenFOF/pkg/config"
	applogger "OpenFOF/pkg/logger"
	"OpenFOF/pkg/util"
)

// importer copies <SYMBOL>.csv files into the sqlite or clickhouse price table.
func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	dir := flag.String("dir", "", "csv directory (defaults to prices.csv_dir)")
	target := flag.String("target", "sqlite", "destination backend: sqlite or clickhouse")
	symbols := flag.String("symbols", "", "comma separated symbols (defaults to every file in dir)")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *dir == "" {
		*dir = cfg.Prices.CSVDir
	}

	l, err := applogger.New(&applogger.Config{Level: cfg.Logger.Level, Format: "console", Output: "stdout"})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src := internalrepo.NewCSVPriceStore(*dir)
	list := util.SplitList(*symbols)
	if len(list) == 0 {
		if list, err = src.Symbols(); err != nil {
			log.Fatalf("list symbols: %v", err)
		}
	}

	dst, closeDst, err := openTarget(ctx, cfg, *target)
	if err != nil {
		log.Fatalf("open %s: %v", *target, err)
	}
	defer closeDst()

	imp := usecase.NewPriceImporter(src, dst, nil, *target, l)
	start := time.Now()
	failed := 0
	rows := 0
	for _, r := range imp.ImportAll(ctx, list) {
		if r.Err != nil {
			failed++
			continue
		}
		rows += r.Rows
	}
	l.Info("import finished",
		applogger.Int("symbols", len(list)),
		applogger.Int("failed", failed),
		applogger.Int("rows", rows),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	if failed > 0 {
		closeDst()
		os.Exit(1)
	}
}

func openTarget(ctx context.Context, cfg *config.Config, target string) (repository.PriceWriter, func(), error) {
	switch target {
	case "sqlite":
		s, err := internalrepo.OpenSQLitePriceStore(ctx, cfg.Prices.SQLite.Path, cfg.Prices.SQLite.Table)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case "clickhouse":
		ch := cfg.Prices.ClickHouse
		client, err := pkgch.NewClient(
			pkgch.WithHost(ch.Host),
			pkgch.WithPort(ch.Port),
			pkgch.WithDatabase(ch.Database),
			pkgch.WithCredentials(ch.User, ch.Password),
			pkgch.WithHTTP(ch.UseHTTP),
			pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout, ch.WriteTimeout),
		)
		if err != nil {
			return nil, nil, err
		}
		s, err := internalrepo.NewCHPriceStore(client, ch.Table)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		if err := client.EnsureDatabase(ctx); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		if err := client.InitSchema(ctx, s.Schema()); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return s, func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown target %q", target)
	}
}
