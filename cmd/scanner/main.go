package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/polyhedge/config"
	"github.com/alejandrodnm/polyhedge/internal/adapters/notify"
	"github.com/alejandrodnm/polyhedge/internal/adapters/polymarket"
	"github.com/alejandrodnm/polyhedge/internal/adapters/storage"
	"github.com/alejandrodnm/polyhedge/internal/domain"
	"github.com/alejandrodnm/polyhedge/internal/ports"
	"github.com/alejandrodnm/polyhedge/internal/scanner"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one scan cycle and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full tables (default: compact 1-line)")
	screen := flag.Bool("screen", false, "scan once + run the high-probability screener")
	watch := flag.Bool("watch", false, "scan once + stream live prices for the top hedge legs")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("polyhedge starting",
		"config", *configPath,
		"interval", cfg.ScanInterval(),
		"tags", cfg.Scanner.Tags,
		"once", *once,
	)

	client := polymarket.NewClient(cfg.API.CLOBBase, cfg.API.GammaBase)

	store, err := storage.NewSQLiteStorage(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	console := notify.NewConsole(*table || *screen)
	var notifier ports.Notifier = console
	if cfg.Telegram.Enabled {
		notifier = notify.Multi{console, notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)}
	}

	scanCfg := scanner.DefaultConfig()
	scanCfg.ScanInterval = cfg.ScanInterval()
	scanCfg.Tags = cfg.Scanner.Tags
	scanCfg.Validator = scanner.ValidatorConfig{
		MinLiquidity: cfg.Scanner.MinLiquidity,
		MinVolume:    cfg.Scanner.MinVolume,
	}
	scanCfg.Hedge = scanner.HedgeConfig{
		MinCoverage:      cfg.Scanner.MinCoverage,
		CoverProbability: cfg.Scanner.CoverProbability,
		ArbBand:          cfg.Scanner.ArbBand,
		MaxGroupSize:     cfg.Scanner.MaxGroupSize,
	}
	scanCfg.ArbThreshold = cfg.Scanner.ArbThreshold
	scanCfg.PersistTopHedges = cfg.Scanner.PersistTopHedges
	scanCfg.ReportTop = cfg.Scanner.ReportTop
	scanCfg.DryRun = *once || *screen || *watch

	s := scanner.New(scanCfg, client, store, notifier)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch {
	case *screen:
		runScreener(ctx, s, client, console)
	case *watch:
		runWatch(ctx, s, cfg.API.WSBase, cfg.Scanner.ReportTop)
	default:
		if err := s.Run(ctx); err != nil {
			slog.Error("scanner exited with error", "err", err)
			os.Exit(1)
		}
	}

	slog.Info("polyhedge stopped cleanly")
}

// runScreener ejecuta un ciclo y pasa los mercados por el screener de alta
// probabilidad, con el directorio de wallets conocidas como señal de whale.
func runScreener(ctx context.Context, s *scanner.Scanner, client *polymarket.Client, console *notify.Console) {
	result, err := s.RunOnce(ctx)
	if err != nil {
		slog.Error("scan failed", "err", err)
		os.Exit(1)
	}

	wallets := domain.NewWalletDirectory(knownWallets)
	slog.Info("wallet directory loaded", "profiles", wallets.Len())

	screener := scanner.NewScreener(scanner.DefaultScreenerConfig(), client, wallets)
	signals := screener.Screen(ctx, result.Markets, nil)
	console.PrintSignals(signals, wallets)
	console.PrintCorrelated(screener.CorrelatedDeviations(result.Markets))
}

// runWatch ejecuta un ciclo y se queda escuchando los precios en vivo de las
// patas de los mejores hedges hasta que llegue la señal de parada.
func runWatch(ctx context.Context, s *scanner.Scanner, wsURL string, top int) {
	result, err := s.RunOnce(ctx)
	if err != nil {
		slog.Error("scan failed", "err", err)
		os.Exit(1)
	}

	assets := hedgeLegTokens(result.TopHedges(top))
	if len(assets) == 0 {
		slog.Warn("no hedge legs to watch")
		return
	}

	stream := polymarket.NewPriceStream(wsURL)
	if err := stream.Connect(ctx); err != nil {
		slog.Error("websocket connect failed", "err", err)
		os.Exit(1)
	}
	defer stream.Close()

	if err := stream.Subscribe(assets); err != nil {
		slog.Error("websocket subscribe failed", "err", err)
		os.Exit(1)
	}

	slog.Info("watching hedge legs", "assets", len(assets))
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-stream.Updates():
			if !ok {
				return
			}
			slog.Info("price update",
				"asset_id", update.AssetID,
				"mid", update.Mid(),
				"bid", update.BestBid,
				"ask", update.BestAsk,
			)
		}
	}
}

// hedgeLegTokens recoge los token IDs de las posiciones de cada hedge,
// dedupeados en orden de aparición.
func hedgeLegTokens(hedges []domain.HedgeOpportunity) []string {
	seen := make(map[string]struct{})
	var tokens []string
	add := func(m domain.Market, side domain.Side) {
		id := m.YesTokenID
		if side == domain.SideNo {
			id = m.NoTokenID
		}
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		tokens = append(tokens, id)
	}
	for _, h := range hedges {
		add(h.Target, h.TargetPosition)
		add(h.Cover, h.CoverPosition)
	}
	return tokens
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
