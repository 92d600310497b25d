package scanner

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alejandrodnm/polyhedge/internal/domain"
	"github.com/alejandrodnm/polyhedge/internal/ports"
)

// Config contiene la configuración del scanner.
type Config struct {
	ScanInterval time.Duration
	Tags         []string
	Validator    ValidatorConfig
	Hedge        HedgeConfig
	ArbThreshold float64
	// PersistTopHedges limita cuántas oportunidades se guardan por ciclo.
	PersistTopHedges int
	// ReportTop limita cuántas oportunidades van en la notificación.
	ReportTop int
	DryRun    bool
}

// DefaultConfig devuelve una configuración sensata para producción.
func DefaultConfig() Config {
	return Config{
		ScanInterval:     5 * time.Minute,
		Tags:             []string{"crypto", "bitcoin"},
		Validator:        DefaultValidatorConfig(),
		Hedge:            DefaultHedgeConfig(),
		ArbThreshold:     defaultArbThreshold,
		PersistTopHedges: 20,
		ReportTop:        5,
	}
}

// ScanResult es el resultado completo de un ciclo.
type ScanResult struct {
	Summary   domain.ScanSummary
	Markets   []domain.Market // anotados con grupo y label
	Groups    []domain.MarketGroup
	Arbitrage []domain.ArbitrageOpportunity // por deviation descendente
	Hedges    []domain.HedgeOpportunity     // por coverage descendente
}

// TopArbitrage devuelve las n mejores oportunidades de arbitraje.
func (r ScanResult) TopArbitrage(n int) []domain.ArbitrageOpportunity {
	if n > len(r.Arbitrage) {
		n = len(r.Arbitrage)
	}
	return r.Arbitrage[:n]
}

// TopHedges devuelve las n mejores oportunidades de hedge.
func (r ScanResult) TopHedges(n int) []domain.HedgeOpportunity {
	if n > len(r.Hedges) {
		n = len(r.Hedges)
	}
	return r.Hedges[:n]
}

// Scanner es el orquestador del ciclo de escaneo:
// fetch → group → validate → detect-arbitrage → detect-hedge → rank → persist.
// Cada etapa opera sobre la salida materializada de la anterior; el dataset
// del ciclo es propiedad exclusiva del orquestador hasta el persist.
type Scanner struct {
	cfg      Config
	markets  ports.MarketProvider
	storage  ports.Storage
	notifier ports.Notifier

	grouper   *Grouper
	validator *Validator
	arb       *ArbitrageDetector
	hedge     *HedgeDetector
}

// New crea un Scanner con todas las dependencias inyectadas.
// storage y notifier pueden ser nil (dry run).
func New(cfg Config, markets ports.MarketProvider, storage ports.Storage, notifier ports.Notifier) *Scanner {
	if cfg.PersistTopHedges <= 0 {
		cfg.PersistTopHedges = 20
	}
	if cfg.ReportTop <= 0 {
		cfg.ReportTop = 5
	}
	validator := NewValidator(cfg.Validator)
	return &Scanner{
		cfg:       cfg,
		markets:   markets,
		storage:   storage,
		notifier:  notifier,
		grouper:   NewGrouper(),
		validator: validator,
		arb:       NewArbitrageDetector(cfg.ArbThreshold, validator),
		hedge:     NewHedgeDetector(cfg.Hedge),
	}
}

// Run ejecuta el loop de escaneo hasta que el contexto se cancele.
// Si cfg.DryRun está activo, solo ejecuta un ciclo.
func (s *Scanner) Run(ctx context.Context) error {
	slog.Info("scanner starting",
		"interval", s.cfg.ScanInterval,
		"tags", s.cfg.Tags,
		"dry_run", s.cfg.DryRun,
	)

	if err := s.runCycle(ctx); err != nil {
		slog.Error("scan cycle failed", "err", err)
		if s.cfg.DryRun {
			return err
		}
	}

	if s.cfg.DryRun {
		return nil
	}

	ticker := time.NewTicker(s.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scanner stopped")
			return nil
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				slog.Error("scan cycle failed", "err", err)
			}
		}
	}
}

// RunOnce ejecuta exactamente un ciclo y devuelve el resultado, sin
// persistir ni notificar.
func (s *Scanner) RunOnce(ctx context.Context) (ScanResult, error) {
	return s.cycle(ctx)
}

// runCycle ejecuta un ciclo completo y persiste/notifica los resultados.
func (s *Scanner) runCycle(ctx context.Context) error {
	start := time.Now()

	result, err := s.cycle(ctx)
	if err != nil {
		return err
	}

	s.persist(ctx, result)
	s.notify(ctx, result)

	slog.Info("scan cycle complete",
		"markets", result.Summary.TotalMarkets,
		"valid", result.Summary.ValidMarkets,
		"groups", result.Summary.Groups,
		"arbitrage", result.Summary.ArbitrageCount,
		"hedges", result.Summary.HedgeCount,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// cycle ejecuta las etapas de detección sobre un dataset materializado.
// Un fallo de fetch en una partición no aborta el ciclo: esa partición
// aporta cero mercados. Entre etapas hay checkpoints de cancelación.
func (s *Scanner) cycle(ctx context.Context) (ScanResult, error) {
	markets, dropped := s.fetchAll(ctx)
	if err := ctx.Err(); err != nil {
		return ScanResult{}, err
	}

	groups := s.grouper.Group(markets)
	if err := ctx.Err(); err != nil {
		return ScanResult{}, err
	}

	valid := make([]domain.Market, 0, len(markets))
	for _, m := range markets {
		if s.validator.ValidateMarket(m).Valid {
			valid = append(valid, m)
		}
	}
	if err := ctx.Err(); err != nil {
		return ScanResult{}, err
	}

	arbs := s.arb.Detect(valid)
	sort.SliceStable(arbs, func(i, j int) bool {
		return arbs[i].Deviation > arbs[j].Deviation
	})
	if err := ctx.Err(); err != nil {
		return ScanResult{}, err
	}

	hedges := s.hedge.Detect(validGroups(groups, s.validator))

	return ScanResult{
		Summary: domain.ScanSummary{
			ScannedAt:      time.Now().UTC(),
			TotalMarkets:   len(markets),
			ValidMarkets:   len(valid),
			DroppedRecords: dropped,
			Groups:         len(groups),
			ArbitrageCount: len(arbs),
			HedgeCount:     len(hedges),
		},
		Markets:   markets,
		Groups:    groups,
		Arbitrage: arbs,
		Hedges:    hedges,
	}, nil
}

// fetchAll obtiene los mercados de cada tag en paralelo y los funde
// dedupeados por ID, en orden de tag. Un tag que falla se loguea y aporta
// una partición vacía.
func (s *Scanner) fetchAll(ctx context.Context) ([]domain.Market, int) {
	type partition struct {
		markets []domain.Market
		dropped int
	}
	parts := make([]partition, len(s.cfg.Tags))

	g, gctx := errgroup.WithContext(ctx)
	for i, tag := range s.cfg.Tags {
		g.Go(func() error {
			markets, dropped, err := s.markets.FetchMarketsByTag(gctx, tag)
			if err != nil {
				slog.Warn("tag fetch failed, partition skipped", "tag", tag, "err", err)
				return nil
			}
			parts[i] = partition{markets: markets, dropped: dropped}
			return nil
		})
	}
	_ = g.Wait() // los errores de fetch nunca se propagan

	seen := make(map[string]struct{})
	var merged []domain.Market
	dropped := 0
	for _, p := range parts {
		dropped += p.dropped
		for _, m := range p.markets {
			if _, ok := seen[m.ID]; ok {
				continue
			}
			seen[m.ID] = struct{}{}
			merged = append(merged, m)
		}
	}
	return merged, dropped
}

// validGroups filtra cada grupo a sus miembros válidos y descarta los que
// quedan con menos de 2: solo el subset validado alimenta el detector.
func validGroups(groups []domain.MarketGroup, v *Validator) []domain.MarketGroup {
	result := make([]domain.MarketGroup, 0, len(groups))
	for _, g := range groups {
		var members []domain.Market
		for _, m := range g.Markets {
			if v.ValidateMarket(m).Valid {
				members = append(members, m)
			}
		}
		if len(members) >= 2 {
			g.Markets = members
			result = append(result, g)
		}
	}
	return result
}

// persist guarda mercados, grupos, top hedges y el resumen del ciclo.
// Los fallos se loguean: el resultado en memoria siempre vuelve al caller.
func (s *Scanner) persist(ctx context.Context, result ScanResult) {
	if s.storage == nil {
		return
	}
	if err := s.storage.UpsertMarkets(ctx, result.Markets); err != nil {
		slog.Warn("storage error: markets", "err", err)
	}
	if err := s.storage.UpsertGroups(ctx, result.Groups); err != nil {
		slog.Warn("storage error: groups", "err", err)
	}
	if err := s.storage.SaveHedges(ctx, result.TopHedges(s.cfg.PersistTopHedges)); err != nil {
		slog.Warn("storage error: hedges", "err", err)
	}
	if err := s.storage.LogScan(ctx, result.Summary); err != nil {
		slog.Warn("storage error: scan history", "err", err)
	}
}

// notify entrega el reporte. Fire-and-forget: un notifier caído no es un
// fallo del scan.
func (s *Scanner) notify(ctx context.Context, result ScanResult) {
	if s.notifier == nil {
		return
	}
	report := domain.ScanReport{
		Summary:       result.Summary,
		ExpiryBuckets: domain.ExpirySummary(result.Markets),
		TopHedges:     result.TopHedges(s.cfg.ReportTop),
		TopArbitrage:  result.TopArbitrage(s.cfg.ReportTop),
	}
	if err := s.notifier.Notify(ctx, report); err != nil {
		slog.Warn("notifier error", "err", err)
	}
}
