package scanner

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/alejandrodnm/polyhedge/internal/domain"
	"github.com/alejandrodnm/polyhedge/internal/ports"
)

// signals.go — screening auxiliar de mercados de alta probabilidad.
//
// Complementa a los detectores: filtra mercados por precio/expiración/
// liquidez, muestrea la estabilidad del precio contra el CLOB y anota
// señales de whale usando el directorio de wallets inyectado.

// ScreenerConfig contiene los criterios del screening.
type ScreenerConfig struct {
	MinWinRate   float64
	MaxWinRate   float64
	MinPrice     float64
	MaxPrice     float64
	MaxHours     float64
	MinLiquidity float64

	// MaxVolatility marca el límite para considerar estable un precio.
	MaxVolatility float64
	// StabilitySamples es el número de lecturas de /price por token.
	StabilitySamples int
	// SampleInterval es la espera entre lecturas.
	SampleInterval time.Duration

	// WhaleMinAmount es el tamaño mínimo de apuesta para señal de whale
	// cuando la wallet no está en el directorio.
	WhaleMinAmount float64

	// MinCorrelation es la correlación mínima para el check de consistencia
	// entre mercados.
	MinCorrelation float64
}

// DefaultScreenerConfig devuelve los criterios de la estrategia por defecto.
func DefaultScreenerConfig() ScreenerConfig {
	return ScreenerConfig{
		MinWinRate:       0.70,
		MaxWinRate:       0.96,
		MinPrice:         0.87,
		MaxPrice:         0.96,
		MaxHours:         2000,
		MinLiquidity:     1000,
		MaxVolatility:    0.05,
		StabilitySamples: 3,
		SampleInterval:   500 * time.Millisecond,
		WhaleMinAmount:   500,
		MinCorrelation:   0.95,
	}
}

// MarketSignal es el resultado del screening de un mercado.
type MarketSignal struct {
	MarketID         string
	Question         string
	Side             domain.Side
	WinRate          float64 // el precio del lado elegido
	Price            float64
	Liquidity        float64
	HoursUntilExpiry float64
	Volatility       float64
	Stable           bool
	Whale            bool
	WhaleAmount      float64
	Score            float64
}

// WhaleBet es una apuesta grande observada en un mercado.
type WhaleBet struct {
	MarketID string
	Wallet   string
	Amount   float64
}

// CorrelatedPair es un par de mercados con precios casi idénticos pero con
// una desviación explotable.
type CorrelatedPair struct {
	Pair        domain.MarketPair
	Correlation float64
	Deviation   float64
}

// Screener filtra y puntúa mercados de alta probabilidad.
type Screener struct {
	cfg     ScreenerConfig
	prices  ports.PriceProvider
	wallets *domain.WalletDirectory
}

// NewScreener crea un Screener. wallets puede ser nil si no se siguen
// direcciones conocidas.
func NewScreener(cfg ScreenerConfig, prices ports.PriceProvider, wallets *domain.WalletDirectory) *Screener {
	if cfg.StabilitySamples <= 0 {
		cfg.StabilitySamples = 3
	}
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 500 * time.Millisecond
	}
	return &Screener{cfg: cfg, prices: prices, wallets: wallets}
}

// Screen filtra los mercados que cumplen los criterios, muestrea su
// estabilidad y devuelve las señales ordenadas por score descendente.
// Un sample fallido nunca aborta el screening: el token queda marcado
// inestable y se sigue.
func (s *Screener) Screen(ctx context.Context, markets []domain.Market, bets []WhaleBet) []MarketSignal {
	var signals []MarketSignal

	for _, m := range markets {
		side, price, ok := s.pickSide(m)
		if !ok {
			continue
		}

		sig := MarketSignal{
			MarketID:         m.ID,
			Question:         m.Question,
			Side:             side,
			WinRate:          price,
			Price:            price,
			Liquidity:        m.Liquidity,
			HoursUntilExpiry: m.HoursUntilExpiry,
		}

		tokenID := m.YesTokenID
		if side == domain.SideNo {
			tokenID = m.NoTokenID
		}
		sig.Volatility = s.CheckStability(ctx, tokenID)
		sig.Stable = sig.Volatility <= s.cfg.MaxVolatility

		sig.Whale, sig.WhaleAmount = s.whaleSignal(m.ID, bets)
		sig.Score = s.Score(sig)
		signals = append(signals, sig)
	}

	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].Score > signals[j].Score
	})
	return signals
}

// pickSide elige el lado de alta probabilidad que cae dentro de los
// criterios de precio, expiración y liquidez. ok=false si ninguno.
func (s *Screener) pickSide(m domain.Market) (domain.Side, float64, bool) {
	if m.HoursUntilExpiry <= 0 || m.HoursUntilExpiry > s.cfg.MaxHours {
		return "", 0, false
	}
	if m.Liquidity < s.cfg.MinLiquidity {
		return "", 0, false
	}

	for _, side := range []domain.Side{domain.SideYes, domain.SideNo} {
		price := m.PriceFor(side)
		if price < s.cfg.MinWinRate || price > s.cfg.MaxWinRate {
			continue
		}
		if price < s.cfg.MinPrice || price > s.cfg.MaxPrice {
			continue
		}
		return side, price, true
	}
	return "", 0, false
}

// CheckStability muestrea el precio del token y devuelve su volatilidad
// (máxima desviación relativa al promedio). Con menos de dos lecturas
// válidas devuelve 1.0: sin datos se asume inestable.
func (s *Screener) CheckStability(ctx context.Context, tokenID string) float64 {
	if tokenID == "" || s.prices == nil {
		return 1.0
	}

	var prices []float64
	for i := 0; i < s.cfg.StabilitySamples; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return 1.0
			case <-time.After(s.cfg.SampleInterval):
			}
		}

		price, err := s.prices.FetchPrice(ctx, tokenID, "BUY")
		if err != nil {
			slog.Debug("stability sample failed", "token_id", tokenID, "err", err)
			continue
		}
		if price > 0 {
			prices = append(prices, price)
		}
	}

	if len(prices) < 2 {
		return 1.0
	}

	var sum float64
	for _, p := range prices {
		sum += p
	}
	avg := sum / float64(len(prices))
	if avg <= 0 {
		return 1.0
	}

	var maxDev float64
	for _, p := range prices {
		maxDev = math.Max(maxDev, math.Abs(p-avg))
	}
	return maxDev / avg
}

// whaleSignal suma las apuestas grandes sobre el mercado. Una wallet del
// directorio cuenta con cualquier tamaño; las desconocidas solo a partir
// de WhaleMinAmount.
func (s *Screener) whaleSignal(marketID string, bets []WhaleBet) (bool, float64) {
	var total float64
	whale := false
	for _, b := range bets {
		if b.MarketID != marketID {
			continue
		}
		known := false
		if s.wallets != nil {
			_, known = s.wallets.Lookup(b.Wallet)
		}
		if known || b.Amount >= s.cfg.WhaleMinAmount {
			whale = true
			total += b.Amount
		}
	}
	return whale, total
}

// Score calcula la puntuación compuesta de una señal:
// win rate 40%, cercanía de expiración 20%, estabilidad 20%, whale 20%.
func (s *Screener) Score(sig MarketSignal) float64 {
	score := sig.WinRate * 0.4

	if sig.HoursUntilExpiry > 0 {
		score += (1 - sig.HoursUntilExpiry/24) * 0.2
	}
	if sig.Stable {
		score += 0.2
	}
	if sig.Whale {
		score += 0.2
	}
	return score
}

// Correlations calcula la correlación simplificada (1 - |p1 - p2|) entre
// los precios YES de cada par de mercados. Keys canónicas por MarketPair.
func Correlations(markets []domain.Market) map[domain.MarketPair]float64 {
	result := make(map[domain.MarketPair]float64)
	for i := 0; i < len(markets); i++ {
		for j := i + 1; j < len(markets); j++ {
			p1 := markets[i].YesPrice
			p2 := markets[j].YesPrice
			if p1 <= 0 || p2 <= 0 {
				continue
			}
			pair := domain.NewMarketPair(markets[i].ID, markets[j].ID)
			result[pair] = 1 - math.Abs(p1-p2)
		}
	}
	return result
}

// CorrelatedDeviations devuelve los pares con correlación alta pero con una
// desviación de al menos el 1%: consistencia rota que puede ser señal.
func (s *Screener) CorrelatedDeviations(markets []domain.Market) []CorrelatedPair {
	var pairs []CorrelatedPair
	for pair, corr := range Correlations(markets) {
		if corr < s.cfg.MinCorrelation {
			continue
		}
		deviation := 1 - corr
		if deviation > 0.01 {
			pairs = append(pairs, CorrelatedPair{Pair: pair, Correlation: corr, Deviation: deviation})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].Deviation > pairs[j].Deviation
	})
	return pairs
}
