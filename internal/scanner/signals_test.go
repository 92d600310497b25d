package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alejandrodnm/polyhedge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePrices struct {
	samples map[string][]float64
	calls   map[string]int
	err     error
}

func (f *fakePrices) FetchPrice(_ context.Context, tokenID, _ string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	seq := f.samples[tokenID]
	i := f.calls[tokenID]
	f.calls[tokenID]++
	if i >= len(seq) {
		return 0, errors.New("no more samples")
	}
	return seq[i], nil
}

func (f *fakePrices) FetchOrderBook(_ context.Context, _ string) (domain.OrderBook, error) {
	return domain.OrderBook{}, errors.New("not implemented")
}

func screenerConfig() ScreenerConfig {
	cfg := DefaultScreenerConfig()
	cfg.SampleInterval = time.Millisecond
	return cfg
}

func screenMarket(id string, yes, no, hours float64) domain.Market {
	m := makeMarket(id, "Will BTC close above $100k?")
	m.YesPrice = yes
	m.NoPrice = no
	m.HoursUntilExpiry = hours
	m.Liquidity = 5_000
	return m
}

func TestScreener_PickSide(t *testing.T) {
	s := NewScreener(screenerConfig(), nil, nil)

	side, price, ok := s.pickSide(screenMarket("a", 0.90, 0.10, 12))
	require.True(t, ok)
	assert.Equal(t, domain.SideYes, side)
	assert.Equal(t, 0.90, price)

	// El lado de alta probabilidad puede ser NO
	side, price, ok = s.pickSide(screenMarket("b", 0.10, 0.90, 12))
	require.True(t, ok)
	assert.Equal(t, domain.SideNo, side)
	assert.Equal(t, 0.90, price)
}

func TestScreener_PickSideRejections(t *testing.T) {
	s := NewScreener(screenerConfig(), nil, nil)

	cases := []struct {
		name   string
		market domain.Market
	}{
		{"no expiry data", screenMarket("a", 0.90, 0.10, -1)},
		{"too far out", screenMarket("b", 0.90, 0.10, 3_000)},
		{"price below band", screenMarket("c", 0.80, 0.20, 12)},
		{"price above band", screenMarket("d", 0.99, 0.01, 12)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, ok := s.pickSide(tc.market)
			assert.False(t, ok)
		})
	}

	illiquid := screenMarket("e", 0.90, 0.10, 12)
	illiquid.Liquidity = 100
	_, _, ok := s.pickSide(illiquid)
	assert.False(t, ok)
}

func TestScreener_CheckStability(t *testing.T) {
	prices := &fakePrices{samples: map[string][]float64{
		"flat":   {0.90, 0.90, 0.90},
		"moving": {0.80, 1.00, 0.90},
		"single": {0.90},
	}}
	s := NewScreener(screenerConfig(), prices, nil)
	ctx := context.Background()

	assert.InDelta(t, 0.0, s.CheckStability(ctx, "flat"), 1e-9)
	assert.InDelta(t, 0.1111, s.CheckStability(ctx, "moving"), 1e-3)

	// Con menos de dos lecturas válidas se asume inestable
	assert.Equal(t, 1.0, s.CheckStability(ctx, "single"))
	assert.Equal(t, 1.0, s.CheckStability(ctx, ""))

	failing := NewScreener(screenerConfig(), &fakePrices{err: errors.New("clob down")}, nil)
	assert.Equal(t, 1.0, failing.CheckStability(ctx, "flat"))
}

func TestScreener_WhaleSignal(t *testing.T) {
	dir := domain.NewWalletDirectory([]domain.WalletProfile{
		{Address: "0xABC123", Username: "whale-one"},
	})
	s := NewScreener(screenerConfig(), nil, dir)

	bets := []WhaleBet{
		{MarketID: "a", Wallet: "0xabc123", Amount: 50},  // conocida: cuenta con cualquier tamaño
		{MarketID: "a", Wallet: "0xdeadbeef", Amount: 100}, // desconocida y pequeña: no cuenta
		{MarketID: "b", Wallet: "0xdeadbeef", Amount: 800},
	}

	whale, total := s.whaleSignal("a", bets)
	assert.True(t, whale)
	assert.Equal(t, 50.0, total)

	whale, total = s.whaleSignal("b", bets)
	assert.True(t, whale)
	assert.Equal(t, 800.0, total)

	whale, total = s.whaleSignal("c", bets)
	assert.False(t, whale)
	assert.Zero(t, total)
}

func TestScreener_Score(t *testing.T) {
	s := NewScreener(screenerConfig(), nil, nil)

	sig := MarketSignal{WinRate: 0.90, HoursUntilExpiry: 12, Stable: true, Whale: true}
	// 0.9×0.4 + (1 − 12/24)×0.2 + 0.2 + 0.2
	assert.InDelta(t, 0.86, s.Score(sig), 1e-9)

	sig.Stable = false
	sig.Whale = false
	assert.InDelta(t, 0.46, s.Score(sig), 1e-9)
}

func TestScreener_ScreenOrdersByScore(t *testing.T) {
	prices := &fakePrices{samples: map[string][]float64{
		"tok-a-yes": {0.90, 0.90, 0.90},
		"tok-b-yes": {0.80, 1.00, 0.90},
	}}
	s := NewScreener(screenerConfig(), prices, nil)

	markets := []domain.Market{
		screenMarket("b", 0.90, 0.10, 12), // inestable
		screenMarket("a", 0.90, 0.10, 12), // estable
	}

	signals := s.Screen(context.Background(), markets, nil)
	require.Len(t, signals, 2)
	assert.Equal(t, "a", signals[0].MarketID)
	assert.True(t, signals[0].Stable)
	assert.Equal(t, "b", signals[1].MarketID)
	assert.False(t, signals[1].Stable)
}

func TestCorrelatedDeviations(t *testing.T) {
	s := NewScreener(screenerConfig(), nil, nil)

	markets := []domain.Market{
		screenMarket("a", 0.90, 0.10, 12),
		screenMarket("b", 0.92, 0.08, 12),  // corr 0.98, desviación 0.02
		screenMarket("c", 0.905, 0.095, 12), // con a: corr 0.995, desviación bajo el 1%
		screenMarket("d", 0.50, 0.50, 12),  // corr demasiado baja con el resto
	}

	pairs := s.CorrelatedDeviations(markets)
	require.NotEmpty(t, pairs)
	for _, p := range pairs {
		assert.GreaterOrEqual(t, p.Correlation, s.cfg.MinCorrelation)
		assert.Greater(t, p.Deviation, 0.01)
	}
	assert.Contains(t, pairsOf(pairs), domain.NewMarketPair("a", "b"))
	assert.NotContains(t, pairsOf(pairs), domain.NewMarketPair("a", "c"))
	assert.NotContains(t, pairsOf(pairs), domain.NewMarketPair("a", "d"))
}

func pairsOf(pairs []CorrelatedPair) []domain.MarketPair {
	out := make([]domain.MarketPair, len(pairs))
	for i, p := range pairs {
		out[i] = p.Pair
	}
	return out
}
