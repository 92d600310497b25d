package notify_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alejandrodnm/polyhedge/internal/adapters/notify"
	"github.com/alejandrodnm/polyhedge/internal/domain"
	"github.com/alejandrodnm/polyhedge/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeReport() domain.ScanReport {
	return domain.ScanReport{
		Summary: domain.ScanSummary{
			ScannedAt:      time.Now().UTC(),
			TotalMarkets:   42,
			ValidMarkets:   30,
			DroppedRecords: 2,
			Groups:         5,
			ArbitrageCount: 1,
			HedgeCount:     1,
		},
		ExpiryBuckets: map[string]int{"<1h": 3, "48h+": 10, "N/A": 2},
		TopHedges: []domain.HedgeOpportunity{{
			ID:             "h1",
			Target:         domain.Market{ID: "a", Question: "Will BTC close above $100k?"},
			TargetPosition: domain.SideNo,
			Cover:          domain.Market{ID: "b", Question: "Will ETH close above $10k?"},
			CoverPosition:  domain.SideYes,
			Coverage:       0.9818,
			Tier:           1,
			TierLabel:      "HIGH",
			TotalCost:      0.17,
			ExpectedProfit: 0.8118,
			Relationship:   "NO on 'Will BTC close above $100k?' hedges against YES on 'Will ETH close above $10k?'",
		}},
		TopArbitrage: []domain.ArbitrageOpportunity{{
			MarketID:   "c",
			Question:   "Will SOL close above $500?",
			YesPrice:   0.60,
			NoPrice:    0.44,
			Deviation:  0.04,
			Profit:     4.0,
			Validation: domain.Validation{Valid: true},
		}},
	}
}

func TestConsole_NotifyTable(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true)

	require.NoError(t, n.Notify(context.Background(), makeReport()))

	out := buf.String()
	assert.Contains(t, out, "TOP HEDGE OPPORTUNITIES")
	assert.Contains(t, out, "HIGH")
	assert.Contains(t, out, "Will BTC close above $100k?")
	assert.Contains(t, out, "98.18%")
	assert.Contains(t, out, "ARBITRAGE DEVIATIONS")
	assert.Contains(t, out, "Will SOL close above $500?")
	assert.Contains(t, out, "expiry:")
	assert.Contains(t, out, "48h+:10")
}

func TestConsole_NotifyCompact(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	require.NoError(t, n.Notify(context.Background(), makeReport()))

	out := buf.String()
	assert.Contains(t, out, "42 mkts")
	assert.Contains(t, out, "hedges:1")
	assert.Contains(t, out, "best HIGH")
}

func TestConsole_NotifyEmptyCycle(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true)

	report := domain.ScanReport{Summary: domain.ScanSummary{ScannedAt: time.Now().UTC()}}
	require.NoError(t, n.Notify(context.Background(), report))
	assert.Contains(t, buf.String(), "no hedge opportunities this cycle")
}

type stubNotifier struct {
	calls int
	err   error
}

func (s *stubNotifier) Notify(context.Context, domain.ScanReport) error {
	s.calls++
	return s.err
}

func TestMulti_AllNotifiersReceiveReport(t *testing.T) {
	a := &stubNotifier{err: errors.New("down")}
	b := &stubNotifier{}
	m := notify.Multi{a, b}

	err := m.Notify(context.Background(), makeReport())
	require.Error(t, err)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls, "a failing notifier must not starve the rest")
}

var _ ports.Notifier = notify.Multi{}
