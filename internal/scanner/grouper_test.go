package scanner

import (
	"testing"

	"github.com/alejandrodnm/polyhedge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeMarket(id, question string) domain.Market {
	return domain.Market{
		ID:               id,
		Question:         question,
		YesTokenID:       "tok-" + id + "-yes",
		NoTokenID:        "tok-" + id + "-no",
		YesPrice:         0.5,
		NoPrice:          0.5,
		Volume:           10_000,
		Liquidity:        20_000,
		Active:           true,
		HoursUntilExpiry: -1,
	}
}

func TestBaseQuestion_CollapsesNumericVariants(t *testing.T) {
	q1 := BaseQuestion("Will BTC close above $100k? (Dec 2025)")
	q2 := BaseQuestion("Will BTC close above $120k? (Dec 2025)")
	assert.Equal(t, q1, q2)

	// Fuera del bracket la base tiene que coincidir exactamente
	q3 := BaseQuestion("Will ETH close above $5k? (Dec 2025)")
	assert.NotEqual(t, q1, q3)
}

func TestBaseQuestion_Lowercase(t *testing.T) {
	assert.Equal(t, "will eth flip btc?", BaseQuestion("Will ETH flip BTC?"))
}

func TestExtractLabel(t *testing.T) {
	// Paréntesis tiene prioridad
	assert.Equal(t, "Dec 2025", ExtractLabel("BTC above $100k (Dec 2025)"))
	// Múltiples brackets: solo el primero
	assert.Equal(t, "first", ExtractLabel("Question (first) more (second)"))
	// Sin bracket: primer match de umbral
	assert.Equal(t, "above $2B", ExtractLabel("Solana market cap above $2B this year?"))
	assert.Equal(t, "under $50", ExtractLabel("Will oil trade under $50?"))
	// Sin nada: etiqueta vacía
	assert.Equal(t, "", ExtractLabel("Will it rain tomorrow?"))
}

func TestInferPartitionType(t *testing.T) {
	cases := []struct {
		question string
		want     domain.PartitionType
	}{
		// timeframe gana a threshold cuando ambos matchean
		{"Will BTC hit $200k in 2025?", domain.PartitionTimeframe},
		{"Fed cuts rates by March 2026?", domain.PartitionTimeframe},
		{"ETH above $10k?", domain.PartitionThreshold},
		{"BTC dominance at 60 percent?", domain.PartitionThreshold},
		{"Alcaraz vs Sinner final?", domain.PartitionCandidate},
		{"Will it snow in NYC?", domain.PartitionUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, InferPartitionType(tc.question), tc.question)
	}
}

func TestGrouper_GroupsNumericSiblings(t *testing.T) {
	markets := []domain.Market{
		makeMarket("a", "Will BTC close above $100k? (Dec 2025)"),
		makeMarket("b", "Will BTC close above $120k? (Dec 2025)"),
		makeMarket("c", "Will it rain tomorrow?"), // singleton, se descarta
	}

	groups := NewGrouper().Group(markets)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Markets, 2)

	// Los mercados de entrada quedan anotados
	assert.Equal(t, groups[0].ID, markets[0].GroupID)
	assert.Equal(t, groups[0].ID, markets[1].GroupID)
	assert.Equal(t, "Dec 2025", markets[0].GroupLabel)
}

func TestGrouper_MinTwoMembers(t *testing.T) {
	markets := []domain.Market{
		makeMarket("a", "Unique question one?"),
		makeMarket("b", "Unique question two?"),
	}
	groups := NewGrouper().Group(markets)
	for _, g := range groups {
		assert.GreaterOrEqual(t, g.Size(), 2)
	}
	assert.Empty(t, groups)
}

func TestGrouper_Idempotent(t *testing.T) {
	markets := []domain.Market{
		makeMarket("a", "SOL above $200 (Jan)"),
		makeMarket("b", "SOL above $300 (Feb)"),
		makeMarket("c", "ETH above $5k (Jan)"),
		makeMarket("d", "ETH above $6k (Feb)"),
	}

	first := NewGrouper().Group(markets)
	second := NewGrouper().Group(markets) // re-agrupar mercados ya anotados

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, len(first[i].Markets), len(second[i].Markets))
	}
}

func TestGroupKey_Stable(t *testing.T) {
	assert.Equal(t, groupKey("will btc moon"), groupKey("will btc moon"))
	assert.NotEqual(t, groupKey("will btc moon"), groupKey("will eth moon"))
}
