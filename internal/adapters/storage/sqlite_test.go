package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/polyhedge/internal/adapters/storage"
	"github.com/alejandrodnm/polyhedge/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeMarket(id string) domain.Market {
	return domain.Market{
		ID:         id,
		Question:   "Will X happen?",
		Slug:       "will-x-happen",
		YesTokenID: "tok-" + id + "-yes",
		NoTokenID:  "tok-" + id + "-no",
		YesPrice:   0.6,
		NoPrice:    0.4,
		Volume:     10_000,
		Liquidity:  20_000,
		Active:     true,
		GroupID:    "group_1",
	}
}

func makeHedge(coverage float64) domain.HedgeOpportunity {
	tier, label := domain.ClassifyTier(coverage)
	return domain.HedgeOpportunity{
		ID:             uuid.New().String(),
		Target:         makeMarket("t"),
		TargetPosition: domain.SideNo,
		Cover:          makeMarket("c"),
		CoverPosition:  domain.SideYes,
		Coverage:       coverage,
		Tier:           tier,
		TierLabel:      label,
		TotalCost:      0.17,
		ExpectedProfit: coverage - 0.17,
		Relationship:   "NO on 'Will X happen?' hedges against YES on 'Will X happen?'",
	}
}

func TestSQLiteStorage_UpsertMarketsIsIdempotent(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	m := makeMarket("m1")
	require.NoError(t, db.UpsertMarkets(ctx, []domain.Market{m}))

	// Segundo upsert con precios nuevos: misma fila, valores actualizados
	m.YesPrice = 0.7
	require.NoError(t, db.UpsertMarkets(ctx, []domain.Market{m}))
}

func TestSQLiteStorage_SaveAndRecentHedges(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	hedges := []domain.HedgeOpportunity{
		makeHedge(0.9818),
		makeHedge(0.91),
	}
	require.NoError(t, db.SaveHedges(ctx, hedges))

	recent, err := db.RecentHedges(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	// Mismo instante de detección → mejor cobertura primero
	assert.InDelta(t, 0.9818, recent[0].Coverage, 1e-9)
	assert.Equal(t, 1, recent[0].Tier)
	assert.Equal(t, "HIGH", recent[0].TierLabel)
	assert.Equal(t, domain.SideNo, recent[0].TargetPosition)
	assert.Equal(t, domain.SideYes, recent[0].CoverPosition)
	assert.Equal(t, "t", recent[0].Target.ID)
}

func TestSQLiteStorage_SaveHedgesSameIDTwice(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	h := makeHedge(0.95)
	require.NoError(t, db.SaveHedges(ctx, []domain.HedgeOpportunity{h}))
	require.NoError(t, db.SaveHedges(ctx, []domain.HedgeOpportunity{h}))

	recent, err := db.RecentHedges(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestSQLiteStorage_EmptySlices(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	assert.NoError(t, db.UpsertMarkets(ctx, nil))
	assert.NoError(t, db.UpsertGroups(ctx, nil))
	assert.NoError(t, db.SaveHedges(ctx, nil))
}

func TestSQLiteStorage_LogScan(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	summary := domain.ScanSummary{
		ScannedAt:      time.Now().UTC(),
		TotalMarkets:   120,
		ValidMarkets:   80,
		DroppedRecords: 3,
		Groups:         12,
		ArbitrageCount: 1,
		HedgeCount:     7,
	}
	assert.NoError(t, db.LogScan(context.Background(), summary))
}

func TestSQLiteStorage_UpsertGroups(t *testing.T) {
	db, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer db.Close()

	group := domain.MarketGroup{
		ID:            "group_42",
		Name:          "will btc close above $?",
		PartitionType: domain.PartitionThreshold,
		Markets:       []domain.Market{makeMarket("a"), makeMarket("b")},
	}
	ctx := context.Background()
	require.NoError(t, db.UpsertGroups(ctx, []domain.MarketGroup{group}))
	require.NoError(t, db.UpsertGroups(ctx, []domain.MarketGroup{group}))
}
