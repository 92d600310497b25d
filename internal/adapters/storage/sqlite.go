package storage

// sqlite.go — persistencia del estado de cada ciclo de escaneo.
//
// Estrategia:
//   - `markets` y `market_groups`: UNA fila por entidad (UPSERT por id), con
//     last_seen para poder podar lo que deja de aparecer.
//   - `hedge_opportunities`: insert idempotente por UUID. Solo llega el top
//     de cada ciclo; el resto no aporta señal útil como histórico.
//   - `scan_history`: resumen ligero por ciclo, siempre 1 fila.
//   - Prune automático al arrancar: historial > 30d, hedges > 14d, mercados
//     no vistos en 7d.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/polyhedge/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
-- Última foto conocida de cada mercado
CREATE TABLE IF NOT EXISTS markets (
    id          TEXT PRIMARY KEY,
    question    TEXT NOT NULL,
    slug        TEXT,
    condition_id TEXT,
    yes_price   REAL NOT NULL DEFAULT 0,
    no_price    REAL NOT NULL DEFAULT 0,
    volume      REAL NOT NULL DEFAULT 0,
    liquidity   REAL NOT NULL DEFAULT 0,
    end_date    DATETIME,
    group_id    TEXT,
    group_label TEXT,
    active      INTEGER NOT NULL DEFAULT 1,
    last_seen   DATETIME NOT NULL
);

-- Grupos de mercados relacionados
CREATE TABLE IF NOT EXISTS market_groups (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    partition_type TEXT,
    member_count   INTEGER NOT NULL DEFAULT 0,
    last_seen      DATETIME NOT NULL
);

-- Oportunidades de hedge detectadas (solo el top de cada ciclo)
CREATE TABLE IF NOT EXISTS hedge_opportunities (
    id               TEXT PRIMARY KEY,
    target_market_id TEXT NOT NULL,
    target_question  TEXT,
    target_position  TEXT NOT NULL,
    cover_market_id  TEXT NOT NULL,
    cover_question   TEXT,
    cover_position   TEXT NOT NULL,
    coverage         REAL NOT NULL,
    tier             INTEGER NOT NULL,
    tier_label       TEXT NOT NULL,
    total_cost       REAL NOT NULL,
    expected_profit  REAL NOT NULL,
    relationship     TEXT,
    detected_at      DATETIME NOT NULL
);

-- Resumen ligero por ciclo de scan
CREATE TABLE IF NOT EXISTS scan_history (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    scanned_at      DATETIME NOT NULL,
    total_markets   INTEGER NOT NULL DEFAULT 0,
    valid_markets   INTEGER NOT NULL DEFAULT 0,
    dropped_records INTEGER NOT NULL DEFAULT 0,
    group_count     INTEGER NOT NULL DEFAULT 0,
    arbitrage_count INTEGER NOT NULL DEFAULT 0,
    hedge_count     INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_markets_group   ON markets(group_id);
CREATE INDEX IF NOT EXISTS idx_markets_last    ON markets(last_seen DESC);
CREATE INDEX IF NOT EXISTS idx_hedges_detected ON hedge_opportunities(detected_at DESC);
CREATE INDEX IF NOT EXISTS idx_hedges_coverage ON hedge_opportunities(coverage DESC);
CREATE INDEX IF NOT EXISTS idx_scans_at        ON scan_history(scanned_at DESC);
`

const (
	retentionScans   = 30 * 24 * time.Hour
	retentionHedges  = 14 * 24 * time.Hour
	retentionMarkets = 7 * 24 * time.Hour
)

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia datos antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// UpsertMarkets guarda o actualiza los mercados del ciclo.
func (s *SQLiteStorage) UpsertMarkets(ctx context.Context, markets []domain.Market) error {
	if len(markets) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.UpsertMarkets: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO markets
			(id, question, slug, condition_id, yes_price, no_price,
			 volume, liquidity, end_date, group_id, group_label, active, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			question    = excluded.question,
			slug        = excluded.slug,
			condition_id = excluded.condition_id,
			yes_price   = excluded.yes_price,
			no_price    = excluded.no_price,
			volume      = excluded.volume,
			liquidity   = excluded.liquidity,
			end_date    = excluded.end_date,
			group_id    = excluded.group_id,
			group_label = excluded.group_label,
			active      = excluded.active,
			last_seen   = excluded.last_seen
	`)
	if err != nil {
		return fmt.Errorf("storage.UpsertMarkets: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, m := range markets {
		active := 0
		if m.Active {
			active = 1
		}
		var endDate *time.Time
		if m.HasEndDate() {
			t := m.EndDate.UTC()
			endDate = &t
		}

		if _, err := stmt.ExecContext(ctx,
			m.ID, m.Question, m.Slug, m.ConditionID,
			m.YesPrice, m.NoPrice, m.Volume, m.Liquidity,
			endDate, m.GroupID, m.GroupLabel, active, now,
		); err != nil {
			return fmt.Errorf("storage.UpsertMarkets: upsert %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.UpsertMarkets: commit: %w", err)
	}
	return nil
}

// UpsertGroups guarda o actualiza los grupos del ciclo.
func (s *SQLiteStorage) UpsertGroups(ctx context.Context, groups []domain.MarketGroup) error {
	if len(groups) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.UpsertGroups: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO market_groups (id, name, partition_type, member_count, last_seen)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name           = excluded.name,
			partition_type = excluded.partition_type,
			member_count   = excluded.member_count,
			last_seen      = excluded.last_seen
	`)
	if err != nil {
		return fmt.Errorf("storage.UpsertGroups: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, g := range groups {
		if _, err := stmt.ExecContext(ctx,
			g.ID, g.Name, string(g.PartitionType), g.Size(), now,
		); err != nil {
			return fmt.Errorf("storage.UpsertGroups: upsert %s: %w", g.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.UpsertGroups: commit: %w", err)
	}
	return nil
}

// SaveHedges inserta las oportunidades detectadas. Reinsertar el mismo UUID
// es un no-op.
func (s *SQLiteStorage) SaveHedges(ctx context.Context, hedges []domain.HedgeOpportunity) error {
	if len(hedges) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveHedges: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO hedge_opportunities
			(id, target_market_id, target_question, target_position,
			 cover_market_id, cover_question, cover_position,
			 coverage, tier, tier_label, total_cost, expected_profit,
			 relationship, detected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveHedges: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, h := range hedges {
		if _, err := stmt.ExecContext(ctx,
			h.ID,
			h.Target.ID, h.Target.Question, string(h.TargetPosition),
			h.Cover.ID, h.Cover.Question, string(h.CoverPosition),
			h.Coverage, h.Tier, h.TierLabel, h.TotalCost, h.ExpectedProfit,
			h.Relationship, now,
		); err != nil {
			return fmt.Errorf("storage.SaveHedges: insert %s: %w", h.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveHedges: commit: %w", err)
	}
	return nil
}

// LogScan añade el resumen del ciclo al historial.
func (s *SQLiteStorage) LogScan(ctx context.Context, summary domain.ScanSummary) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scan_history
			(scanned_at, total_markets, valid_markets, dropped_records,
			 group_count, arbitrage_count, hedge_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		summary.ScannedAt.UTC(),
		summary.TotalMarkets,
		summary.ValidMarkets,
		summary.DroppedRecords,
		summary.Groups,
		summary.ArbitrageCount,
		summary.HedgeCount,
	)
	if err != nil {
		return fmt.Errorf("storage.LogScan: %w", err)
	}
	return nil
}

// RecentHedges devuelve las últimas oportunidades registradas, las más
// recientes primero (a igual fecha, mejor cobertura primero).
func (s *SQLiteStorage) RecentHedges(ctx context.Context, limit int) ([]domain.HedgeOpportunity, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, target_market_id, target_question, target_position,
		       cover_market_id, cover_question, cover_position,
		       coverage, tier, tier_label, total_cost, expected_profit, relationship
		FROM hedge_opportunities
		ORDER BY detected_at DESC, coverage DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.RecentHedges: query: %w", err)
	}
	defer rows.Close()

	var hedges []domain.HedgeOpportunity
	for rows.Next() {
		var h domain.HedgeOpportunity
		var tPos, cPos string

		if err := rows.Scan(
			&h.ID,
			&h.Target.ID, &h.Target.Question, &tPos,
			&h.Cover.ID, &h.Cover.Question, &cPos,
			&h.Coverage, &h.Tier, &h.TierLabel, &h.TotalCost, &h.ExpectedProfit,
			&h.Relationship,
		); err != nil {
			return nil, fmt.Errorf("storage.RecentHedges: scan row: %w", err)
		}

		h.TargetPosition = domain.Side(tPos)
		h.CoverPosition = domain.Side(cPos)
		hedges = append(hedges, h)
	}

	return hedges, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// pruneOld borra datos fuera de las ventanas de retención. Best effort.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	now := time.Now().UTC()
	s.db.ExecContext(ctx, `DELETE FROM scan_history WHERE scanned_at < ?`, now.Add(-retentionScans))
	s.db.ExecContext(ctx, `DELETE FROM hedge_opportunities WHERE detected_at < ?`, now.Add(-retentionHedges))
	s.db.ExecContext(ctx, `DELETE FROM markets WHERE last_seen < ?`, now.Add(-retentionMarkets))
	s.db.ExecContext(ctx, `DELETE FROM market_groups WHERE last_seen < ?`, now.Add(-retentionMarkets))
}
