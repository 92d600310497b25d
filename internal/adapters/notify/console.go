package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

// Console implementa ports.Notifier escribiendo el reporte del ciclo.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
// table=true imprime tablas completas; false, una línea compacta por ciclo.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// Notify imprime el reporte en el modo configurado.
func (c *Console) Notify(_ context.Context, report domain.ScanReport) error {
	if c.table {
		c.printFull(report)
	} else {
		c.printCompact(report)
	}
	return nil
}

// printCompact imprime lo esencial en una línea.
func (c *Console) printCompact(report domain.ScanReport) {
	now := time.Now().Format("15:04:05")
	s := report.Summary

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d mkts (%d valid, %d dropped) → groups:%d arb:%d hedges:%d",
		now, s.TotalMarkets, s.ValidMarkets, s.DroppedRecords,
		s.Groups, s.ArbitrageCount, s.HedgeCount)

	if len(report.TopHedges) > 0 {
		best := report.TopHedges[0]
		fmt.Fprintf(&sb, " | best %s cov %.2f%% cost $%.2f",
			best.TierLabel, best.Coverage*100, best.TotalCost)
	}

	fmt.Fprintln(c.out, sb.String())
}

// printFull imprime el reporte completo: resumen, histograma de expiración
// y las tablas de oportunidades.
func (c *Console) printFull(report domain.ScanReport) {
	now := time.Now().Format("15:04:05")
	s := report.Summary

	fmt.Fprintf(c.out, "\n[%s] scan: %d markets, %d valid, %d dropped, %d groups\n",
		now, s.TotalMarkets, s.ValidMarkets, s.DroppedRecords, s.Groups)

	c.printExpiryBuckets(report.ExpiryBuckets)
	c.printHedges(report.TopHedges)
	c.printArbitrage(report.TopArbitrage)
}

// printExpiryBuckets imprime el histograma de expiración en el orden fijo de
// los rangos.
func (c *Console) printExpiryBuckets(buckets map[string]int) {
	if len(buckets) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString("  expiry:")
	for _, b := range domain.TimeBuckets {
		fmt.Fprintf(&sb, " %s:%d", b.Label, buckets[b.Label])
	}
	if n, ok := buckets["N/A"]; ok {
		fmt.Fprintf(&sb, " N/A:%d", n)
	}
	fmt.Fprintln(c.out, sb.String())
}

// printHedges imprime la tabla de oportunidades de hedge.
func (c *Console) printHedges(hedges []domain.HedgeOpportunity) {
	if len(hedges) == 0 {
		fmt.Fprintln(c.out, "  no hedge opportunities this cycle")
		return
	}

	fmt.Fprintf(c.out, "\n  TOP HEDGE OPPORTUNITIES (%d)\n", len(hedges))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Tier", "Target", "Pos", "Cover", "Pos", "Cost", "Coverage", "ExpProfit")

	for i, h := range hedges {
		table.Append(
			fmt.Sprintf("%d", i+1),
			h.TierLabel,
			domain.TruncateQuestion(h.Target.Question, h.Target.ID, 35),
			string(h.TargetPosition),
			domain.TruncateQuestion(h.Cover.Question, h.Cover.ID, 35),
			string(h.CoverPosition),
			fmt.Sprintf("$%.2f", h.TotalCost),
			fmt.Sprintf("%.2f%%", h.Coverage*100),
			fmt.Sprintf("$%.4f", h.ExpectedProfit),
		)
	}

	table.Render()
}

// printArbitrage imprime la tabla de desviaciones YES+NO.
func (c *Console) printArbitrage(arbs []domain.ArbitrageOpportunity) {
	if len(arbs) == 0 {
		return
	}

	fmt.Fprintf(c.out, "\n  ARBITRAGE DEVIATIONS (%d)\n", len(arbs))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Market", "YES", "NO", "Deviation", "Profit%", "Valid")

	for i, a := range arbs {
		valid := "yes"
		if !a.Validation.Valid {
			valid = strings.Join(a.Validation.Reasons, "; ")
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			domain.TruncateQuestion(a.Question, a.MarketID, 40),
			fmt.Sprintf("%.3f", a.YesPrice),
			fmt.Sprintf("%.3f", a.NoPrice),
			fmt.Sprintf("%.4f", a.Deviation),
			fmt.Sprintf("%.2f%%", a.Profit),
			valid,
		)
	}

	table.Render()
}
