package notify

import (
	"fmt"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/polyhedge/internal/domain"
	"github.com/alejandrodnm/polyhedge/internal/scanner"
)

// PrintSignals imprime el resultado del screener de alta probabilidad.
func (c *Console) PrintSignals(signals []scanner.MarketSignal, wallets *domain.WalletDirectory) {
	if len(signals) == 0 {
		fmt.Fprintln(c.out, "  no markets passed the screen")
		return
	}

	fmt.Fprintf(c.out, "\n  HIGH-PROBABILITY SIGNALS (%d)\n", len(signals))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Market", "Side", "Price", "Hours", "Volatility", "Whale", "Score")

	for i, sig := range signals {
		stable := fmt.Sprintf("%.4f", sig.Volatility)
		if !sig.Stable {
			stable += " !"
		}
		whale := "-"
		if sig.Whale {
			whale = fmt.Sprintf("$%.0f", sig.WhaleAmount)
		}
		table.Append(
			fmt.Sprintf("%d", i+1),
			domain.TruncateQuestion(sig.Question, sig.MarketID, 40),
			string(sig.Side),
			fmt.Sprintf("%.3f", sig.Price),
			fmt.Sprintf("%.1f", sig.HoursUntilExpiry),
			stable,
			whale,
			fmt.Sprintf("%.3f", sig.Score),
		)
	}

	table.Render()

	if wallets != nil {
		fmt.Fprintf(c.out, "  whale signal backed by %d tracked wallets\n", wallets.Len())
	}
}

// PrintCorrelated imprime pares de mercados con alta correlación y
// desviación explotable.
func (c *Console) PrintCorrelated(pairs []scanner.CorrelatedPair) {
	if len(pairs) == 0 {
		return
	}

	fmt.Fprintf(c.out, "\n  CORRELATED DEVIATIONS (%d)\n", len(pairs))
	for _, p := range pairs {
		fmt.Fprintf(c.out, "  %s / %s  corr %.4f  deviation %.4f\n",
			p.Pair.A, p.Pair.B, p.Correlation, p.Deviation)
	}
}
