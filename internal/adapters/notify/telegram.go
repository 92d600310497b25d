package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alejandrodnm/polyhedge/internal/domain"
)

// Telegram implementa ports.Notifier vía la Bot API de Telegram.
type Telegram struct {
	token   string
	chatID  string
	baseURL string
	client  *http.Client
}

// NewTelegram crea un notificador para el bot token y chat ID dados.
func NewTelegram(token, chatID string) *Telegram {
	return &Telegram{
		token:   token,
		chatID:  chatID,
		baseURL: "https://api.telegram.org",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify envía el resumen del ciclo como mensaje de Telegram. Los ciclos sin
// oportunidades no generan mensaje, solo hacen ruido.
func (t *Telegram) Notify(ctx context.Context, report domain.ScanReport) error {
	if len(report.TopHedges) == 0 && len(report.TopArbitrage) == 0 {
		return nil
	}
	return t.send(ctx, formatReport(report))
}

// formatReport genera el texto Markdown del mensaje.
func formatReport(report domain.ScanReport) string {
	s := report.Summary

	var sb strings.Builder
	fmt.Fprintf(&sb, "*Scan %s*\n", s.ScannedAt.Format("15:04 MST"))
	fmt.Fprintf(&sb, "%d markets, %d valid, %d groups\n", s.TotalMarkets, s.ValidMarkets, s.Groups)

	if len(report.TopHedges) > 0 {
		fmt.Fprintf(&sb, "\n*Hedges (%d)*\n", s.HedgeCount)
		for _, h := range report.TopHedges {
			fmt.Fprintf(&sb, "• [%s] %s\n  cost $%.2f, coverage %.2f%%, +$%.4f\n",
				h.TierLabel, h.Relationship, h.TotalCost, h.Coverage*100, h.ExpectedProfit)
		}
	}

	if len(report.TopArbitrage) > 0 {
		fmt.Fprintf(&sb, "\n*Arbitrage (%d)*\n", s.ArbitrageCount)
		for _, a := range report.TopArbitrage {
			fmt.Fprintf(&sb, "• %s\n  YES %.3f + NO %.3f, deviation %.4f\n",
				domain.TruncateQuestion(a.Question, a.MarketID, 60),
				a.YesPrice, a.NoPrice, a.Deviation)
		}
	}

	return sb.String()
}

// send hace el POST a sendMessage.
func (t *Telegram) send(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)

	payload := map[string]string{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("telegram: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
