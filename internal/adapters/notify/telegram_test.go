package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alejandrodnm/polyhedge/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func telegramReport() domain.ScanReport {
	return domain.ScanReport{
		Summary: domain.ScanSummary{
			ScannedAt:    time.Now().UTC(),
			TotalMarkets: 10,
			ValidMarkets: 8,
			Groups:       2,
			HedgeCount:   1,
		},
		TopHedges: []domain.HedgeOpportunity{{
			ID:           "h1",
			TierLabel:    "HIGH",
			Coverage:     0.9818,
			TotalCost:    0.17,
			Relationship: "NO on 'A' hedges against YES on 'B'",
		}},
	}
}

func TestTelegram_SendsFormattedMessage(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken-123/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	tg := NewTelegram("token-123", "chat-9")
	tg.baseURL = srv.URL

	require.NoError(t, tg.Notify(context.Background(), telegramReport()))
	assert.Equal(t, "chat-9", got["chat_id"])
	assert.Contains(t, got["text"], "HIGH")
	assert.Contains(t, got["text"], "hedges against")
}

func TestTelegram_SkipsEmptyCycles(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	tg := NewTelegram("token-123", "chat-9")
	tg.baseURL = srv.URL

	report := domain.ScanReport{Summary: domain.ScanSummary{ScannedAt: time.Now().UTC()}}
	require.NoError(t, tg.Notify(context.Background(), report))
	assert.Zero(t, calls)
}

func TestTelegram_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"ok": false}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tg := NewTelegram("token-123", "chat-9")
	tg.baseURL = srv.URL

	err := tg.Notify(context.Background(), telegramReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
