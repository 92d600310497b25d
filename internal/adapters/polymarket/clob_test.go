package polymarket_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alejandrodnm/polyhedge/internal/adapters/polymarket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/price", r.URL.Path)
		assert.Equal(t, "tok-1", r.URL.Query().Get("token_id"))
		assert.Equal(t, "BUY", r.URL.Query().Get("side"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"price": "0.615"}`))
	}))
	defer srv.Close()

	client := polymarket.NewClient(srv.URL, "")
	price, err := client.FetchPrice(context.Background(), "tok-1", "BUY")
	require.NoError(t, err)
	assert.InDelta(t, 0.615, price, 1e-9)
}

func TestFetchOrderBook_Sorted(t *testing.T) {
	fixture := `{
		"asset_id": "tok-1",
		"bids": [
			{"price": "0.58", "size": "100"},
			{"price": "0.61", "size": "50"}
		],
		"asks": [
			{"price": "0.66", "size": "80"},
			{"price": "0.63", "size": "40"}
		]
	}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/book", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fixture))
	}))
	defer srv.Close()

	client := polymarket.NewClient(srv.URL, "")
	book, err := client.FetchOrderBook(context.Background(), "tok-1")
	require.NoError(t, err)

	assert.Equal(t, "tok-1", book.TokenID)

	// Bids: mayor a menor
	require.Len(t, book.Bids, 2)
	assert.InDelta(t, 0.61, book.BestBid(), 1e-9)

	// Asks: menor a mayor
	require.Len(t, book.Asks, 2)
	assert.InDelta(t, 0.63, book.BestAsk(), 1e-9)

	assert.InDelta(t, 0.62, book.Midpoint(), 1e-9)
	assert.InDelta(t, 0.02, book.Spread(), 1e-9)
}

func TestFetchPrice_ClientErrorNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, `{"error": "invalid token"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := polymarket.NewClient(srv.URL, "")
	_, err := client.FetchPrice(context.Background(), "bogus", "BUY")
	require.Error(t, err)
	assert.Equal(t, 1, calls, "4xx must not be retried")
}
