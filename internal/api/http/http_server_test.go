package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VK-RED/clobby/internal/adapter/in_memory"
	"github.com/VK-RED/clobby/internal/api/dto"
	"github.com/VK-RED/clobby/internal/core"
)

func newTestRouter(t *testing.T) (*gin.Engine, *in_memory.Vault) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	vault := in_memory.NewVault()
	eng := core.NewEngine(in_memory.NewMemoryRepo(), in_memory.NewCache(), vault, nil, nil)
	return NewHTTPServer(eng).Router(), vault
}

// do issues one request, waiting out the per-client rate limit window first.
func do(t *testing.T, r *gin.Engine, method, path, clientID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	time.Sleep(105 * time.Millisecond)

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if clientID != "" {
		req.Header.Set("X-Client-ID", clientID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestServer_TradeLifecycle(t *testing.T) {
	r, vault := newTestRouter(t)
	vault.Fund("alice", "USDC", 10_000)
	vault.Fund("bob", "SOL", 1_000)

	w := do(t, r, http.MethodPost, "/markets", "admin", dto.CreateMarketRequest{
		Name: "SOL/USDC", BaseAsset: "SOL", QuoteAsset: "USDC",
		BaseLotSize: "100", EventAuthority: "cranker",
	})
	require.Equal(t, http.StatusOK, w.Code)
	market := decode[dto.CreateMarketResponse](t, w)
	assert.Equal(t, "SOL/USDC", market.Name)
	assert.NotEmpty(t, market.BaseVault)

	w = do(t, r, http.MethodPost, "/balances", "bob", dto.CreateBalanceRequest{Market: "SOL/USDC"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/orders", "bob", dto.PlaceOrderRequest{
		Market: "SOL/USDC", Side: "ask", BaseLots: "2", PricePerLot: "1000",
	})
	require.Equal(t, http.StatusOK, w.Code)
	ask := decode[dto.PlaceOrderResponse](t, w)
	assert.True(t, ask.Rested)
	assert.Empty(t, ask.Fills)

	w = do(t, r, http.MethodGet, "/orderbook?market=SOL/USDC", "viewer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	depth := decode[dto.DepthResponse](t, w)
	require.Len(t, depth.Asks, 1)
	assert.Equal(t, "200", depth.Asks[0].RemainingBase)
	assert.Equal(t, "1000", depth.Asks[0].PricePerLot)

	w = do(t, r, http.MethodPost, "/orders", "alice", dto.PlaceOrderRequest{
		Market: "SOL/USDC", Side: "bid", BaseLots: "2", PricePerLot: "1000",
	})
	require.Equal(t, http.StatusOK, w.Code)
	bid := decode[dto.PlaceOrderResponse](t, w)
	require.Len(t, bid.Fills, 1)
	assert.Equal(t, ask.OrderID, bid.Fills[0].MakerOrderID)
	assert.Equal(t, "2000", bid.Fills[0].QuoteAmount)
	assert.Equal(t, "200", bid.BaseCredited)
	assert.False(t, bid.Rested)

	w = do(t, r, http.MethodPost, "/events/consume", "cranker", dto.ConsumeEventsRequest{Market: "SOL/USDC"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[dto.ConsumeEventsResponse](t, w).Consumed)

	w = do(t, r, http.MethodGet, "/balance?market=SOL/USDC", "bob", nil)
	require.Equal(t, http.StatusOK, w.Code)
	bal := decode[dto.BalanceResponse](t, w)
	assert.Equal(t, "2000", bal.QuoteAmount)
	assert.Equal(t, "0", bal.BaseAmount)

	w = do(t, r, http.MethodPost, "/withdraw", "bob", dto.WithdrawRequest{Market: "SOL/USDC"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint64(2000), vault.Holdings("bob", "USDC"))

	w = do(t, r, http.MethodGet, "/market?market=SOL/USDC", "viewer2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	info := decode[dto.MarketResponse](t, w)
	assert.Equal(t, "SOL/USDC", info.Name)
	assert.Equal(t, uint64(2), info.TotalOrders)
	assert.Zero(t, info.PendingEvents)
}

func TestServer_RequiresClientID(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/orderbook?market=SOL/USDC", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_RateLimitsPerClient(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/orderbook?market=nope", "hasty", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Second request inside the window, no sleep through the helper.
	req := httptest.NewRequest(http.MethodGet, "/orderbook?market=nope", nil)
	req.Header.Set("X-Client-ID", "hasty")
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusTooManyRequests, w2.Code)
}

func TestServer_ErrorMapping(t *testing.T) {
	r, vault := newTestRouter(t)
	vault.Fund("alice", "USDC", 10_000)

	w := do(t, r, http.MethodPost, "/markets", "admin", dto.CreateMarketRequest{
		Name: "SOL/USDC", BaseAsset: "SOL", QuoteAsset: "USDC",
		BaseLotSize: "100", EventAuthority: "cranker",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Duplicate market.
	w = do(t, r, http.MethodPost, "/markets", "admin2", dto.CreateMarketRequest{
		Name: "SOL/USDC", BaseAsset: "SOL", QuoteAsset: "USDC",
		BaseLotSize: "100", EventAuthority: "cranker",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown market.
	w = do(t, r, http.MethodGet, "/orderbook?market=ETH/USDC", "viewer", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Only the event authority may consume.
	w = do(t, r, http.MethodPost, "/events/consume", "mallory", dto.ConsumeEventsRequest{Market: "SOL/USDC"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Unfunded taker.
	w = do(t, r, http.MethodPost, "/orders", "pauper", dto.PlaceOrderRequest{
		Market: "SOL/USDC", Side: "bid", BaseLots: "1", PricePerLot: "1000",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Fractional lot count.
	w = do(t, r, http.MethodPost, "/orders", "alice", dto.PlaceOrderRequest{
		Market: "SOL/USDC", Side: "bid", BaseLots: "1.5", PricePerLot: "1000",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown side.
	w = do(t, r, http.MethodPost, "/orders", "alice2", dto.PlaceOrderRequest{
		Market: "SOL/USDC", Side: "short", BaseLots: "1", PricePerLot: "1000",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
