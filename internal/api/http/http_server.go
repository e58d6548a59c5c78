package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/VK-RED/clobby/internal/api/dto"
	"github.com/VK-RED/clobby/internal/core"
	"github.com/VK-RED/clobby/internal/domain"
	"github.com/VK-RED/clobby/internal/middleware"
)

type HTTPServer struct {
	Eng *core.Engine
}

func NewHTTPServer(eng *core.Engine) *HTTPServer {
	return &HTTPServer{Eng: eng}
}

func (s *HTTPServer) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *HTTPServer) Router() *gin.Engine {
	r := gin.Default()

	rl := middleware.NewRateLimiter(time.Millisecond * 100)
	r.Use(rl.Middleware())

	r.POST("/markets", s.createMarket)
	r.POST("/balances", s.createBalance)
	r.POST("/orders", s.placeOrder)
	r.POST("/orders/cancel", s.cancelOrder)
	r.POST("/events/consume", s.consumeEvents)
	r.POST("/withdraw", s.withdraw)
	r.GET("/orderbook", s.getDepth)
	r.GET("/balance", s.getBalance)
	r.GET("/market", s.getMarket)

	return r
}

func caller(c *gin.Context) string {
	return c.GetHeader(middleware.ClientID)
}

func (s *HTTPServer) createMarket(c *gin.Context) {
	var req dto.CreateMarketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lotSize, err := dto.ParseAmount(req.BaseLotSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	m, err := s.Eng.CreateMarket(c.Request.Context(), req.Name, req.BaseAsset, req.QuoteAsset, lotSize, req.EventAuthority)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.CreateMarketResponse{
		Name:       m.Name,
		BaseVault:  m.BaseVault,
		QuoteVault: m.QuoteVault,
	})
}

func (s *HTTPServer) createBalance(c *gin.Context) {
	var req dto.CreateBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := s.Eng.CreatePendingBalance(c.Request.Context(), req.Market, caller(c))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, convertBalance(b))
}

func (s *HTTPServer) placeOrder(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	side, err := domain.SideFromString(req.Side)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lots, err := dto.ParseAmount(req.BaseLots)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	price, err := dto.ParseAmount(req.PricePerLot)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.Eng.PlaceOrder(c.Request.Context(), core.PlaceOrderParams{
		Market:            req.Market,
		User:              caller(c),
		Side:              side,
		BaseLots:          lots,
		PricePerLot:       price,
		ImmediateOrCancel: req.ImmediateOrCancel,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	fills := make([]dto.Fill, 0, len(res.Fills))
	for _, f := range res.Fills {
		fills = append(fills, dto.Fill{
			MakerOrderID: f.MakerOrderID,
			PricePerLot:  dto.FormatAmount(f.PricePerLot),
			BaseAmount:   dto.FormatAmount(f.BaseAmount),
			QuoteAmount:  dto.FormatAmount(f.QuoteAmount),
		})
	}
	c.JSON(http.StatusOK, dto.PlaceOrderResponse{
		OrderID:       res.OrderID,
		Fills:         fills,
		BaseCredited:  dto.FormatAmount(res.BaseCredited),
		QuoteCredited: dto.FormatAmount(res.QuoteCredited),
		RemainingBase: dto.FormatAmount(res.RemainingBase),
		Rested:        res.Rested,
	})
}

func (s *HTTPServer) cancelOrder(c *gin.Context) {
	var req dto.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	side, err := domain.SideFromString(req.Side)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.Eng.CancelOrder(c.Request.Context(), req.Market, caller(c), side, req.OrderID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.CancelOrderResponse{OrderID: req.OrderID, Cancelled: true})
}

func (s *HTTPServer) consumeEvents(c *gin.Context) {
	var req dto.ConsumeEventsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n, err := s.Eng.ConsumeEvents(c.Request.Context(), req.Market, caller(c))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.ConsumeEventsResponse{Consumed: n})
}

func (s *HTTPServer) withdraw(c *gin.Context) {
	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.Eng.WithdrawPendingBalance(c.Request.Context(), req.Market, caller(c)); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.WithdrawResponse{Market: req.Market, User: caller(c)})
}

func (s *HTTPServer) getDepth(c *gin.Context) {
	market := c.Query("market")
	if market == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "market required"})
		return
	}
	snap, err := s.Eng.GetDepth(c.Request.Context(), market)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.DepthResponse{
		Market:    snap.Market,
		Bids:      convertOrders(snap.Bids),
		Asks:      convertOrders(snap.Asks),
		Timestamp: snap.Timestamp,
	})
}

func (s *HTTPServer) getMarket(c *gin.Context) {
	// Market names carry slashes, so they travel as a query parameter.
	name := c.Query("market")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "market required"})
		return
	}
	m, err := s.Eng.GetMarket(c.Request.Context(), name)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.MarketResponse{
		Name:           m.Name,
		BaseAsset:      m.BaseAsset,
		QuoteAsset:     m.QuoteAsset,
		BaseVault:      m.BaseVault,
		QuoteVault:     m.QuoteVault,
		BaseLotSize:    dto.FormatAmount(m.BaseLotSize),
		TotalOrders:    m.TotalOrders,
		EventAuthority: m.EventAuthority,
		PendingEvents:  m.Events.EventsToProcess,
	})
}

func (s *HTTPServer) getBalance(c *gin.Context) {
	market := c.Query("market")
	if market == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "market required"})
		return
	}
	b, err := s.Eng.GetPendingBalance(c.Request.Context(), market, caller(c))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, convertBalance(b))
}

func convertOrders(in []domain.Order) []dto.BookOrder {
	out := make([]dto.BookOrder, 0, len(in))
	for _, o := range in {
		out = append(out, dto.BookOrder{
			ID:            o.ID,
			Owner:         o.Owner,
			RemainingBase: dto.FormatAmount(o.RemainingBase),
			PricePerLot:   dto.FormatAmount(o.PricePerLot),
		})
	}
	return out
}

func convertBalance(b *domain.PendingBalance) dto.BalanceResponse {
	return dto.BalanceResponse{
		Market:      b.Market,
		User:        b.User,
		BaseAmount:  dto.FormatAmount(b.BaseAmount),
		QuoteAmount: dto.FormatAmount(b.QuoteAmount),
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrMarketNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrBalanceNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrMarketExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidOrder),
		errors.Is(err, domain.ErrInvalidMarket),
		errors.Is(err, domain.ErrInvalidSide),
		errors.Is(err, domain.ErrOverflow):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrOrderFilledPartially),
		errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrBookFull),
		errors.Is(err, domain.ErrEventLogFull):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
