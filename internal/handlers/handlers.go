package handlers

import (
	"net/http"
	"sort"
	"time"

	"folio/internal/metrics"
	"folio/internal/models"
	"folio/internal/normalize"
	"folio/internal/refresher"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	ref *refresher.Refresher
	log *logrus.Logger
}

func NewHandler(ref *refresher.Refresher, log *logrus.Logger) *Handler {
	return &Handler{ref: ref, log: log}
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	api.GET("/overview", h.GetOverview)
	api.GET("/portfolio", h.GetPortfolio)
	api.GET("/history", h.GetHistory)
	api.GET("/stats", h.GetStats)
	api.GET("/market", h.GetMarket)
	api.GET("/rates", h.GetRates)
	api.GET("/macro", h.GetMacro)
	api.GET("/source", h.GetSource)
	api.PUT("/source", h.PutSource)
	api.POST("/refresh", h.PostRefresh)
}

func (h *Handler) GetOverview(c *gin.Context) {
	snap := h.ref.Snapshot()
	total := metrics.TotalValue(snap.Holdings)
	change, pct := metrics.TodayChange(total, snap.History, time.Now(), normalize.Location())

	c.JSON(http.StatusOK, gin.H{
		"total_value":    total,
		"change":         change,
		"change_percent": pct,
		"holdings_count": len(snap.Holdings),
		"top_holdings":   metrics.TopHoldings(snap.Holdings, 10),
		"loading":        snap.Loading,
		"error":          snap.Error,
		"last_refreshed": snap.LastRefreshed,
	})
}

// sortable holding columns, presentation-side only
var holdingSortKeys = map[string]func(a, b models.Holding) bool{
	"name":         func(a, b models.Holding) bool { return a.Name < b.Name },
	"symbol":       func(a, b models.Holding) bool { return a.Symbol < b.Symbol },
	"quantity":     func(a, b models.Holding) bool { return a.Quantity.LessThan(b.Quantity) },
	"price":        func(a, b models.Holding) bool { return a.Price.LessThan(b.Price) },
	"market_value": func(a, b models.Holding) bool { return a.MarketValue.LessThan(b.MarketValue) },
}

func (h *Handler) GetPortfolio(c *gin.Context) {
	snap := h.ref.Snapshot()
	items := snap.Holdings

	if key := c.Query("sort"); key != "" {
		less, ok := holdingSortKeys[key]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown sort key"})
			return
		}
		desc := c.DefaultQuery("order", "asc") == "desc"
		sort.SliceStable(items, func(i, j int) bool {
			if desc {
				return less(items[j], items[i])
			}
			return less(items[i], items[j])
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": metrics.TotalValue(items),
		"count": len(items),
	})
}

func (h *Handler) GetHistory(c *gin.Context) {
	snap := h.ref.Snapshot()
	c.JSON(http.StatusOK, gin.H{"points": snap.History})
}

func (h *Handler) GetStats(c *gin.Context) {
	snap := h.ref.Snapshot()
	if snap.Stats == nil {
		c.JSON(http.StatusOK, gin.H{"available": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"available": true, "stats": snap.Stats})
}

func (h *Handler) GetMarket(c *gin.Context) {
	snap := h.ref.Snapshot()
	c.JSON(http.StatusOK, gin.H{"quotes": snap.Market})
}

func (h *Handler) GetRates(c *gin.Context) {
	snap := h.ref.Snapshot()
	c.JSON(http.StatusOK, gin.H{"rates": snap.Rates})
}

func (h *Handler) GetMacro(c *gin.Context) {
	snap := h.ref.Snapshot()
	if !snap.MacroConfigured {
		// not an error: the FRED key simply is not set up
		c.JSON(http.StatusOK, gin.H{"configured": false, "points": []models.MacroPoint{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"configured": true, "points": snap.Macro})
}

func (h *Handler) GetSource(c *gin.Context) {
	snap := h.ref.Snapshot()
	c.JSON(http.StatusOK, gin.H{"url": snap.SheetURL})
}

type sourceRequest struct {
	URL string `json:"url" binding:"required,url"`
}

func (h *Handler) PutSource(c *gin.Context) {
	var req sourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("invalid source body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.ref.SetSheetURL(c.Request.Context(), req.URL); err != nil {
		h.log.Errorf("persist sheet url failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save source"})
		return
	}

	snap := h.ref.Snapshot()
	c.JSON(http.StatusOK, gin.H{"url": snap.SheetURL, "error": snap.Error})
}

func (h *Handler) PostRefresh(c *gin.Context) {
	h.ref.Refresh(c.Request.Context(), false)
	snap := h.ref.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"error":          snap.Error,
		"holdings_count": len(snap.Holdings),
		"last_refreshed": snap.LastRefreshed,
	})
}
