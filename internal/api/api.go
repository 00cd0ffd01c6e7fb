package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/DeWolfRobin/tf2autobot/internal/pricer"
	priceService "github.com/DeWolfRobin/tf2autobot/internal/services/price"
)

// PriceStore is the local price store the API serves from.
type PriceStore interface {
	GetPrice(ctx context.Context, sku string) (pricer.Item, error)
	ListPrices(ctx context.Context) ([]pricer.Item, error)
	RefreshItem(ctx context.Context, sku string) (pricer.Item, error)
	SyncPricelist(ctx context.Context) (int, error)
}

// Pricer is the remote pricer used for live lookups.
type Pricer interface {
	GetPrice(ctx context.Context, sku string) (*pricer.GetItemPriceResponse, error)
	GetOptions() pricer.Options
}

type Options struct {
	Store     PriceStore
	Pricer    Pricer
	Gatherer  prometheus.Gatherer
	JWTSecret string
	Logger    logrus.FieldLogger
}

type APIHandler struct {
	store  PriceStore
	pricer Pricer
	log    logrus.FieldLogger
}

// NewRouter builds the HTTP server: /metrics at the root and the price API
// under /api/v1.
func NewRouter(opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	logger := opts.Logger.WithField("component", "api")

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(logger), CORS())

	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	apiGroup := r.Group("/api/v1")
	SetupRoutes(apiGroup, opts.Store, opts.Pricer, []byte(opts.JWTSecret), logger)
	return r
}

// SetupRoutes registers the price API on r. Everything but /health requires
// a bearer token when secret is not empty.
func SetupRoutes(r *gin.RouterGroup, store PriceStore, client Pricer, secret []byte, logger logrus.FieldLogger) {
	handler := &APIHandler{
		store:  store,
		pricer: client,
		log:    logger,
	}

	r.GET("/health", handler.Health)

	protected := r.Group("")
	if len(secret) > 0 {
		protected.Use(AuthMiddleware(secret))
	}
	{
		protected.GET("/pricer/options", handler.GetPricerOptions)
		protected.GET("/prices", handler.ListPrices)
		protected.GET("/prices/:sku", handler.GetPrice)
		protected.POST("/prices/:sku/check", handler.CheckPrice)
		protected.POST("/pricelist/sync", handler.SyncPricelist)
	}
}

func (h *APIHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *APIHandler) GetPricerOptions(c *gin.Context) {
	opts := h.pricer.GetOptions()
	opts.PricerAPIToken = maskToken(opts.PricerAPIToken)
	c.JSON(http.StatusOK, opts)
}

func (h *APIHandler) ListPrices(c *gin.Context) {
	items, err := h.store.ListPrices(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

// GetPrice serves the stored price, or asks the pricer directly with ?live=true.
func (h *APIHandler) GetPrice(c *gin.Context) {
	sku := c.Param("sku")
	live, _ := strconv.ParseBool(c.DefaultQuery("live", "false"))

	if !live {
		item, err := h.store.GetPrice(c.Request.Context(), sku)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"item": item})
		return
	}

	resp, err := h.pricer.GetPrice(c.Request.Context(), sku)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !resp.Success {
		c.JSON(http.StatusNotFound, gin.H{"error": resp.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": resp.Item(), "currency": resp.Currency})
}

func (h *APIHandler) CheckPrice(c *gin.Context) {
	item, err := h.store.RefreshItem(c.Request.Context(), c.Param("sku"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

func (h *APIHandler) SyncPricelist(c *gin.Context) {
	n, err := h.store.SyncPricelist(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": n})
}

// fail maps service errors to status codes. Pricer-reported failures are
// 404s, unreachable or misbehaving pricers are 502s.
func (h *APIHandler) fail(c *gin.Context, err error) {
	_ = c.Error(err)

	var unavailable *priceService.UnavailableError
	var malformed *pricer.MalformedResponseError
	var transport *pricer.TransportError
	switch {
	case errors.Is(err, pricer.ErrEmptySKU):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, priceService.ErrPriceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Price not found"})
	case errors.As(err, &unavailable):
		c.JSON(http.StatusNotFound, gin.H{"error": unavailable.Message})
	case errors.As(err, &malformed), errors.As(err, &transport):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		h.log.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func maskToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}
