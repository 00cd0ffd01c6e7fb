package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DeWolfRobin/tf2autobot/internal/models"
	"github.com/DeWolfRobin/tf2autobot/internal/pricer"
	"github.com/DeWolfRobin/tf2autobot/internal/pricer/stream"
)

const DefaultSyncSchedule = "@every 30m"

var ErrPriceNotFound = errors.New("price not found")

// UnavailableError is returned when the pricer answered but reported failure.
type UnavailableError struct {
	Op      string
	Message string
}

func (e *UnavailableError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: pricer reported failure", e.Op)
	}
	return fmt.Sprintf("%s: pricer reported failure: %s", e.Op, e.Message)
}

// PriceSource is the part of the pricer client the service relies on.
type PriceSource interface {
	RequestCheck(ctx context.Context, sku string) (*pricer.RequestCheckResponse, error)
	GetPrice(ctx context.Context, sku string) (*pricer.GetItemPriceResponse, error)
	GetPricelist(ctx context.Context) (*pricer.GetPricelistResponse, error)
}

type Publisher interface {
	PublishPrice(item pricer.Item) error
}

type StoreObserver interface {
	SetStoredPrices(n int)
}

type PriceService struct {
	db        *gorm.DB
	source    PriceSource
	publisher Publisher
	observer  StoreObserver
	cron      *cron.Cron
	log       logrus.FieldLogger
}

func NewPriceService(db *gorm.DB, source PriceSource, logger logrus.FieldLogger) *PriceService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PriceService{
		db:     db,
		source: source,
		log:    logger.WithField("component", "price-service"),
	}
}

func (p *PriceService) SetPublisher(publisher Publisher) {
	p.publisher = publisher
}

func (p *PriceService) SetObserver(observer StoreObserver) {
	p.observer = observer
}

// SyncPricelist upserts the pricer's current pricelist into the local store
// and returns the number of items written.
func (p *PriceService) SyncPricelist(ctx context.Context) (int, error) {
	start := time.Now()

	resp, err := p.source.GetPricelist(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch pricelist: %w", err)
	}
	if !resp.Success {
		return 0, &UnavailableError{Op: "fetch pricelist", Message: resp.Message}
	}

	// one row per sku, the last occurrence wins
	prices := make([]models.Price, 0, len(resp.Items))
	index := make(map[string]int, len(resp.Items))
	for _, item := range resp.Items {
		if item.SKU == "" {
			continue
		}
		if i, ok := index[item.SKU]; ok {
			prices[i] = toModel(item, resp.Currency)
			continue
		}
		index[item.SKU] = len(prices)
		prices = append(prices, toModel(item, resp.Currency))
	}

	if len(prices) > 0 {
		err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return upsert(tx, resp.Currency).CreateInBatches(prices, 500).Error
		})
		if err != nil {
			return 0, fmt.Errorf("store pricelist: %w", err)
		}
	}

	p.reportStored()
	p.log.WithFields(logrus.Fields{
		"items":    len(prices),
		"duration": time.Since(start),
	}).Info("Pricelist synchronized")

	return len(prices), nil
}

// RefreshItem asks the pricer to recheck sku and stores the resulting price.
func (p *PriceService) RefreshItem(ctx context.Context, sku string) (pricer.Item, error) {
	check, err := p.source.RequestCheck(ctx, sku)
	if err != nil {
		return pricer.Item{}, fmt.Errorf("request check %s: %w", sku, err)
	}
	if !check.Success {
		return pricer.Item{}, &UnavailableError{Op: "request check " + sku, Message: check.Message}
	}

	resp, err := p.source.GetPrice(ctx, sku)
	if err != nil {
		return pricer.Item{}, fmt.Errorf("get price %s: %w", sku, err)
	}
	if !resp.Success {
		return pricer.Item{}, &UnavailableError{Op: "get price " + sku, Message: resp.Message}
	}

	item := resp.Item()
	if item.SKU == "" {
		item.SKU = sku
	}
	if err := p.SavePrice(ctx, item, resp.Currency); err != nil {
		return pricer.Item{}, err
	}
	return item, nil
}

// HandlePriceEvent stores price updates pushed over the price stream.
func (p *PriceService) HandlePriceEvent(event pricer.ItemMessageEvent) {
	if event.Type != stream.EventPriceUpdated && event.Type != stream.EventPriceChanged {
		return
	}
	if event.Data.SKU == "" {
		p.log.WithField("type", event.Type).Warn("ignoring price event without sku")
		return
	}

	if err := p.SavePrice(context.Background(), event.Data, ""); err != nil {
		p.log.WithError(err).WithField("sku", event.Data.SKU).Error("Failed to store price update")
		return
	}

	if p.publisher != nil {
		if err := p.publisher.PublishPrice(event.Data); err != nil {
			p.log.WithError(err).WithField("sku", event.Data.SKU).Warn("Failed to publish price update")
		}
	}
}

func (p *PriceService) SavePrice(ctx context.Context, item pricer.Item, currency string) error {
	price := toModel(item, currency)
	if err := upsert(p.db.WithContext(ctx), currency).Create(&price).Error; err != nil {
		return fmt.Errorf("store price %s: %w", item.SKU, err)
	}
	p.reportStored()
	return nil
}

func (p *PriceService) GetPrice(ctx context.Context, sku string) (pricer.Item, error) {
	var price models.Price
	err := p.db.WithContext(ctx).Where("sku = ?", sku).First(&price).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pricer.Item{}, ErrPriceNotFound
	}
	if err != nil {
		return pricer.Item{}, err
	}
	return toItem(price), nil
}

func (p *PriceService) ListPrices(ctx context.Context) ([]pricer.Item, error) {
	var prices []models.Price
	if err := p.db.WithContext(ctx).Order("sku ASC").Find(&prices).Error; err != nil {
		return nil, err
	}

	items := make([]pricer.Item, 0, len(prices))
	for _, price := range prices {
		items = append(items, toItem(price))
	}
	return items, nil
}

// Start schedules SyncPricelist according to a cron spec such as "@every 30m".
func (p *PriceService) Start(spec string) error {
	if spec == "" {
		spec = DefaultSyncSchedule
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*pricer.Timeout)
		defer cancel()
		if _, err := p.SyncPricelist(ctx); err != nil {
			p.log.WithError(err).Error("Scheduled pricelist sync failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", spec, err)
	}

	p.cron = c
	c.Start()
	p.log.WithField("schedule", spec).Info("Pricelist sync scheduled")
	return nil
}

// Stop stops the schedule and waits for a running sync to finish.
func (p *PriceService) Stop() {
	if p.cron == nil {
		return
	}
	<-p.cron.Stop().Done()
}

func (p *PriceService) reportStored() {
	if p.observer == nil {
		return
	}
	var count int64
	if err := p.db.Model(&models.Price{}).Count(&count).Error; err == nil {
		p.observer.SetStoredPrices(int(count))
	}
}

// upsert overwrites an existing row for the same sku. An empty currency
// keeps the stored one: stream updates do not carry a currency.
func upsert(db *gorm.DB, currency string) *gorm.DB {
	columns := []string{
		"name", "source",
		"buy_keys", "buy_metal", "sell_keys", "sell_metal",
		"priced_at", "updated_at",
	}
	if currency != "" {
		columns = append(columns, "currency")
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sku"}},
		DoUpdates: clause.AssignmentColumns(columns),
	})
}

func toModel(item pricer.Item, currency string) models.Price {
	price := models.Price{
		SKU:      item.SKU,
		Name:     item.Name,
		Source:   item.Source,
		Currency: currency,
		PricedAt: item.Timestamp(),
	}
	if item.Buy != nil {
		keys, metal := item.Buy.Keys, item.Buy.Metal
		price.BuyKeys, price.BuyMetal = &keys, &metal
	}
	if item.Sell != nil {
		keys, metal := item.Sell.Keys, item.Sell.Metal
		price.SellKeys, price.SellMetal = &keys, &metal
	}
	return price
}

func toItem(price models.Price) pricer.Item {
	item := pricer.Item{
		SKU:    price.SKU,
		Name:   price.Name,
		Source: price.Source,
		Time:   price.PricedAt.Unix(),
	}
	if price.BuyKeys != nil && price.BuyMetal != nil {
		item.Buy = &pricer.Currencies{Keys: *price.BuyKeys, Metal: *price.BuyMetal}
	}
	if price.SellKeys != nil && price.SellMetal != nil {
		item.Sell = &pricer.Currencies{Keys: *price.SellKeys, Metal: *price.SellMetal}
	}
	return item
}
