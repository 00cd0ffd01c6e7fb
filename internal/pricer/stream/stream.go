// Package stream listens to the pricer's websocket feed of price updates.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/DeWolfRobin/tf2autobot/internal/pricer"
)

const (
	DefaultURL = "wss://ws.prices.tf"

	minBackoff = time.Second
	maxBackoff = time.Minute
)

// Event types pushed by the pricer.
const (
	EventPriceUpdated = "PRICE_UPDATED"
	EventPriceChanged = "PRICE_CHANGED"
	EventSale         = "SALE"
)

type Handler func(pricer.ItemMessageEvent)

type SaleHandler func(pricer.SaleMessageEvent)

type Config struct {
	URL       string
	APIToken  string
	UserAgent string
	Logger    logrus.FieldLogger
}

type Listener struct {
	url     string
	header  http.Header
	handler Handler
	sales   SaleHandler
	dialer  *websocket.Dialer
	log     logrus.FieldLogger

	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewListener(cfg Config, handler Handler) *Listener {
	url := cfg.URL
	if url == "" {
		url = DefaultURL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	header := http.Header{}
	if cfg.UserAgent != "" {
		header.Set("User-Agent", cfg.UserAgent)
	}
	if cfg.APIToken != "" {
		header.Set("Authorization", fmt.Sprintf("Token %s", cfg.APIToken))
	}

	return &Listener{
		url:     url,
		header:  header,
		handler: handler,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: pricer.Timeout,
		},
		log:        logger.WithField("component", "price-stream"),
		minBackoff: minBackoff,
		maxBackoff: maxBackoff,
	}
}

// OnSale sets the handler for SALE messages. Without one they are passed
// to the price handler like any other message.
func (l *Listener) OnSale(h SaleHandler) {
	l.sales = h
}

// Run keeps a connection open until ctx is done, reconnecting with
// exponential backoff whenever the connection drops.
func (l *Listener) Run(ctx context.Context) error {
	backoff := l.minBackoff
	for {
		connected, err := l.listen(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			backoff = l.minBackoff
		}

		l.log.WithError(err).WithField("retry_in", backoff).Warn("price stream disconnected")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > l.maxBackoff {
			backoff = l.maxBackoff
		}
	}
}

// listen serves a single connection. connected reports whether the
// handshake succeeded.
func (l *Listener) listen(ctx context.Context) (connected bool, err error) {
	conn, _, err := l.dialer.DialContext(ctx, l.url, l.header)
	if err != nil {
		return false, fmt.Errorf("dial %s: %w", l.url, err)
	}
	defer conn.Close()

	l.log.WithField("url", l.url).Info("connected to price stream")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return true, fmt.Errorf("read: %w", err)
		}

		if err := l.dispatch(data); err != nil {
			l.log.WithError(err).Warn("skipping malformed price stream message")
		}
	}
}

func (l *Listener) dispatch(data []byte) error {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	if head.Type == EventSale && l.sales != nil {
		var event pricer.SaleMessageEvent
		if err := json.Unmarshal(data, &event); err != nil {
			return err
		}
		l.sales(event)
		return nil
	}

	var event pricer.ItemMessageEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return err
	}
	l.handler(event)
	return nil
}
