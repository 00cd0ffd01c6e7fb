// Package notify publishes price updates to NATS for other bot processes.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	nats "github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/DeWolfRobin/tf2autobot/internal/pricer"
)

const DefaultSubject = "prices.updated"

// Conn is the subset of *nats.Conn used by the publisher.
type Conn interface {
	Publish(subj string, data []byte) error
	Drain() error
}

type Publisher struct {
	conn    Conn
	subject string
	log     logrus.FieldLogger
}

// Connect dials url and returns a publisher for subject.
func Connect(url, subject string, logger logrus.FieldLogger) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("tf2autobot"),
		nats.Timeout(3*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}
	return NewPublisher(conn, subject, logger), nil
}

func NewPublisher(conn Conn, subject string, logger logrus.FieldLogger) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Publisher{
		conn:    conn,
		subject: subject,
		log:     logger.WithField("component", "notify"),
	}
}

// PublishPrice sends item as JSON. Delivery is best effort.
func (p *Publisher) PublishPrice(item pricer.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode price %s: %w", item.SKU, err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		p.log.WithError(err).WithField("sku", item.SKU).Warn("failed to publish price update")
		return fmt.Errorf("publish price %s: %w", item.SKU, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.conn.Drain()
}
