package pricer

import (
	"encoding/json"
	"errors"
	"time"
)

// Currencies is a price quote in keys and refined metal.
type Currencies struct {
	Keys  float64 `json:"keys"`
	Metal float64 `json:"metal"`
}

// UnmarshalJSON rejects quotes that carry only one of the two denominations.
func (c *Currencies) UnmarshalJSON(data []byte) error {
	var raw struct {
		Keys  *float64 `json:"keys"`
		Metal *float64 `json:"metal"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Keys == nil || raw.Metal == nil {
		return errors.New("currencies must carry both keys and metal")
	}

	c.Keys = *raw.Keys
	c.Metal = *raw.Metal
	return nil
}

// Response is the envelope shared by every pricer response. Payload fields
// are only meaningful when Success is true.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (r Response) envelope() Response { return r }

type RequestCheckResponse struct {
	Response
	SKU  string `json:"sku,omitempty"`
	Name string `json:"name,omitempty"`
}

type GetItemPriceResponse struct {
	Response
	SKU      string      `json:"sku,omitempty"`
	Name     string      `json:"name,omitempty"`
	Currency string      `json:"currency,omitempty"`
	Source   string      `json:"source,omitempty"`
	Time     int64       `json:"time,omitempty"`
	Buy      *Currencies `json:"buy,omitempty"`
	Sell     *Currencies `json:"sell,omitempty"`
}

// Item returns the price record carried by a successful response.
func (r *GetItemPriceResponse) Item() Item {
	return Item{
		SKU:    r.SKU,
		Name:   r.Name,
		Source: r.Source,
		Time:   r.Time,
		Buy:    r.Buy,
		Sell:   r.Sell,
	}
}

type GetPricelistResponse struct {
	Response
	Currency string `json:"currency,omitempty"`
	Items    []Item `json:"items,omitempty"`
}

// Item is a single entry of the pricelist.
type Item struct {
	SKU    string      `json:"sku"`
	Name   string      `json:"name"`
	Source string      `json:"source"`
	Time   int64       `json:"time"`
	Buy    *Currencies `json:"buy"`
	Sell   *Currencies `json:"sell"`
}

// Timestamp converts the unix time the price was computed at.
func (i Item) Timestamp() time.Time {
	return time.Unix(i.Time, 0)
}

// ItemMessageEvent is a message pushed over the price stream.
type ItemMessageEvent struct {
	Type string `json:"type"`
	Data Item   `json:"data"`
}

// Sale is a recorded backpack.tf sale as reported by the pricer.
// Currencies is an object keyed by "keys" and "metal"; either key may be
// absent.
type Sale struct {
	ID         string             `json:"id"`
	SteamID    string             `json:"steamid"`
	Automatic  bool               `json:"automatic"`
	Attributes json.RawMessage    `json:"attributes"`
	Intent     int                `json:"intent"`
	Currencies map[string]float64 `json:"currencies"`
	Time       int64              `json:"time"`
}

// SaleMessageEvent is a sale pushed over the price stream.
type SaleMessageEvent struct {
	Type string `json:"type"`
	Data Sale   `json:"data"`
}

// Options reports the configuration a client was constructed with.
type Options struct {
	PricerURL      string `json:"pricerUrl"`
	PricerAPIToken string `json:"pricerApiToken"`
}

type envelope interface {
	envelope() Response
}
