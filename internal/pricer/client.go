// Package pricer is a client for the prices.tf compatible pricing API.
package pricer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	DefaultURL = "https://api.prices.tf"
	Timeout    = 30 * time.Second

	// source is the upstream every price is requested from.
	source = "bptf"
)

// Request outcomes reported to an Observer.
const (
	OutcomeSuccess        = "success"
	OutcomeLogicalFailure = "logical_failure"
	OutcomeTransportError = "transport_error"
	OutcomeMalformed      = "malformed"
)

var ErrEmptySKU = errors.New("pricer: empty sku")

var errMissingSuccess = errors.New("response has no success field")

// MalformedResponseError is returned when the pricer answered with a body
// that could not be decoded as the expected JSON document.
type MalformedResponseError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("pricer: %s: malformed response (status %d): %v", e.Op, e.StatusCode, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// TransportError is returned when no response was received at all.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("pricer: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Observer receives one call per finished request.
type Observer interface {
	ObserveRequest(op, outcome string, duration time.Duration)
}

type Config struct {
	// URL overrides DefaultURL.
	URL      string
	APIToken string
	// UserAgent is sent with every request, see UserAgent.
	UserAgent string

	// RetryCount enables resty's retry on transport errors and 5xx responses.
	RetryCount int
	RetryWait  time.Duration

	Observer Observer
	Logger   logrus.FieldLogger
}

// UserAgent builds the product identifier sent to the pricer.
func UserAgent(version string) string {
	if version == "" {
		return "TF2Autobot"
	}
	return "TF2Autobot@" + version
}

type Client struct {
	url      string
	apiToken string
	baseURL  string
	client   *resty.Client
	observer Observer
	log      logrus.FieldLogger
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.URL
	if baseURL == "" {
		baseURL = DefaultURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = UserAgent("")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	client := resty.New()
	client.SetTimeout(Timeout)
	client.SetHeader("User-Agent", userAgent)
	client.SetHeader("Accept", "application/json")
	if cfg.APIToken != "" {
		client.SetHeader("Authorization", fmt.Sprintf("Token %s", cfg.APIToken))
	}

	if cfg.RetryCount > 0 {
		wait := cfg.RetryWait
		if wait <= 0 {
			wait = 5 * time.Second
		}
		client.SetRetryCount(cfg.RetryCount).
			SetRetryWaitTime(wait).
			SetRetryMaxWaitTime(wait * 4).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				if err != nil {
					return true
				}
				return r != nil && r.StatusCode() >= http.StatusInternalServerError
			})
	}

	return &Client{
		url:      cfg.URL,
		apiToken: cfg.APIToken,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   client,
		observer: cfg.Observer,
		log:      logger.WithField("component", "pricer"),
	}
}

type checkInput struct {
	Source string `json:"source"`
}

// priceQuery selects the upstream on GET requests.
var priceQuery = map[string]string{"src": source}

// RequestCheck asks the pricer to recompute the price of sku. The new price
// is not necessarily available when this returns.
func (c *Client) RequestCheck(ctx context.Context, sku string) (*RequestCheckResponse, error) {
	if sku == "" {
		return nil, ErrEmptySKU
	}

	var resp RequestCheckResponse
	if err := c.apiRequest(ctx, "request_check", http.MethodPost, "/items/"+sku, nil, checkInput{Source: source}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetPrice(ctx context.Context, sku string) (*GetItemPriceResponse, error) {
	if sku == "" {
		return nil, ErrEmptySKU
	}

	var resp GetItemPriceResponse
	if err := c.apiRequest(ctx, "get_price", http.MethodGet, "/items/"+sku, priceQuery, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetPricelist(ctx context.Context) (*GetPricelistResponse, error) {
	var resp GetPricelistResponse
	if err := c.apiRequest(ctx, "get_pricelist", http.MethodGet, "/items", priceQuery, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetOptions returns the URL and token exactly as they were configured.
func (c *Client) GetOptions() Options {
	return Options{
		PricerURL:      c.url,
		PricerAPIToken: c.apiToken,
	}
}

// apiRequest sends query as query parameters and body, when set, as JSON,
// then decodes the reply into out. Any reply carrying the envelope is
// returned as is: a negative envelope is not an error.
func (c *Client) apiRequest(ctx context.Context, op, method, path string, query map[string]string, body any, out envelope) error {
	req := c.client.R().SetContext(ctx).SetQueryParams(query)
	if body != nil {
		req.SetBody(body)
	}

	start := time.Now()
	resp, err := req.Execute(method, c.baseURL+path)
	duration := time.Since(start)
	if err != nil {
		c.observe(op, OutcomeTransportError, duration)
		c.log.WithFields(logrus.Fields{
			"op":     op,
			"method": method,
			"path":   path,
		}).WithError(err).Warn("pricer request failed")
		return &TransportError{Op: op, Err: err}
	}

	if err := checkEnvelope(resp.Body()); err != nil {
		c.observe(op, OutcomeMalformed, duration)
		return &MalformedResponseError{Op: op, StatusCode: resp.StatusCode(), Err: err}
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		c.observe(op, OutcomeMalformed, duration)
		return &MalformedResponseError{Op: op, StatusCode: resp.StatusCode(), Err: err}
	}

	outcome := OutcomeSuccess
	if !out.envelope().Success {
		outcome = OutcomeLogicalFailure
	}
	c.observe(op, outcome, duration)

	c.log.WithFields(logrus.Fields{
		"op":       op,
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode(),
		"success":  out.envelope().Success,
		"duration": duration,
	}).Debug("pricer request")

	return nil
}

func (c *Client) observe(op, outcome string, duration time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(op, outcome, duration)
	}
}

// checkEnvelope requires a JSON object with a boolean success field.
func checkEnvelope(body []byte) error {
	var head struct {
		Success *bool `json:"success"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return err
	}
	if head.Success == nil {
		return errMissingSuccess
	}
	return nil
}
