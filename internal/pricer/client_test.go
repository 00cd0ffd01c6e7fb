package pricer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   string
}

func newRecordingServer(t *testing.T, status int, body string) (*httptest.Server, <-chan recordedRequest) {
	t.Helper()

	requests := make(chan recordedRequest, 16)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		requests <- recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   string(raw),
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)

	return ts, requests
}

func TestClient_RequestConstruction(t *testing.T) {
	tests := []struct {
		name       string
		call       func(c *Client) error
		wantMethod string
		wantPath   string
		wantQuery  string
		wantBody   map[string]string
	}{
		{
			name: "request check",
			call: func(c *Client) error {
				_, err := c.RequestCheck(context.Background(), "5021;6")
				return err
			},
			wantMethod: http.MethodPost,
			wantPath:   "/items/5021;6",
			wantBody:   map[string]string{"source": "bptf"},
		},
		{
			name: "get price",
			call: func(c *Client) error {
				_, err := c.GetPrice(context.Background(), "5021;6")
				return err
			},
			wantMethod: http.MethodGet,
			wantPath:   "/items/5021;6",
			wantQuery:  "bptf",
		},
		{
			name: "get pricelist",
			call: func(c *Client) error {
				_, err := c.GetPricelist(context.Background())
				return err
			},
			wantMethod: http.MethodGet,
			wantPath:   "/items",
			wantQuery:  "bptf",
		},
	}

	for _, suffix := range []string{"", "/"} {
		for _, tc := range tests {
			t.Run(fmt.Sprintf("%s base%q", tc.name, suffix), func(t *testing.T) {
				ts, requests := newRecordingServer(t, http.StatusOK, `{"success":true}`)

				c := NewClient(Config{URL: ts.URL + suffix, UserAgent: UserAgent("5.0.0")})
				require.NoError(t, tc.call(c))

				req := <-requests
				assert.Equal(t, tc.wantMethod, req.Method)
				assert.Equal(t, tc.wantPath, req.Path)
				assert.Equal(t, "TF2Autobot@5.0.0", req.Header.Get("User-Agent"))

				if tc.wantMethod == http.MethodGet {
					assert.Equal(t, []string{tc.wantQuery}, req.Query["src"])
					assert.Empty(t, req.Body)
				} else {
					assert.Empty(t, req.Query)
					assert.Contains(t, req.Header.Get("Content-Type"), "application/json")

					var body map[string]string
					require.NoError(t, json.Unmarshal([]byte(req.Body), &body))
					assert.Equal(t, tc.wantBody, body)
				}
			})
		}
	}
}

func TestClient_Authorization(t *testing.T) {
	t.Run("no token", func(t *testing.T) {
		ts, requests := newRecordingServer(t, http.StatusOK, `{"success":true}`)
		c := NewClient(Config{URL: ts.URL})

		_, err := c.GetPrice(context.Background(), "5021;6")
		require.NoError(t, err)
		_, err = c.RequestCheck(context.Background(), "5021;6")
		require.NoError(t, err)

		for i := 0; i < 2; i++ {
			req := <-requests
			_, present := req.Header["Authorization"]
			assert.False(t, present, "%s %s carried an Authorization header", req.Method, req.Path)
		}
	})

	t.Run("token", func(t *testing.T) {
		ts, requests := newRecordingServer(t, http.StatusOK, `{"success":true}`)
		c := NewClient(Config{URL: ts.URL, APIToken: "secret"})

		_, err := c.GetPrice(context.Background(), "5021;6")
		require.NoError(t, err)
		_, err = c.GetPricelist(context.Background())
		require.NoError(t, err)
		_, err = c.RequestCheck(context.Background(), "5021;6")
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			req := <-requests
			assert.Equal(t, "Token secret", req.Header.Get("Authorization"))
		}
	})
}

func TestClient_TransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := NewClient(Config{URL: url})

	resp, err := c.GetPrice(context.Background(), "5021;6")
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "pricer: get_price")

	var malformed *MalformedResponseError
	assert.False(t, errors.As(err, &malformed))
	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	assert.Equal(t, "get_price", transport.Op)
}

func TestClient_LogicalFailureResolves(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNotFound} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			ts, _ := newRecordingServer(t, status, `{"success":false,"message":"m"}`)
			c := NewClient(Config{URL: ts.URL})

			resp, err := c.GetPrice(context.Background(), "5021;6")
			require.NoError(t, err)
			require.NotNil(t, resp)

			assert.Equal(t, GetItemPriceResponse{Response: Response{Success: false, Message: "m"}}, *resp)
		})
	}
}

func TestClient_CurrencyRoundTrip(t *testing.T) {
	ts, _ := newRecordingServer(t, http.StatusOK,
		`{"success":true,"sku":"5021;6","name":"Mann Co. Supply Crate Key","source":"bptf","time":1700000000,"buy":{"keys":1,"metal":2},"sell":null}`)
	c := NewClient(Config{URL: ts.URL})

	resp, err := c.GetPrice(context.Background(), "5021;6")
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "5021;6", resp.SKU)
	require.NotNil(t, resp.Buy)
	assert.Equal(t, Currencies{Keys: 1, Metal: 2}, *resp.Buy)
	assert.Nil(t, resp.Sell)
	assert.Equal(t, time.Unix(1700000000, 0), resp.Item().Timestamp())
}

func TestClient_GetPricelist(t *testing.T) {
	ts, _ := newRecordingServer(t, http.StatusOK, `{
		"success": true,
		"currency": null,
		"items": [
			{"sku":"5021;6","name":"Key","source":"bptf","time":2,"buy":{"keys":0,"metal":60.11},"sell":{"keys":0,"metal":60.22}},
			{"sku":"263;6","name":"Ellis' Cap","source":"bptf","time":1,"buy":null,"sell":{"keys":1,"metal":5.33}}
		]
	}`)
	c := NewClient(Config{URL: ts.URL})

	resp, err := c.GetPricelist(context.Background())
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Empty(t, resp.Currency)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "5021;6", resp.Items[0].SKU)
	assert.Equal(t, "263;6", resp.Items[1].SKU)
	assert.Nil(t, resp.Items[1].Buy)
	assert.Equal(t, Currencies{Keys: 1, Metal: 5.33}, *resp.Items[1].Sell)
}

func TestClient_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "<html>bad gateway</html>"},
		{name: "wrong type", body: `{"success":"yes"}`},
		{name: "half a quote", body: `{"success":true,"buy":{"keys":1}}`},
		{name: "null", body: `null`},
		{name: "empty object", body: `{}`},
		{name: "gateway error", body: `{"error":"bad gateway"}`},
		{name: "message only", body: `{"message":"x"}`},
		{name: "array", body: `[]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts, _ := newRecordingServer(t, http.StatusBadGateway, tc.body)
			c := NewClient(Config{URL: ts.URL})

			resp, err := c.GetPrice(context.Background(), "5021;6")
			assert.Nil(t, resp)

			var malformed *MalformedResponseError
			require.True(t, errors.As(err, &malformed), "got %v", err)
			assert.Equal(t, "get_price", malformed.Op)
			assert.Equal(t, http.StatusBadGateway, malformed.StatusCode)
		})
	}
}

func TestClient_EmptySKU(t *testing.T) {
	c := NewClient(Config{URL: "http://127.0.0.1:1"})

	_, err := c.GetPrice(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptySKU)

	_, err = c.RequestCheck(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptySKU)
}

func TestClient_GetOptions(t *testing.T) {
	tests := []Config{
		{},
		{URL: "https://pricer.example.com/"},
		{URL: "https://pricer.example.com", APIToken: "abc"},
		{APIToken: "only-token"},
	}

	for _, cfg := range tests {
		c := NewClient(cfg)
		assert.Equal(t, Options{PricerURL: cfg.URL, PricerAPIToken: cfg.APIToken}, c.GetOptions())
	}
}

func TestClient_ConcurrentCallsAreIndependent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sku := strings.TrimPrefix(r.URL.Path, "/items/")
		if sku == "5021;6" {
			// make the first item answer last
			time.Sleep(50 * time.Millisecond)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"success":true,"sku":%q,"name":"item %s"}`, sku, sku)
	}))
	defer ts.Close()

	c := NewClient(Config{URL: ts.URL})
	skus := []string{"5021;6", "263;6"}
	results := make([]*GetItemPriceResponse, len(skus))

	var wg sync.WaitGroup
	for i, sku := range skus {
		wg.Add(1)
		go func(i int, sku string) {
			defer wg.Done()
			resp, err := c.GetPrice(context.Background(), sku)
			assert.NoError(t, err)
			results[i] = resp
		}(i, sku)
	}
	wg.Wait()

	for i, sku := range skus {
		require.NotNil(t, results[i])
		assert.Equal(t, sku, results[i].SKU)
		assert.Equal(t, "item "+sku, results[i].Name)
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"success":false,"message":"busy"}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"sku":"5021;6","name":"Key"}`))
	}))
	defer ts.Close()

	c := NewClient(Config{URL: ts.URL, RetryCount: 3, RetryWait: time.Millisecond})

	resp, err := c.GetPrice(context.Background(), "5021;6")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

type observation struct {
	op      string
	outcome string
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (o *recordingObserver) ObserveRequest(op, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, observation{op: op, outcome: outcome})
}

func TestClient_Observer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			_, _ = w.Write([]byte(`{"success":true}`))
		case r.URL.Path == "/items":
			_, _ = w.Write([]byte(`nope`))
		default:
			_, _ = w.Write([]byte(`{"success":false,"message":"Item not found"}`))
		}
	}))
	defer ts.Close()

	obs := &recordingObserver{}
	c := NewClient(Config{URL: ts.URL, Observer: obs})

	_, _ = c.RequestCheck(context.Background(), "5021;6")
	_, _ = c.GetPrice(context.Background(), "5021;6")
	_, _ = c.GetPricelist(context.Background())

	assert.Equal(t, []observation{
		{op: "request_check", outcome: OutcomeSuccess},
		{op: "get_price", outcome: OutcomeLogicalFailure},
		{op: "get_pricelist", outcome: OutcomeMalformed},
	}, obs.seen)
}
