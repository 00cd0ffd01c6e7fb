package stream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeWolfRobin/tf2autobot/internal/pricer"
)

func newStreamServer(t *testing.T, serve func(conn *websocket.Conn, n int32)) (*httptest.Server, <-chan http.Header) {
	t.Helper()

	var connections int32
	headers := make(chan http.Header, 8)
	upgrader := websocket.Upgrader{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case headers <- r.Header.Clone():
		default:
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		serve(conn, atomic.AddInt32(&connections, 1))
	}))
	t.Cleanup(ts.Close)

	return ts, headers
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func TestListener_DeliversEvents(t *testing.T) {
	ts, headers := newStreamServer(t, func(conn *websocket.Conn, _ int32) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_ = conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"type":"PRICE_UPDATED","data":{"sku":"5021;6","name":"Key","source":"bptf","time":5,"buy":{"keys":0,"metal":60},"sell":null}}`))
		// hold the connection until the client goes away
		_, _, _ = conn.ReadMessage()
	})

	events := make(chan pricer.ItemMessageEvent, 4)
	l := NewListener(Config{URL: wsURL(ts), APIToken: "secret", UserAgent: "TF2Autobot@test"}, func(ev pricer.ItemMessageEvent) {
		events <- ev
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()

	select {
	case ev := <-events:
		assert.Equal(t, EventPriceUpdated, ev.Type)
		assert.Equal(t, "5021;6", ev.Data.SKU)
		require.NotNil(t, ev.Data.Buy)
		assert.Equal(t, pricer.Currencies{Keys: 0, Metal: 60}, *ev.Data.Buy)
		assert.Nil(t, ev.Data.Sell)
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}

	header := <-headers
	assert.Equal(t, "Token secret", header.Get("Authorization"))
	assert.Equal(t, "TF2Autobot@test", header.Get("User-Agent"))

	cancel()
	select {
	case err := <-errc:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Empty(t, events)
}

func TestListener_Reconnects(t *testing.T) {
	ts, _ := newStreamServer(t, func(conn *websocket.Conn, n int32) {
		msg := `{"type":"PRICE_CHANGED","data":{"sku":"` + map[bool]string{true: "first", false: "second"}[n == 1] + `"}}`
		_ = conn.WriteMessage(websocket.TextMessage, []byte(msg))
		if n > 1 {
			_, _, _ = conn.ReadMessage()
		}
	})

	events := make(chan string, 4)
	l := NewListener(Config{URL: wsURL(ts)}, func(ev pricer.ItemMessageEvent) {
		events <- ev.Data.SKU
	})
	l.minBackoff = 10 * time.Millisecond
	l.maxBackoff = 20 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() { _ = l.Run(ctx) }()

	var got []string
	for len(got) < 2 {
		select {
		case sku := <-events:
			got = append(got, sku)
		case <-ctx.Done():
			t.Fatalf("only received %v", got)
		}
	}
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestListener_DialFailureHonoursContext(t *testing.T) {
	l := NewListener(Config{URL: "ws://127.0.0.1:1"}, func(pricer.ItemMessageEvent) {})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := l.Run(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestListener_Dispatch(t *testing.T) {
	sale := []byte(`{"type":"SALE","data":{"id":"s1","steamid":"76561198000000002","automatic":true,"intent":1,"currencies":{"metal":10.55},"time":7}}`)
	price := []byte(`{"type":"PRICE_CHANGED","data":{"sku":"5021;6"}}`)

	var items []pricer.ItemMessageEvent
	l := NewListener(Config{}, func(ev pricer.ItemMessageEvent) { items = append(items, ev) })

	// without a sale handler sales reach the price handler
	require.NoError(t, l.dispatch(sale))
	require.Len(t, items, 1)
	assert.Equal(t, EventSale, items[0].Type)

	var sales []pricer.SaleMessageEvent
	l.OnSale(func(ev pricer.SaleMessageEvent) { sales = append(sales, ev) })

	require.NoError(t, l.dispatch(sale))
	require.NoError(t, l.dispatch(price))
	require.Len(t, sales, 1)
	assert.Equal(t, "s1", sales[0].Data.ID)
	assert.True(t, sales[0].Data.Automatic)
	assert.Equal(t, map[string]float64{"metal": 10.55}, sales[0].Data.Currencies)
	require.Len(t, items, 2)
	assert.Equal(t, "5021;6", items[1].Data.SKU)

	assert.Error(t, l.dispatch([]byte(`[]`)))
}
