package steam

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	var zero T
	return zero
}

func TestBus_TypedDelivery(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	messages := make(chan FriendMessage, 1)
	keys := make(chan LoginKey, 1)
	bus.OnFriendMessage(func(e FriendMessage) { messages <- e })
	bus.OnLoginKey(func(e LoginKey) { keys <- e })

	ctx := context.Background()
	require.NoError(t, bus.Emit(ctx, FriendMessage{Sender: 42, Message: "hi"}))
	require.NoError(t, bus.Emit(ctx, LoginKey{Key: "k"}))

	assert.Equal(t, FriendMessage{Sender: 42, Message: "hi"}, receive(t, messages))
	assert.Equal(t, LoginKey{Key: "k"}, receive(t, keys))
}

func TestBus_ManyHandlers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	var wg sync.WaitGroup
	var mu sync.Mutex
	calls := 0
	for i := 0; i < 3; i++ {
		wg.Add(1)
		bus.OnLoggedOn(func(LoggedOn) {
			mu.Lock()
			calls++
			mu.Unlock()
			wg.Done()
		})
	}
	assert.Equal(t, 3, bus.Handlers(LoggedOn{}))

	require.NoError(t, bus.Emit(context.Background(), LoggedOn{}))
	wg.Wait()
	assert.Equal(t, 3, calls)
}

func TestBus_OrderPerHandler(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	got := make(chan EFriendRelationship, 8)
	bus.OnFriendRelationship(func(e FriendRelationship) { got <- e.Relationship })

	sequence := []EFriendRelationship{
		FriendRelationshipRequestRecipient,
		FriendRelationshipFriend,
		FriendRelationshipNone,
	}
	for _, r := range sequence {
		require.NoError(t, bus.Emit(context.Background(), FriendRelationship{SteamID: 1, Relationship: r}))
	}

	for _, want := range sequence {
		assert.Equal(t, want, receive(t, got))
	}
}

func TestBus_Cancel(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	errs := make(chan ErrorEvent, 1)
	sub := bus.OnError(func(e ErrorEvent) { errs <- e })
	sub.Cancel()
	sub.Cancel()

	assert.Equal(t, 0, bus.Handlers(ErrorEvent{}))
	require.NoError(t, bus.Emit(context.Background(), ErrorEvent{Err: errors.New("boom")}))

	select {
	case <-errs:
		t.Fatal("cancelled handler received an event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_EmitHonoursContext(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	block := make(chan struct{})
	defer close(block)
	bus.OnWebSession(func(WebSession) { <-block })

	// the first event occupies the handler, the rest fill its queue
	for i := 0; i < queueSize+1; i++ {
		require.NoError(t, bus.Emit(context.Background(), WebSession{SessionID: "s"}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := bus.Emit(ctx, WebSession{SessionID: "s"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBus_Close(t *testing.T) {
	bus := NewBus()

	limitations := make(chan AccountLimitations, 1)
	bus.OnAccountLimitations(func(e AccountLimitations) { limitations <- e })
	bus.Close()

	late := bus.OnGroupRelationship(func(GroupRelationship) { t.Error("handler registered after Close was called") })
	late.Cancel()

	require.NoError(t, bus.Emit(context.Background(), AccountLimitations{Limited: true}))
	require.NoError(t, bus.Emit(context.Background(), GroupRelationship{GroupID: 1}))
	assert.Equal(t, 0, bus.Handlers(AccountLimitations{}))

	select {
	case <-limitations:
		t.Fatal("handler received an event after Close")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSteamGuard_RespondOnce(t *testing.T) {
	var codes []string
	prompt := NewSteamGuard("example.com", false, func(code string) { codes = append(codes, code) })

	prompt.Respond("AAAAA")
	prompt.Respond("BBBBB")
	assert.Equal(t, []string{"AAAAA"}, codes)

	// a zero prompt ignores responses
	SteamGuard{}.Respond("CCCCC")
}
