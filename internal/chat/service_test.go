package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flumers-backend/internal/gateway"
)

func newTestService() *Service {
	store := gateway.NewMemoryStore(nil)
	t := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	return NewServiceWithClock(store, func() time.Time {
		t = t.Add(time.Second)
		return t
	})
}

func TestKey_Canonical(t *testing.T) {
	assert.Equal(t, "alice_bob", Key("alice", "bob"))
	assert.Equal(t, "alice_bob", Key("bob", "alice"))
	assert.Equal(t, Key("u1", "u2"), Key("u2", "u1"))
}

func TestSend_Validation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Send(ctx, "", "bob", "hi")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Send(ctx, "alice", "", "hi")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Send(ctx, "alice", "alice", "hi")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Send(ctx, "alice", "bob", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestList_OrderedAndShared(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.Send(ctx, "alice", "bob", "hello")
	require.NoError(t, err)
	_, err = svc.Send(ctx, "bob", "alice", "hey")
	require.NoError(t, err)
	_, err = svc.Send(ctx, "alice", "bob", "how's the draft?")
	require.NoError(t, err)

	fromAlice, err := svc.List(ctx, "alice", "bob")
	require.NoError(t, err)
	fromBob, err := svc.List(ctx, "bob", "alice")
	require.NoError(t, err)

	// Both parties see the same conversation in the same order.
	require.Len(t, fromAlice, 3)
	assert.Equal(t, fromAlice, fromBob)
	assert.Equal(t, "hello", fromAlice[0].Text)
	assert.Equal(t, "hey", fromAlice[1].Text)
	assert.Equal(t, "how's the draft?", fromAlice[2].Text)
}

func TestUnread_AndIndividualFlips(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		_, err := svc.Send(ctx, "alice", "bob", text)
		require.NoError(t, err)
	}

	n, err := svc.Unread(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// The sender has no inbound unread messages.
	n, err = svc.Unread(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// Observing the conversation flips each inbound message.
	require.NoError(t, svc.MarkObserved(ctx, "bob", "alice"))
	n, err = svc.Unread(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// A new message starts unread again.
	_, err = svc.Send(ctx, "alice", "bob", "four")
	require.NoError(t, err)
	n, err = svc.Unread(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMarkRead_ReceiverOnly(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	msg, err := svc.Send(ctx, "alice", "bob", "hi")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.MarkRead(ctx, "alice", msg.ID), ErrUnauthorized)
	assert.ErrorIs(t, svc.MarkRead(ctx, "bob", "missing"), ErrNotFound)

	require.NoError(t, svc.MarkRead(ctx, "bob", msg.ID))
	// Idempotent; the flag never reverts.
	require.NoError(t, svc.MarkRead(ctx, "bob", msg.ID))

	msgs, err := svc.List(ctx, "bob", "alice")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Read)
}

func TestStream_DeliversConversationOnly(t *testing.T) {
	svc := newTestService()
	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	stream, cancel := svc.Stream(ctx, "bob", "alice")
	defer cancel()

	_, err := svc.Send(ctx, "alice", "bob", "for bob")
	require.NoError(t, err)
	// A different conversation must not leak in.
	_, err = svc.Send(ctx, "alice", "carol", "for carol")
	require.NoError(t, err)

	select {
	case msg := <-stream:
		assert.Equal(t, "for bob", msg.Text)
	case <-time.After(time.Second):
		t.Fatal("expected a streamed message")
	}

	select {
	case msg, ok := <-stream:
		if ok {
			t.Fatalf("unexpected extra message: %q", msg.Text)
		}
	case <-time.After(50 * time.Millisecond):
	}
}
