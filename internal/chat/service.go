package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"flumers-backend/internal/gateway"
	"flumers-backend/internal/models"
)

// Collection is the document-store collection chat messages live in, one
// document per message.
const Collection = "messages"

var (
	ErrNotFound     = errors.New("message not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrPersistence  = errors.New("persistence failure")
)

// Key is the canonical conversation key for a pair of users: the
// lexicographically smaller uid first, so both parties compute the same
// key regardless of who opens the chat.
func Key(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "_" + b
}

type Service struct {
	store gateway.DocumentStore
	now   func() time.Time
}

func NewService(store gateway.DocumentStore) *Service {
	return &Service{store: store, now: time.Now}
}

func NewServiceWithClock(store gateway.DocumentStore, now func() time.Time) *Service {
	return &Service{store: store, now: now}
}

// Send stores one message from the actor to a peer. Messages start unread.
func (s *Service) Send(ctx context.Context, actor, peer, text string) (models.Message, error) {
	if actor == "" {
		return models.Message{}, ErrUnauthorized
	}
	if peer == "" || peer == actor {
		return models.Message{}, fmt.Errorf("%w: invalid chat peer", ErrValidation)
	}
	if text == "" {
		return models.Message{}, fmt.Errorf("%w: message text is required", ErrValidation)
	}

	msg := models.Message{
		ID:          uuid.NewString(),
		ChatKey:     Key(actor, peer),
		SenderUID:   actor,
		ReceiverUID: peer,
		Text:        text,
		Read:        false,
		SentAt:      s.now().UTC(),
	}

	doc, err := gateway.Encode(msg)
	if err != nil {
		return models.Message{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := s.store.Create(ctx, Collection, msg.ID, doc); err != nil {
		return models.Message{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	logrus.WithFields(logrus.Fields{
		"chat_key":   msg.ChatKey,
		"message_id": msg.ID,
	}).Debug("message sent")

	return msg, nil
}

// List returns the conversation between the actor and a peer, oldest
// first.
func (s *Service) List(ctx context.Context, actor, peer string) ([]models.Message, error) {
	if actor == "" {
		return nil, ErrUnauthorized
	}

	docs, err := s.store.Query(ctx, Collection, gateway.Where{Field: "chatKey", Value: Key(actor, peer)})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	msgs := make([]models.Message, 0, len(docs))
	for _, doc := range docs {
		var m models.Message
		if err := gateway.Decode(doc, &m); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		msgs = append(msgs, m)
	}

	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].SentAt.Equal(msgs[j].SentAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].SentAt.Before(msgs[j].SentAt)
	})
	return msgs, nil
}

// MarkRead flips one message to read. Only the receiver may flip it, and
// it never flips back. Unlike the per-order seen flags this is not a bulk
// write; each message is marked the moment it is observed.
func (s *Service) MarkRead(ctx context.Context, actor, messageID string) error {
	doc, err := s.store.Get(ctx, Collection, messageID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	var msg models.Message
	if err := gateway.Decode(doc, &msg); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if msg.ReceiverUID != actor {
		return ErrUnauthorized
	}
	if msg.Read {
		return nil
	}

	if err := s.store.Update(ctx, Collection, messageID, gateway.Document{"read": true}); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

// MarkObserved marks every inbound unread message in the conversation as
// read, one message at a time, as an active chat view would while
// displaying them.
func (s *Service) MarkObserved(ctx context.Context, actor, peer string) error {
	msgs, err := s.List(ctx, actor, peer)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		if m.ReceiverUID != actor || m.Read {
			continue
		}
		if err := s.MarkRead(ctx, actor, m.ID); err != nil {
			return err
		}
	}
	return nil
}

// Unread counts the actor's inbound unread messages from a peer. Derived
// by a fresh scan on every call, like the order badges.
func (s *Service) Unread(ctx context.Context, actor, peer string) (int, error) {
	docs, err := s.store.Query(ctx, Collection,
		gateway.Where{Field: "chatKey", Value: Key(actor, peer)},
		gateway.Where{Field: "read", Value: false},
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	n := 0
	for _, doc := range docs {
		var m models.Message
		if err := gateway.Decode(doc, &m); err != nil {
			continue
		}
		if m.ReceiverUID == actor {
			n++
		}
	}
	return n, nil
}

// Stream delivers messages in the actor's conversation with a peer as
// they arrive. The returned cancel func must be called when the view is
// torn down.
func (s *Service) Stream(ctx context.Context, actor, peer string) (<-chan models.Message, func()) {
	key := Key(actor, peer)
	events, unsubscribe := s.store.Subscribe(ctx, Collection)

	out := make(chan models.Message, 16)
	done := make(chan struct{})

	go func() {
		defer close(out)
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if ev.Doc == nil {
					continue
				}
				var m models.Message
				if err := gateway.Decode(ev.Doc, &m); err != nil {
					continue
				}
				if m.ChatKey != key {
					continue
				}
				select {
				case out <- m:
				case <-done:
					return
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			unsubscribe()
		})
	}
	return out, cancel
}
