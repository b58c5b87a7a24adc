package support

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"flumers-backend/internal/gateway"
	"flumers-backend/internal/models"
)

// Collection holds the stored chatbot transcripts, one document per
// exchange.
const Collection = "support_messages"

var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrPersistence  = errors.New("persistence failure")
	ErrBotBackend   = errors.New("bot backend failure")
)

type Service struct {
	store gateway.DocumentStore
	bot   *Client
	now   func() time.Time
}

func NewService(store gateway.DocumentStore, bot *Client) *Service {
	return &Service{store: store, bot: bot, now: time.Now}
}

// Ask stores the user's message, relays it to the bot backend, and stores
// the reply on the same transcript entry. A backend failure fails the
// whole operation; the pending entry keeps the question for the support
// history either way.
func (s *Service) Ask(ctx context.Context, actor, text string) (models.SupportMessage, error) {
	if actor == "" {
		return models.SupportMessage{}, ErrUnauthorized
	}
	if text == "" {
		return models.SupportMessage{}, fmt.Errorf("%w: message text is required", ErrValidation)
	}

	msg := models.SupportMessage{
		ID:        uuid.NewString(),
		UID:       actor,
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
	doc, err := gateway.Encode(msg)
	if err != nil {
		return models.SupportMessage{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := s.store.Create(ctx, Collection, msg.ID, doc); err != nil {
		return models.SupportMessage{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	reply, err := s.bot.Ask(ctx, actor, text)
	if err != nil {
		logrus.WithError(err).WithField("uid", actor).Error("support bot call failed")
		return models.SupportMessage{}, fmt.Errorf("%w: %w", ErrBotBackend, err)
	}

	if err := s.store.Update(ctx, Collection, msg.ID, gateway.Document{"reply": reply}); err != nil {
		return models.SupportMessage{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	msg.Reply = reply
	return msg, nil
}

// History returns the actor's past exchanges, oldest first.
func (s *Service) History(ctx context.Context, actor string) ([]models.SupportMessage, error) {
	if actor == "" {
		return nil, ErrUnauthorized
	}
	docs, err := s.store.Query(ctx, Collection, gateway.Where{Field: "uid", Value: actor})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	out := make([]models.SupportMessage, 0, len(docs))
	for _, doc := range docs {
		var m models.SupportMessage
		if err := gateway.Decode(doc, &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
