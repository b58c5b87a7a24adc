package orders

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

// Collection is the document-store collection orders live in.
const Collection = "orders"

// Service owns the order state machine. Every operation takes the acting
// user explicitly; there is no ambient current-user state.
type Service struct {
	store gateway.DocumentStore
	now   func() time.Time
}

func NewService(store gateway.DocumentStore) *Service {
	return &Service{store: store, now: time.Now}
}

// NewServiceWithClock is used by tests that need a fixed or advancing clock.
func NewServiceWithClock(store gateway.DocumentStore, now func() time.Time) *Service {
	return &Service{store: store, now: now}
}

type CreateInput struct {
	InfluencerUID string
	OrderDetails  string
	TotalCost     float64
	Deadline      int
	ImageURL      string
}

// Create opens a new pending order from the acting brand to an influencer.
// The order number is one past the maximum across all existing orders,
// starting from the 999 base, assigned by max-scan at creation time.
// Concurrent creations can race on that scan and mint a duplicate
// display number; the record itself is keyed by uuid either way.
func (s *Service) Create(ctx context.Context, actor string, in CreateInput) (models.Order, error) {
	if actor == "" {
		return models.Order{}, ErrUnauthorized
	}
	if in.InfluencerUID == "" {
		return models.Order{}, fmt.Errorf("%w: no influencer selected", ErrValidation)
	}
	if in.OrderDetails == "" {
		return models.Order{}, fmt.Errorf("%w: order details are required", ErrValidation)
	}
	if in.TotalCost <= 0 {
		return models.Order{}, fmt.Errorf("%w: total cost must be positive", ErrValidation)
	}
	if in.Deadline <= 0 {
		return models.Order{}, fmt.Errorf("%w: deadline must be a positive number of days", ErrValidation)
	}

	number, err := s.nextOrderNumber(ctx)
	if err != nil {
		return models.Order{}, err
	}

	order := models.Order{
		ID:            uuid.NewString(),
		OrderNumber:   number,
		BrandUID:      actor,
		InfluencerUID: in.InfluencerUID,
		Status:        models.StatusPending,
		OrderDetails:  in.OrderDetails,
		TotalCost:     in.TotalCost,
		Deadline:      in.Deadline,
		ImageURL:      in.ImageURL,
		Submission:    models.Submission{Files: []models.SubmissionFile{}},
		Revisions:     []models.RevisionNote{},
		CreatedAt:     s.now().UTC(),
	}

	doc, err := gateway.Encode(order)
	if err != nil {
		return models.Order{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := s.store.Create(ctx, Collection, order.ID, doc); err != nil {
		return models.Order{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	logrus.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"brand_uid":    order.BrandUID,
	}).Info("order created")

	return order, nil
}

// Get returns one order. Only the two owning parties may read it.
func (s *Service) Get(ctx context.Context, actor, orderID string) (models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if actor != order.BrandUID && actor != order.InfluencerUID {
		return models.Order{}, ErrUnauthorized
	}
	return order, nil
}

// ListForActor returns every order the actor is a party to, sorted
// ascending by order number. Numbers are unique so ties cannot occur.
func (s *Service) ListForActor(ctx context.Context, actor string) ([]models.Order, error) {
	if actor == "" {
		return nil, ErrUnauthorized
	}

	var out []models.Order
	for _, field := range []string{"brandUid", "influencerUid"} {
		docs, err := s.store.Query(ctx, Collection, gateway.Where{Field: field, Value: actor})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		for _, doc := range docs {
			var order models.Order
			if err := gateway.Decode(doc, &order); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
			}
			out = append(out, order)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].OrderNumber < out[j].OrderNumber
	})
	return out, nil
}

// Start moves a pending order to remaining and starts the deadline clock.
// Only the order's influencer may start it, and only from pending; the
// guard lives here, not in any UI.
func (s *Service) Start(ctx context.Context, actor, orderID string) (models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if actor != order.InfluencerUID {
		return models.Order{}, ErrUnauthorized
	}
	if order.Status != models.StatusPending {
		return models.Order{}, fmt.Errorf("%w: cannot start order in status %q", ErrValidation, order.Status)
	}

	startTime := s.now().UTC()
	if err := s.store.Update(ctx, Collection, orderID, gateway.Document{
		"status":    models.StatusRemaining,
		"startTime": startTime,
	}); err != nil {
		return models.Order{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	order.Status = models.StatusRemaining
	order.StartTime = &startTime

	logrus.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	}).Info("order started")

	return order, nil
}

// Complete moves a remaining order to its terminal completed status. Only
// the order's brand may complete it, and never straight from pending.
func (s *Service) Complete(ctx context.Context, actor, orderID string) (models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if actor != order.BrandUID {
		return models.Order{}, ErrUnauthorized
	}
	if order.Status != models.StatusRemaining {
		return models.Order{}, fmt.Errorf("%w: cannot complete order in status %q", ErrValidation, order.Status)
	}

	if err := s.store.Update(ctx, Collection, orderID, gateway.Document{
		"status": models.StatusCompleted,
	}); err != nil {
		return models.Order{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	order.Status = models.StatusCompleted

	logrus.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	}).Info("order completed")

	return order, nil
}

// Remaining renders the order's live countdown as of now. Orders that have
// not been started have no countdown.
func (s *Service) Remaining(order models.Order) string {
	if !order.Started() {
		return ""
	}
	return RemainingTime(*order.StartTime, order.Deadline, s.now())
}

func (s *Service) load(ctx context.Context, orderID string) (models.Order, error) {
	doc, err := s.store.Get(ctx, Collection, orderID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return models.Order{}, ErrNotFound
		}
		return models.Order{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	var order models.Order
	if err := gateway.Decode(doc, &order); err != nil {
		return models.Order{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return order, nil
}

func (s *Service) nextOrderNumber(ctx context.Context) (int, error) {
	docs, err := s.store.Query(ctx, Collection)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	max := models.OrderNumberBase
	for _, doc := range docs {
		var order models.Order
		if err := gateway.Decode(doc, &order); err != nil {
			continue
		}
		if order.OrderNumber > max {
			max = order.OrderNumber
		}
	}
	return max + 1, nil
}
