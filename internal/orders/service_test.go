package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flumers-backend/internal/gateway"
	"flumers-backend/internal/models"
)

const (
	brandUID      = "brand-1"
	influencerUID = "influencer-1"
)

func newTestService(t *testing.T) (*Service, *gateway.MemoryStore, *fakeClock) {
	t.Helper()
	store := gateway.NewMemoryStore(nil)
	clock := &fakeClock{t: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)}
	return NewServiceWithClock(store, clock.Now), store, clock
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func validInput() CreateInput {
	return CreateInput{
		InfluencerUID: influencerUID,
		OrderDetails:  "three reels promoting the spring line",
		TotalCost:     250,
		Deadline:      7,
	}
}

func TestCreate_AssignsSequentialOrderNumbers(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, brandUID, validInput())
	require.NoError(t, err)
	assert.Equal(t, 1000, first.OrderNumber)
	assert.Equal(t, models.StatusPending, first.Status)
	assert.Nil(t, first.StartTime)

	second, err := svc.Create(ctx, brandUID, validInput())
	require.NoError(t, err)
	assert.Equal(t, 1001, second.OrderNumber)

	third, err := svc.Create(ctx, "brand-2", validInput())
	require.NoError(t, err)
	assert.Equal(t, 1002, third.OrderNumber)
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "", validInput())
	assert.ErrorIs(t, err, ErrUnauthorized)

	in := validInput()
	in.InfluencerUID = ""
	_, err = svc.Create(ctx, brandUID, in)
	assert.ErrorIs(t, err, ErrValidation)

	in = validInput()
	in.TotalCost = 0
	_, err = svc.Create(ctx, brandUID, in)
	assert.ErrorIs(t, err, ErrValidation)

	in = validInput()
	in.Deadline = -1
	_, err = svc.Create(ctx, brandUID, in)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStart_SetsStartTimeOnce(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, brandUID, validInput())
	require.NoError(t, err)

	started, err := svc.Start(ctx, influencerUID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRemaining, started.Status)
	require.NotNil(t, started.StartTime)
	assert.Equal(t, clock.Now(), *started.StartTime)

	// Starting again is rejected and the order is unchanged.
	_, err = svc.Start(ctx, influencerUID, order.ID)
	assert.ErrorIs(t, err, ErrValidation)

	reloaded, err := svc.Get(ctx, influencerUID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRemaining, reloaded.Status)
	assert.Equal(t, *started.StartTime, *reloaded.StartTime)
}

func TestStart_OnlyInfluencer(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, brandUID, validInput())
	require.NoError(t, err)

	_, err = svc.Start(ctx, brandUID, order.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Start(ctx, influencerUID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestComplete_RequiresRemaining(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, brandUID, validInput())
	require.NoError(t, err)

	// Completing straight from pending is rejected; an order cannot skip
	// the remaining status.
	_, err = svc.Complete(ctx, brandUID, order.ID)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Start(ctx, influencerUID, order.ID)
	require.NoError(t, err)

	_, err = svc.Complete(ctx, influencerUID, order.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	completed, err := svc.Complete(ctx, brandUID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, completed.Status)

	// Completed is terminal.
	_, err = svc.Complete(ctx, brandUID, order.ID)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Start(ctx, influencerUID, order.ID)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestExpiry_NoAutoTransition(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	in := validInput()
	in.Deadline = 1
	order, err := svc.Create(ctx, brandUID, in)
	require.NoError(t, err)

	started, err := svc.Start(ctx, influencerUID, order.ID)
	require.NoError(t, err)

	clock.Advance(25 * time.Hour)

	assert.Equal(t, ExpiredCountdown, svc.Remaining(started))

	// The order is delayed but still remaining; expiry never moves the
	// state machine.
	reloaded, err := svc.Get(ctx, brandUID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRemaining, reloaded.Status)
}

func TestListForActor_SortedByOrderNumber(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, brandUID, validInput())
		require.NoError(t, err)
	}

	brandView, err := svc.ListForActor(ctx, brandUID)
	require.NoError(t, err)
	require.Len(t, brandView, 3)
	assert.Equal(t, []int{1000, 1001, 1002}, []int{
		brandView[0].OrderNumber, brandView[1].OrderNumber, brandView[2].OrderNumber,
	})

	influencerView, err := svc.ListForActor(ctx, influencerUID)
	require.NoError(t, err)
	assert.Len(t, influencerView, 3)

	strangerView, err := svc.ListForActor(ctx, "someone-else")
	require.NoError(t, err)
	assert.Empty(t, strangerView)
}

func TestGet_PartiesOnly(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, brandUID, validInput())
	require.NoError(t, err)

	_, err = svc.Get(ctx, "stranger", order.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Get(ctx, brandUID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrder_StorageRoundTrip(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, brandUID, validInput())
	require.NoError(t, err)
	_, err = svc.Start(ctx, influencerUID, order.ID)
	require.NoError(t, err)

	for _, url := range []string{"https://cdn/a.mp4", "https://cdn/b.mp4"} {
		_, err = svc.AppendSubmission(ctx, influencerUID, order.ID, url, "video/mp4")
		require.NoError(t, err)
	}
	_, err = svc.AppendRevision(ctx, brandUID, order.ID, "tighten the intro")
	require.NoError(t, err)

	doc, err := store.Get(ctx, Collection, order.ID)
	require.NoError(t, err)
	var restored models.Order
	require.NoError(t, gateway.Decode(doc, &restored))

	assert.Equal(t, order.ID, restored.ID)
	assert.Equal(t, order.OrderNumber, restored.OrderNumber)
	assert.Equal(t, order.BrandUID, restored.BrandUID)
	assert.Equal(t, order.InfluencerUID, restored.InfluencerUID)
	require.Len(t, restored.Submission.Files, 2)
	assert.Equal(t, "https://cdn/a.mp4", restored.Submission.Files[0].FileURL)
	assert.Equal(t, "https://cdn/b.mp4", restored.Submission.Files[1].FileURL)
	require.Len(t, restored.Revisions, 1)
	assert.Equal(t, "tighten the intro", restored.Revisions[0].Text)
}
