package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flumers-backend/internal/gateway"
	"flumers-backend/internal/models"
)

func TestAppendSubmission_SeenFlagLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, brandUID, validInput())
	require.NoError(t, err)

	updated, err := svc.AppendSubmission(ctx, influencerUID, order.ID, "https://cdn/clip.mp4", "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, 1, UnseenSubmissionCount(updated))

	require.NoError(t, svc.MarkSubmissionsSeen(ctx, brandUID, order.ID))
	reloaded, err := svc.Get(ctx, brandUID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, UnseenSubmissionCount(reloaded))

	// The bulk flip covers only entries present at mark time; a later
	// append starts unseen again.
	_, err = svc.AppendSubmission(ctx, influencerUID, order.ID, "https://cdn/clip2.mp4", "video/mp4")
	require.NoError(t, err)
	reloaded, err = svc.Get(ctx, brandUID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, UnseenSubmissionCount(reloaded))
	assert.True(t, reloaded.Submission.Files[0].SeenByBrand)
	assert.False(t, reloaded.Submission.Files[1].SeenByBrand)

	// Marking again is idempotent.
	require.NoError(t, svc.MarkSubmissionsSeen(ctx, brandUID, order.ID))
	require.NoError(t, svc.MarkSubmissionsSeen(ctx, brandUID, order.ID))
	reloaded, err = svc.Get(ctx, brandUID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, UnseenSubmissionCount(reloaded))
}

func TestAppendRevision_SeenFlagLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, brandUID, validInput())
	require.NoError(t, err)

	updated, err := svc.AppendRevision(ctx, brandUID, order.ID, "swap the thumbnail")
	require.NoError(t, err)
	assert.Equal(t, 1, UnseenRevisionCount(updated))
	assert.Equal(t, models.StatusPending, updated.Status, "a revision never changes the order status")

	require.NoError(t, svc.MarkRevisionsSeen(ctx, influencerUID, order.ID))
	reloaded, err := svc.Get(ctx, influencerUID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, UnseenRevisionCount(reloaded))
}

func TestTracker_ActorGuards(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, brandUID, validInput())
	require.NoError(t, err)

	_, err = svc.AppendSubmission(ctx, brandUID, order.ID, "https://cdn/x.mp4", "video/mp4")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.AppendRevision(ctx, influencerUID, order.ID, "note")
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.ErrorIs(t, svc.MarkSubmissionsSeen(ctx, influencerUID, order.ID), ErrUnauthorized)
	assert.ErrorIs(t, svc.MarkRevisionsSeen(ctx, brandUID, order.ID), ErrUnauthorized)
}

func TestTracker_NotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AppendSubmission(ctx, influencerUID, "missing", "https://cdn/x.mp4", "video/mp4")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AppendRevision(ctx, brandUID, "missing", "note")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendSubmission_PrunesMalformedEntries(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, brandUID, validInput())
	require.NoError(t, err)

	// A legacy record with an entry missing its file URL.
	require.NoError(t, store.Update(ctx, Collection, order.ID, gateway.Document{
		"submission": map[string]interface{}{
			"files": []interface{}{
				map[string]interface{}{"fileUrl": "", "fileType": "video/mp4"},
				map[string]interface{}{"fileUrl": "https://cdn/ok.mp4", "fileType": "video/mp4"},
			},
		},
	}))

	updated, err := svc.AppendSubmission(ctx, influencerUID, order.ID, "https://cdn/new.mp4", "video/mp4")
	require.NoError(t, err)

	require.Len(t, updated.Submission.Files, 2)
	assert.Equal(t, "https://cdn/ok.mp4", updated.Submission.Files[0].FileURL)
	assert.Equal(t, "https://cdn/new.mp4", updated.Submission.Files[1].FileURL)
}

// Two viewers can each read the order, append to their in-memory copy of
// the revision list, and write the whole list back. The second write wins
// and the first note is lost. That last-write-wins outcome is the accepted
// behavior of whole-array merge-writes, and this test pins it down so a
// future change to atomic appends is a deliberate one.
func TestConcurrentAppend_DocumentedLastWriteWins(t *testing.T) {
	svc, store, clock := newTestService(t)
	ctx := context.Background()

	order, err := svc.Create(ctx, brandUID, validInput())
	require.NoError(t, err)

	// Both clients snapshot the order before either writes.
	docA, err := store.Get(ctx, Collection, order.ID)
	require.NoError(t, err)
	docB, err := store.Get(ctx, Collection, order.ID)
	require.NoError(t, err)

	var orderA, orderB models.Order
	require.NoError(t, gateway.Decode(docA, &orderA))
	require.NoError(t, gateway.Decode(docB, &orderB))

	writeBack := func(o models.Order, text string) {
		revs := append(o.Revisions, models.RevisionNote{Text: text, RevisedAt: clock.Now()})
		require.NoError(t, store.Update(ctx, Collection, o.ID, gateway.Document{"revisions": revs}))
	}
	writeBack(orderA, "first note")
	writeBack(orderB, "second note")

	final, err := svc.Get(ctx, brandUID, order.ID)
	require.NoError(t, err)
	require.Len(t, final.Revisions, 1, "whole-array writes: one of the concurrent appends is lost")
	assert.Equal(t, "second note", final.Revisions[0].Text)
}
