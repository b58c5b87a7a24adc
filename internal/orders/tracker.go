package orders

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"flumers-backend/internal/gateway"
	"flumers-backend/internal/models"
)

// The submission and revision lists are append-only: entries are never
// removed or reordered, and the only mutation of an existing entry is the
// one-way flip of its seen flag. All four mutators below write the whole
// list back after a read, which is last-write-wins under concurrent
// appends. Each list has a single writing role, so real interleavings
// are rare and the simpler write path is kept.

// AppendSubmission attaches a deliverable file to the order. Only the
// order's influencer may submit. Stored entries without a file URL are
// dropped before the append as a data-hygiene step.
func (s *Service) AppendSubmission(ctx context.Context, actor, orderID string, fileURL, fileType string) (models.Order, error) {
	if fileURL == "" {
		return models.Order{}, fmt.Errorf("%w: file URL is required", ErrValidation)
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if actor != order.InfluencerUID {
		return models.Order{}, ErrUnauthorized
	}

	files := pruneMalformed(order.Submission.Files)
	files = append(files, models.SubmissionFile{
		FileURL:     fileURL,
		FileType:    fileType,
		SubmittedAt: s.now().UTC(),
		SeenByBrand: false,
	})

	if err := s.store.Update(ctx, Collection, orderID, gateway.Document{
		"submission": models.Submission{Files: files},
	}); err != nil {
		return models.Order{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	order.Submission.Files = files

	logrus.WithFields(logrus.Fields{
		"order_id": orderID,
		"files":    len(files),
	}).Info("submission appended")

	return order, nil
}

// AppendRevision attaches a feedback note to the order. Only the order's
// brand may revise, and a revision never changes the order status.
func (s *Service) AppendRevision(ctx context.Context, actor, orderID, text string) (models.Order, error) {
	if text == "" {
		return models.Order{}, fmt.Errorf("%w: revision text is required", ErrValidation)
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if actor != order.BrandUID {
		return models.Order{}, ErrUnauthorized
	}

	revisions := append(order.Revisions, models.RevisionNote{
		Text:             text,
		RevisedAt:        s.now().UTC(),
		SeenByInfluencer: false,
	})

	if err := s.store.Update(ctx, Collection, orderID, gateway.Document{
		"revisions": revisions,
	}); err != nil {
		return models.Order{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	order.Revisions = revisions

	logrus.WithFields(logrus.Fields{
		"order_id":  orderID,
		"revisions": len(revisions),
	}).Info("revision appended")

	return order, nil
}

// MarkSubmissionsSeen flips seenByBrand on every submission file currently
// on the order, in one bulk write. Idempotent; files appended later start
// unseen again. Only the brand may mark its inbound items.
func (s *Service) MarkSubmissionsSeen(ctx context.Context, actor, orderID string) error {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return err
	}
	if actor != order.BrandUID {
		return ErrUnauthorized
	}

	changed := false
	for i := range order.Submission.Files {
		if !order.Submission.Files[i].SeenByBrand {
			order.Submission.Files[i].SeenByBrand = true
			changed = true
		}
	}
	if !changed {
		return nil
	}

	if err := s.store.Update(ctx, Collection, orderID, gateway.Document{
		"submission": order.Submission,
	}); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

// MarkRevisionsSeen is the influencer-side counterpart: a bulk one-way
// flip of seenByInfluencer on every current revision note.
func (s *Service) MarkRevisionsSeen(ctx context.Context, actor, orderID string) error {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return err
	}
	if actor != order.InfluencerUID {
		return ErrUnauthorized
	}

	changed := false
	for i := range order.Revisions {
		if !order.Revisions[i].SeenByInfluencer {
			order.Revisions[i].SeenByInfluencer = true
			changed = true
		}
	}
	if !changed {
		return nil
	}

	if err := s.store.Update(ctx, Collection, orderID, gateway.Document{
		"revisions": order.Revisions,
	}); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

func pruneMalformed(files []models.SubmissionFile) []models.SubmissionFile {
	out := make([]models.SubmissionFile, 0, len(files))
	for _, f := range files {
		if f.FileURL == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}
