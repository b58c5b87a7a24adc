package orders

import "flumers-backend/internal/models"

// Badge counts are derived by a fresh scan of the order's embedded lists
// every time they are needed. Nothing is cached or incrementally
// maintained; the always-re-derive contract is the point.

// UnseenSubmissionCount is the brand-side badge: submission files the
// brand has not yet marked seen.
func UnseenSubmissionCount(order models.Order) int {
	n := 0
	for _, f := range order.Submission.Files {
		if !f.SeenByBrand {
			n++
		}
	}
	return n
}

// UnseenRevisionCount is the influencer-side badge: revision notes the
// influencer has not yet marked seen.
func UnseenRevisionCount(order models.Order) int {
	n := 0
	for _, r := range order.Revisions {
		if !r.SeenByInfluencer {
			n++
		}
	}
	return n
}
