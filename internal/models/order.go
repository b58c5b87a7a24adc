package models

import (
	"time"
)

// Order statuses. An order is created pending, moves to remaining when the
// influencer starts work, and ends completed. Completed is terminal.
const (
	StatusPending   = "pending"
	StatusRemaining = "remaining"
	StatusCompleted = "completed"
)

// OrderNumberBase is the floor for human-facing order numbers; the first
// order ever created gets 1000.
const OrderNumberBase = 999

type Order struct {
	ID            string         `json:"id"`
	OrderNumber   int            `json:"orderNumber"`
	BrandUID      string         `json:"brandUid"`
	InfluencerUID string         `json:"influencerUid"`
	Status        string         `json:"status"`
	OrderDetails  string         `json:"orderDetails"`
	TotalCost     float64        `json:"totalCost"`
	Deadline      int            `json:"deadline"`
	ImageURL      string         `json:"imageUrl,omitempty"`
	StartTime     *time.Time     `json:"startTime,omitempty"`
	Submission    Submission     `json:"submission"`
	Revisions     []RevisionNote `json:"revisions"`
	CreatedAt     time.Time      `json:"createdAt"`
}

type Submission struct {
	Files []SubmissionFile `json:"files"`
}

type SubmissionFile struct {
	FileURL     string    `json:"fileUrl"`
	FileType    string    `json:"fileType"`
	SubmittedAt time.Time `json:"submittedAt"`
	SeenByBrand bool      `json:"seenByBrand"`
}

type RevisionNote struct {
	Text             string    `json:"text"`
	RevisedAt        time.Time `json:"revisedAt"`
	SeenByInfluencer bool      `json:"seenByInfluencer"`
}

// Started reports whether the deadline clock is running or has run.
func (o *Order) Started() bool {
	return o.StartTime != nil
}
