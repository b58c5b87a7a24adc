package models

import "time"

type OrderResponse struct {
	ID            string     `json:"id"`
	OrderNumber   int        `json:"order_number"`
	BrandUID      string     `json:"brand_uid"`
	InfluencerUID string     `json:"influencer_uid"`
	Status        string     `json:"status"`
	OrderDetails  string     `json:"order_details"`
	TotalCost     float64    `json:"total_cost"`
	Deadline      int        `json:"deadline"`
	ImageURL      string     `json:"image_url,omitempty"`
	StartTime     *time.Time `json:"start_time,omitempty"`
	// RemainingTime is recomputed from start_time and deadline on every
	// read; "00:00:00:00" once the deadline has passed.
	RemainingTime string         `json:"remaining_time,omitempty"`
	Submission    Submission     `json:"submission"`
	Revisions     []RevisionNote `json:"revisions"`
	CreatedAt     time.Time      `json:"created_at"`
}

type OrderListResponse struct {
	Orders []OrderSummary `json:"orders"`
}

type OrderSummary struct {
	ID                string    `json:"id"`
	OrderNumber       int       `json:"order_number"`
	Status            string    `json:"status"`
	TotalCost         float64   `json:"total_cost"`
	RemainingTime     string    `json:"remaining_time,omitempty"`
	UnseenSubmissions int       `json:"unseen_submissions"`
	UnseenRevisions   int       `json:"unseen_revisions"`
	CreatedAt         time.Time `json:"created_at"`
}

type UploadResponse struct {
	OrderID string     `json:"order_id"`
	Files   []FileInfo `json:"files"`
	Errors  []string   `json:"errors,omitempty"`
}

type FileInfo struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}

type MessageListResponse struct {
	ChatKey  string    `json:"chat_key"`
	Messages []Message `json:"messages"`
}

type UnreadResponse struct {
	PeerUID string `json:"peer_uid"`
	Unread  int    `json:"unread"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
