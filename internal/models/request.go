package models

type CreateOrderRequest struct {
	InfluencerUID string  `json:"influencer_uid" binding:"required"`
	OrderDetails  string  `json:"order_details" binding:"required"`
	TotalCost     float64 `json:"total_cost" binding:"required,gt=0"`
	// Deadline in whole days, counted from the moment the influencer starts.
	Deadline int    `json:"deadline" binding:"required,gt=0" example:"7"`
	ImageURL string `json:"image_url,omitempty"`
}

type AppendRevisionRequest struct {
	Text string `json:"text" binding:"required"`
}

type OnboardRequest struct {
	Role        string `json:"role" validate:"required,oneof=brand influencer"`
	Username    string `json:"username" validate:"required,min=3,max=30"`
	DisplayName string `json:"display_name" validate:"required"`
	Bio         string `json:"bio,omitempty"`
	Category    string `json:"category,omitempty"`
	Platform    string `json:"platform,omitempty"`
	Followers   int    `json:"followers,omitempty" validate:"gte=0"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name,omitempty"`
	Bio         string `json:"bio,omitempty"`
	Category    string `json:"category,omitempty"`
	Platform    string `json:"platform,omitempty"`
	Followers   int    `json:"followers,omitempty" validate:"gte=0"`
}

type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

type SupportRequest struct {
	Text string `json:"text" binding:"required"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
