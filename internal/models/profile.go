package models

import "time"

// Roles a user can onboard as. The role is fixed at onboarding and drives
// which side of an order a user may act on.
const (
	RoleBrand      = "brand"
	RoleInfluencer = "influencer"
)

type Profile struct {
	UID         string    `json:"uid"`
	Role        string    `json:"role"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Bio         string    `json:"bio,omitempty"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	Category    string    `json:"category,omitempty"`
	Platform    string    `json:"platform,omitempty"`
	Followers   int       `json:"followers,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
