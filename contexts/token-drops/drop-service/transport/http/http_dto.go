package http

import "dropcover/contexts/token-drops/drop-service/ports"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateDropRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	TokenSymbol string   `json:"token_symbol"`
	Network     string   `json:"network"`
	TotalSupply float64  `json:"total_supply"`
	Price       *float64 `json:"price,omitempty"`
	StartTime   string   `json:"start_time"`         // RFC3339
	EndTime     *string  `json:"end_time,omitempty"` // RFC3339
	WebsiteURL  string   `json:"website_url,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
}

// UpdateDropRequest carries presence-distinguishing fields: an absent key
// leaves the stored value unchanged, an explicit null clears optional fields.
type UpdateDropRequest struct {
	Name        ports.Field[string]  `json:"name"`
	Description ports.Field[string]  `json:"description"`
	TokenSymbol ports.Field[string]  `json:"token_symbol"`
	Network     ports.Field[string]  `json:"network"`
	TotalSupply ports.Field[float64] `json:"total_supply"`
	Price       ports.Field[float64] `json:"price"`
	StartTime   ports.Field[string]  `json:"start_time"`
	EndTime     ports.Field[string]  `json:"end_time"`
	WebsiteURL  ports.Field[string]  `json:"website_url"`
	ImageURL    ports.Field[string]  `json:"image_url"`
	IsActive    ports.Field[bool]    `json:"is_active"`
}

type DropPayload struct {
	DropID      string   `json:"drop_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	TokenSymbol string   `json:"token_symbol"`
	Network     string   `json:"network"`
	TotalSupply float64  `json:"total_supply"`
	Price       *float64 `json:"price,omitempty"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time,omitempty"`
	WebsiteURL  string   `json:"website_url,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	CreatedBy   string   `json:"created_by"`
	CreatedAt   string   `json:"created_at"`
	IsActive    bool     `json:"is_active"`
}

type DropResponse struct {
	Status string      `json:"status"`
	Data   DropPayload `json:"data"`
}

type DropListResponse struct {
	Status string `json:"status"`
	Data   struct {
		Drops []DropPayload `json:"drops"`
	} `json:"data"`
}

type PreferencePayload struct {
	Kind     string   `json:"kind"`
	Tokens   []string `json:"tokens,omitempty"`
	Networks []string `json:"networks,omitempty"`
}

type UpdateProfileRequest struct {
	Preference   ports.Field[PreferencePayload] `json:"preference"`
	EmailEnabled ports.Field[bool]              `json:"email_enabled"`
	PushEnabled  ports.Field[bool]              `json:"push_enabled"`
	Email        ports.Field[string]            `json:"email"`
}

type ProfilePayload struct {
	UserID       string            `json:"user_id"`
	Preference   PreferencePayload `json:"preference"`
	EmailEnabled bool              `json:"email_enabled"`
	PushEnabled  bool              `json:"push_enabled"`
	Email        string            `json:"email,omitempty"`
	CreatedAt    string            `json:"created_at"`
	UpdatedAt    string            `json:"updated_at"`
}

type ProfileResponse struct {
	Status string         `json:"status"`
	Data   ProfilePayload `json:"data"`
}

type SubscriptionAckResponse struct {
	Status string `json:"status"`
	Data   struct {
		DropID     string `json:"drop_id"`
		Subscribed bool   `json:"subscribed"`
	} `json:"data"`
}

type NotificationPayload struct {
	NotificationID string `json:"notification_id"`
	UserID         string `json:"user_id"`
	DropID         string `json:"drop_id"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	CreatedAt      string `json:"created_at"`
	Read           bool   `json:"read"`
}

type NotificationListResponse struct {
	Status string `json:"status"`
	Data   struct {
		Notifications []NotificationPayload `json:"notifications"`
		UnreadCount   int                   `json:"unread_count"`
	} `json:"data"`
}

type NotificationResponse struct {
	Status string              `json:"status"`
	Data   NotificationPayload `json:"data"`
}
