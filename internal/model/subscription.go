package model

import "time"

// Subscription holds a player's browser push credentials.
// The fields are stored verbatim and never inspected.
type Subscription struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	SteamID   string    `json:"steamId" bson:"steamId"`
	Endpoint  string    `json:"endpoint" bson:"endpoint"`
	P256dh    string    `json:"p256dh" bson:"p256dh"`
	Auth      string    `json:"auth" bson:"auth"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// SubscriptionInput is the payload handed over by the push transport
type SubscriptionInput struct {
	SteamID  string `json:"steamId"`
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}
