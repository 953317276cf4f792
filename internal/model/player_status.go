package model

import "time"

type Status string

const (
	StatusReady       Status = "ready"
	StatusBusy        Status = "busy"
	StatusUnavailable Status = "unavailable"
)

// Valid reports whether s is one of the persisted statuses.
// There is no persisted "waiting": a missing record means waiting.
func (s Status) Valid() bool {
	switch s {
	case StatusReady, StatusBusy, StatusUnavailable:
		return true
	}
	return false
}

// PlayerStatus is a player's availability within one game session
type PlayerStatus struct {
	ID                string     `json:"id" bson:"_id,omitempty"`
	GameSessionID     string     `json:"gameSessionId" bson:"gameSessionId"`
	SteamID           string     `json:"steamId" bson:"steamId"`
	Status            Status     `json:"status" bson:"status"`
	Message           *string    `json:"message" bson:"message"`
	LastTurnCompleted *time.Time `json:"lastTurnCompleted" bson:"lastTurnCompleted"`
	UpdatedAt         time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// PlayerStatusInput is the upsert payload for a PlayerStatus
type PlayerStatusInput struct {
	GameSessionID     string
	SteamID           string
	Status            Status
	Message           MessageUpdate
	LastTurnCompleted *time.Time // nil leaves the stored value alone
}

// MessageUpdate says what an update does to the stored message:
// keep it, clear it, or replace it.
type MessageUpdate struct {
	set   bool
	value *string
}

// KeepMessage leaves the stored message untouched.
func KeepMessage() MessageUpdate { return MessageUpdate{} }

// ClearMessage overwrites the stored message with null.
func ClearMessage() MessageUpdate { return MessageUpdate{set: true} }

// SetMessage overwrites the stored message with msg.
func SetMessage(msg string) MessageUpdate { return MessageUpdate{set: true, value: &msg} }

// MessageFromPtr maps a decoded optional field: nil keeps, non-nil sets.
func MessageFromPtr(msg *string) MessageUpdate {
	if msg == nil {
		return KeepMessage()
	}
	return SetMessage(*msg)
}

func (m MessageUpdate) IsSet() bool { return m.set }

// Value returns a fresh copy of the new message, nil for a clear or keep.
func (m MessageUpdate) Value() *string {
	if m.value == nil {
		return nil
	}
	v := *m.value
	return &v
}
