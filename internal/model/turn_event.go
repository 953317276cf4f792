package model

import "time"

// TurnEvent is published whenever a session's current turn changes
type TurnEvent struct {
	ID            string    `json:"id"`
	GameSessionID string    `json:"gameSessionId"`
	Code          string    `json:"code"`
	PreviousTurn  string    `json:"previousTurn"`
	CurrentTurn   string    `json:"currentTurn"`
	CompletedAt   time.Time `json:"completedAt"`
}
