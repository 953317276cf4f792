package model

import "time"

// GameSession is a two-player game tracked by its join code
type GameSession struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	Name           string    `json:"name" bson:"name"`
	Code           string    `json:"code" bson:"code"`
	Player1SteamID string    `json:"player1SteamId" bson:"player1SteamId"`
	Player2SteamID string    `json:"player2SteamId" bson:"player2SteamId"`
	CurrentTurn    string    `json:"currentTurn" bson:"currentTurn"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

// HasPlayer reports whether steamID is one of the two players
func (g *GameSession) HasPlayer(steamID string) bool {
	return steamID != "" && (steamID == g.Player1SteamID || steamID == g.Player2SteamID)
}

// Opponent returns the other player, or "" if steamID is not in the session
func (g *GameSession) Opponent(steamID string) string {
	switch steamID {
	case g.Player1SteamID:
		return g.Player2SteamID
	case g.Player2SteamID:
		return g.Player1SteamID
	}
	return ""
}

// NewGameSession is the caller-supplied part of a GameSession
type NewGameSession struct {
	Name           string `json:"name"`
	Code           string `json:"code"`
	Player1SteamID string `json:"player1SteamId"`
	Player2SteamID string `json:"player2SteamId"`
	CurrentTurn    string `json:"currentTurn"`
}

// GameSessionWithPlayers is a session together with both players' statuses.
// A nil status means the player has not reported one yet.
type GameSessionWithPlayers struct {
	GameSession
	Player1Status *PlayerStatus `json:"player1Status"`
	Player2Status *PlayerStatus `json:"player2Status"`
}
