package storage

import (
	"strings"

	"turnping/internal/model"
)

// NormalizeCode folds a join code to its stored form
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeNewGameSession checks required fields and returns the
// payload in stored form. An empty CurrentTurn defaults to player 1.
func NormalizeNewGameSession(in model.NewGameSession) (model.NewGameSession, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Code = NormalizeCode(in.Code)

	switch {
	case in.Name == "":
		return in, invalid("name is required")
	case in.Code == "":
		return in, invalid("code is required")
	case in.Player1SteamID == "":
		return in, invalid("player1SteamId is required")
	case in.Player2SteamID == "":
		return in, invalid("player2SteamId is required")
	}

	if in.CurrentTurn == "" {
		in.CurrentTurn = in.Player1SteamID
	}
	if in.CurrentTurn != in.Player1SteamID && in.CurrentTurn != in.Player2SteamID {
		return in, invalid("currentTurn %q is not a player of the session", in.CurrentTurn)
	}
	return in, nil
}

// ValidateTurn checks a turn update payload
func ValidateTurn(steamID string) error {
	if steamID == "" {
		return invalid("currentTurn is required")
	}
	return nil
}

// InvalidTurn is returned when steamID does not belong to the session
func InvalidTurn(id, steamID string) error {
	return invalid("%q is not a player of game session %s", steamID, id)
}

// ValidatePlayerStatus checks an upsert payload
func ValidatePlayerStatus(in model.PlayerStatusInput) error {
	switch {
	case in.GameSessionID == "":
		return invalid("gameSessionId is required")
	case in.SteamID == "":
		return invalid("steamId is required")
	case !in.Status.Valid():
		return invalid("unknown status %q", in.Status)
	}
	return nil
}

// ValidateSubscription checks a subscription payload.
// Credential fields are opaque and not inspected.
func ValidateSubscription(in model.SubscriptionInput) error {
	if in.SteamID == "" {
		return invalid("steamId is required")
	}
	return nil
}
