package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"turnping/internal/model"
	"turnping/internal/storage"
)

type gameSessionDoc struct {
	ID             primitive.ObjectID `bson:"_id"`
	Name           string             `bson:"name"`
	Code           string             `bson:"code"`
	Player1SteamID string             `bson:"player1SteamId"`
	Player2SteamID string             `bson:"player2SteamId"`
	CurrentTurn    string             `bson:"currentTurn"`
	CreatedAt      time.Time          `bson:"createdAt"`
}

func (d *gameSessionDoc) toModel() *model.GameSession {
	return &model.GameSession{
		ID:             d.ID.Hex(),
		Name:           d.Name,
		Code:           d.Code,
		Player1SteamID: d.Player1SteamID,
		Player2SteamID: d.Player2SteamID,
		CurrentTurn:    d.CurrentTurn,
		CreatedAt:      d.CreatedAt,
	}
}

func (r *Store) CreateGameSession(ctx context.Context, in model.NewGameSession) (*model.GameSession, error) {
	in, err := storage.NormalizeNewGameSession(in)
	if err != nil {
		return nil, err
	}

	doc := &gameSessionDoc{
		ID:             primitive.NewObjectID(),
		Name:           in.Name,
		Code:           in.Code,
		Player1SteamID: in.Player1SteamID,
		Player2SteamID: in.Player2SteamID,
		CurrentTurn:    in.CurrentTurn,
		CreatedAt:      r.now(),
	}
	if _, err := r.gameSessions.InsertOne(ctx, doc); err != nil {
		return nil, failure(ctx, "create game session", err)
	}
	return doc.toModel(), nil
}

func (r *Store) GetGameSessionByCode(ctx context.Context, code string) (*model.GameSession, error) {
	var doc gameSessionDoc
	found, err := findOne(ctx, r.gameSessions, "get game session by code", bson.M{"code": storage.NormalizeCode(code)}, &doc)
	if err != nil || !found {
		return nil, err
	}
	return doc.toModel(), nil
}

func (r *Store) GetGameSessionByID(ctx context.Context, id string) (*model.GameSession, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}

	var doc gameSessionDoc
	found, err := findOne(ctx, r.gameSessions, "get game session by id", bson.M{"_id": oid}, &doc)
	if err != nil || !found {
		return nil, err
	}
	return doc.toModel(), nil
}

func (r *Store) GetGameSessionWithPlayers(ctx context.Context, id string) (*model.GameSessionWithPlayers, error) {
	session, err := r.GetGameSessionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return storage.WithPlayers(ctx, r, session)
}

func (r *Store) GetGameSessionWithPlayersByCode(ctx context.Context, code string) (*model.GameSessionWithPlayers, error) {
	session, err := r.GetGameSessionByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return storage.WithPlayers(ctx, r, session)
}

// UpdateGameSessionTurn only matches when steamID is one of the session's
// players, so currentTurn can never leave the pair.
func (r *Store) UpdateGameSessionTurn(ctx context.Context, id, steamID string) (*model.GameSession, error) {
	if err := storage.ValidateTurn(steamID); err != nil {
		return nil, err
	}
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}

	filter := bson.M{
		"_id": oid,
		"$or": bson.A{
			bson.M{"player1SteamId": steamID},
			bson.M{"player2SteamId": steamID},
		},
	}
	update := bson.M{"$set": bson.M{"currentTurn": steamID}}

	var doc gameSessionDoc
	err := r.gameSessions.FindOneAndUpdate(ctx, filter, update, returnAfter()).Decode(&doc)
	if err == nil {
		return doc.toModel(), nil
	}
	if !isNotFound(err) {
		return nil, failure(ctx, "update game session turn", err)
	}

	// no match: either the session is missing or steamID is not a player
	session, err := r.GetGameSessionByID(ctx, id)
	if err != nil || session == nil {
		return nil, err
	}
	return nil, storage.InvalidTurn(id, steamID)
}
