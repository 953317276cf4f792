package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"turnping/internal/model"
	"turnping/internal/storage"
)

type playerStatusDoc struct {
	ID                primitive.ObjectID `bson:"_id"`
	GameSessionID     string             `bson:"gameSessionId"`
	SteamID           string             `bson:"steamId"`
	Status            model.Status       `bson:"status"`
	Message           *string            `bson:"message"`
	LastTurnCompleted *time.Time         `bson:"lastTurnCompleted"`
	UpdatedAt         time.Time          `bson:"updatedAt"`
}

func (d *playerStatusDoc) toModel() *model.PlayerStatus {
	return &model.PlayerStatus{
		ID:                d.ID.Hex(),
		GameSessionID:     d.GameSessionID,
		SteamID:           d.SteamID,
		Status:            d.Status,
		Message:           d.Message,
		LastTurnCompleted: d.LastTurnCompleted,
		UpdatedAt:         d.UpdatedAt,
	}
}

func statusKey(gameSessionID, steamID string) bson.M {
	return bson.M{"gameSessionId": gameSessionID, "steamId": steamID}
}

// CreatePlayerStatus upserts by (gameSessionId, steamId)
func (r *Store) CreatePlayerStatus(ctx context.Context, in model.PlayerStatusInput) (*model.PlayerStatus, error) {
	const op = "create player status"
	if err := storage.ValidatePlayerStatus(in); err != nil {
		return nil, err
	}

	var existing playerStatusDoc
	found, err := findOne(ctx, r.statuses, op, statusKey(in.GameSessionID, in.SteamID), &existing)
	if err != nil {
		return nil, err
	}

	now := r.now()
	var lastTurn *time.Time
	if in.LastTurnCompleted != nil {
		t := in.LastTurnCompleted.UTC().Truncate(time.Millisecond)
		lastTurn = &t
	}

	if found {
		set := bson.M{"status": in.Status, "updatedAt": now}
		if in.Message.IsSet() {
			set["message"] = in.Message.Value()
		}
		if lastTurn != nil {
			set["lastTurnCompleted"] = lastTurn
		}

		var updated playerStatusDoc
		ok, err := setByID(ctx, r.statuses, op, existing.ID, set, &updated)
		if err != nil {
			return nil, err
		}
		if ok {
			return updated.toModel(), nil
		}
		// vanished between read and write; insert below
	}

	doc := &playerStatusDoc{
		ID:                primitive.NewObjectID(),
		GameSessionID:     in.GameSessionID,
		SteamID:           in.SteamID,
		Status:            in.Status,
		Message:           in.Message.Value(),
		LastTurnCompleted: lastTurn,
		UpdatedAt:         now,
	}
	if _, err := r.statuses.InsertOne(ctx, doc); err != nil {
		return nil, failure(ctx, op, err)
	}
	return doc.toModel(), nil
}

func (r *Store) GetPlayerStatus(ctx context.Context, gameSessionID, steamID string) (*model.PlayerStatus, error) {
	var doc playerStatusDoc
	found, err := findOne(ctx, r.statuses, "get player status", statusKey(gameSessionID, steamID), &doc)
	if err != nil || !found {
		return nil, err
	}
	return doc.toModel(), nil
}

// UpdatePlayerStatus is an upsert: a missing record is created, and the
// message is only written when msg is set.
func (r *Store) UpdatePlayerStatus(ctx context.Context, gameSessionID, steamID string, status model.Status, msg model.MessageUpdate) (*model.PlayerStatus, error) {
	return r.CreatePlayerStatus(ctx, model.PlayerStatusInput{
		GameSessionID: gameSessionID,
		SteamID:       steamID,
		Status:        status,
		Message:       msg,
	})
}

func (r *Store) UpdatePlayerLastTurn(ctx context.Context, gameSessionID, steamID string) (*model.PlayerStatus, error) {
	now := r.now()
	update := bson.M{"$set": bson.M{"lastTurnCompleted": now, "updatedAt": now}}

	var doc playerStatusDoc
	err := r.statuses.FindOneAndUpdate(ctx, statusKey(gameSessionID, steamID), update, returnAfter()).Decode(&doc)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, failure(ctx, "update player last turn", err)
	}
	return doc.toModel(), nil
}
