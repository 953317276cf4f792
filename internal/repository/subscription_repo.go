package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"turnping/internal/model"
	"turnping/internal/storage"
)

type subscriptionDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	SteamID   string             `bson:"steamId"`
	Endpoint  string             `bson:"endpoint"`
	P256dh    string             `bson:"p256dh"`
	Auth      string             `bson:"auth"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *subscriptionDoc) toModel() *model.Subscription {
	return &model.Subscription{
		ID:        d.ID.Hex(),
		SteamID:   d.SteamID,
		Endpoint:  d.Endpoint,
		P256dh:    d.P256dh,
		Auth:      d.Auth,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// SaveSubscription upserts by steamId, replacing the credentials in place
func (r *Store) SaveSubscription(ctx context.Context, in model.SubscriptionInput) (*model.Subscription, error) {
	const op = "save subscription"
	if err := storage.ValidateSubscription(in); err != nil {
		return nil, err
	}

	var existing subscriptionDoc
	found, err := findOne(ctx, r.subscriptions, op, bson.M{"steamId": in.SteamID}, &existing)
	if err != nil {
		return nil, err
	}

	now := r.now()
	if found {
		set := bson.M{
			"endpoint":  in.Endpoint,
			"p256dh":    in.P256dh,
			"auth":      in.Auth,
			"updatedAt": now,
		}
		var updated subscriptionDoc
		ok, err := setByID(ctx, r.subscriptions, op, existing.ID, set, &updated)
		if err != nil {
			return nil, err
		}
		if ok {
			return updated.toModel(), nil
		}
	}

	doc := &subscriptionDoc{
		ID:        primitive.NewObjectID(),
		SteamID:   in.SteamID,
		Endpoint:  in.Endpoint,
		P256dh:    in.P256dh,
		Auth:      in.Auth,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.subscriptions.InsertOne(ctx, doc); err != nil {
		return nil, failure(ctx, op, err)
	}
	return doc.toModel(), nil
}

func (r *Store) GetSubscriptionBySteamID(ctx context.Context, steamID string) (*model.Subscription, error) {
	var doc subscriptionDoc
	found, err := findOne(ctx, r.subscriptions, "get subscription by steam id", bson.M{"steamId": steamID}, &doc)
	if err != nil || !found {
		return nil, err
	}
	return doc.toModel(), nil
}
