package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hornethelper/internal/model"
)

// MessageRepo handles MongoDB operations for session chat
type MessageRepo interface {
	Create(ctx context.Context, msg *model.Message) error
	ListBySession(ctx context.Context, kind model.SessionKind, sessionID string, limit int64) ([]*model.Message, error)
	DeleteBySession(ctx context.Context, kind model.SessionKind, sessionID string) error
}

type messageRepo struct {
	collection *mongo.Collection
}

// NewMessageRepo creates a new message repository
func NewMessageRepo(db *mongo.Database) MessageRepo {
	return &messageRepo{
		collection: db.Collection("messages"),
	}
}

func (r *messageRepo) Create(ctx context.Context, msg *model.Message) error {
	if msg.ID == "" {
		msg.ID = primitive.NewObjectID().Hex()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, msg)
	return err
}

func (r *messageRepo) ListBySession(ctx context.Context, kind model.SessionKind, sessionID string, limit int64) ([]*model.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, bson.M{"kind": kind, "sessionId": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	messages := []*model.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepo) DeleteBySession(ctx context.Context, kind model.SessionKind, sessionID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"kind": kind, "sessionId": sessionID})
	return err
}
