package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hornethelper/internal/model"
)

// ErrNoMatch is returned when a conditional write finds no document satisfying its guard
var ErrNoMatch = errors.New("no document matched the update conditions")

// SessionRepo handles MongoDB operations for study sessions.
// Duo and group sessions live in separate collections.
type SessionRepo interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, kind model.SessionKind, id string) (*model.Session, error)
	List(ctx context.Context, kind model.SessionKind) ([]*model.Session, error)
	AddParticipant(ctx context.Context, kind model.SessionKind, id string, p model.Participant) (*model.Session, error)
	RemoveParticipant(ctx context.Context, kind model.SessionKind, id, uid string) (*model.Session, error)
	// Delete removes the session and returns the document as it was at deletion
	Delete(ctx context.Context, kind model.SessionKind, id string) (*model.Session, error)
	Watch(ctx context.Context, kind model.SessionKind) (<-chan struct{}, error)
}

type sessionRepo struct {
	collections map[model.SessionKind]*mongo.Collection
}

// NewSessionRepo creates a new session repository
func NewSessionRepo(db *mongo.Database) SessionRepo {
	collections := make(map[model.SessionKind]*mongo.Collection, len(model.Kinds))
	for _, kind := range model.Kinds {
		collections[kind] = db.Collection(kind.Collection())
	}
	return &sessionRepo{collections: collections}
}

func (r *sessionRepo) collection(kind model.SessionKind) *mongo.Collection {
	if c, ok := r.collections[kind]; ok {
		return c
	}
	return r.collections[model.KindDuo]
}

func (r *sessionRepo) Create(ctx context.Context, session *model.Session) error {
	if session.ID == "" {
		session.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	session.Normalize()

	_, err := r.collection(session.Kind).InsertOne(ctx, session)
	return err
}

func (r *sessionRepo) GetByID(ctx context.Context, kind model.SessionKind, id string) (*model.Session, error) {
	var session model.Session
	err := r.collection(kind).FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	session.Normalize()
	return &session, nil
}

func (r *sessionRepo) List(ctx context.Context, kind model.SessionKind) ([]*model.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection(kind).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sessions := []*model.Session{}
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	for _, s := range sessions {
		s.Normalize()
	}
	return sessions, nil
}

// AddParticipant appends p only if the session has room and p is not already a member.
// Both guards and the full recompute run in one server-side update.
func (r *sessionRepo) AddParticipant(ctx context.Context, kind model.SessionKind, id string, p model.Participant) (*model.Session, error) {
	return r.findOneAndUpdate(ctx, kind, joinFilter(id, p.UID), joinUpdate(p))
}

// RemoveParticipant drops uid only if it is a member and not the owner
func (r *sessionRepo) RemoveParticipant(ctx context.Context, kind model.SessionKind, id, uid string) (*model.Session, error) {
	return r.findOneAndUpdate(ctx, kind, leaveFilter(id, uid), leaveUpdate(uid))
}

func (r *sessionRepo) findOneAndUpdate(ctx context.Context, kind model.SessionKind, filter bson.M, update mongo.Pipeline) (*model.Session, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var session model.Session
	err := r.collection(kind).FindOneAndUpdate(ctx, filter, update, opts).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, err
	}
	session.Normalize()
	return &session, nil
}

func (r *sessionRepo) Delete(ctx context.Context, kind model.SessionKind, id string) (*model.Session, error) {
	var session model.Session
	err := r.collection(kind).FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoMatch
	}
	if err != nil {
		return nil, err
	}
	session.Normalize()
	return &session, nil
}

// Watch signals on every change to the collection. The channel is closed when ctx ends
// or the stream fails. Standalone servers without change streams return an error.
func (r *sessionRepo) Watch(ctx context.Context, kind model.SessionKind) (<-chan struct{}, error) {
	stream, err := r.collection(kind).Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, err
	}

	changes := make(chan struct{}, 1)
	go func() {
		defer close(changes)
		defer stream.Close(context.Background())
		for stream.Next(ctx) {
			// coalesce bursts; the consumer re-reads the whole collection anyway
			select {
			case changes <- struct{}{}:
			default:
			}
		}
	}()
	return changes, nil
}

func participantsOrEmpty() bson.M {
	return bson.M{"$ifNull": bson.A{"$participants", bson.A{}}}
}

func recomputeFullStage() bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: "full", Value: bson.M{"$gte": bson.A{bson.M{"$size": "$participants"}, "$capacity"}}},
		{Key: "updatedAt", Value: "$$NOW"},
	}}}
}

func joinFilter(id, uid string) bson.M {
	return bson.M{
		"_id":              id,
		"participants.uid": bson.M{"$ne": uid},
		"$expr": bson.M{"$lt": bson.A{
			bson.M{"$size": participantsOrEmpty()},
			"$capacity",
		}},
	}
}

func joinUpdate(p model.Participant) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "participants", Value: bson.M{"$concatArrays": bson.A{
				participantsOrEmpty(),
				bson.A{bson.M{"$literal": p}},
			}}},
		}}},
		recomputeFullStage(),
	}
}

func leaveFilter(id, uid string) bson.M {
	return bson.M{
		"_id":              id,
		"participants.uid": uid,
		"ownerUserId":      bson.M{"$ne": uid},
	}
}

func leaveUpdate(uid string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "participants", Value: bson.M{"$filter": bson.M{
				"input": participantsOrEmpty(),
				"as":    "p",
				"cond":  bson.M{"$ne": bson.A{"$$p.uid", bson.M{"$literal": uid}}},
			}}},
		}}},
		recomputeFullStage(),
	}
}
