package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hornethelper/internal/model"
)

// UserRepo handles MongoDB operations for user profiles
type UserRepo interface {
	Upsert(ctx context.Context, user *model.User) (*model.User, error)
	GetByID(ctx context.Context, uid string) (*model.User, error)
	UpdateMajor(ctx context.Context, uid, major string) error
}

type userRepo struct {
	collection *mongo.Collection
}

// NewUserRepo creates a new user repository
func NewUserRepo(db *mongo.Database) UserRepo {
	return &userRepo{
		collection: db.Collection("users"),
	}
}

// Upsert refreshes identity fields and creates the profile with an empty major on first sign-in
func (r *userRepo) Upsert(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"displayName": user.DisplayName,
			"email":       user.Email,
			"photoURL":    user.PhotoURL,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{
			"major":     "",
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored model.User
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": user.UID}, update, opts).Decode(&stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *userRepo) GetByID(ctx context.Context, uid string) (*model.User, error) {
	var user model.User
	err := r.collection.FindOne(ctx, bson.M{"_id": uid}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) UpdateMajor(ctx context.Context, uid, major string) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{
		"$set": bson.M{"major": major, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNoMatch
	}
	return nil
}
