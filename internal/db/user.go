package db

import (
	"context"
	"time"

	"github.com/NOTSTEVEN4000/banano-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserCollection defines the interface for user database operations
type UserCollection interface {
	InsertUser(ctx context.Context, user models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByLogin(ctx context.Context, login string) (*models.User, error)
	RecordLoginSuccess(ctx context.Context, id string) error
	RecordLoginFailure(ctx context.Context, id string, failedLogins int, lockedUntil *time.Time) error
}

// MongoUserCollection implements UserCollection for MongoDB
type MongoUserCollection struct {
	Collection *mongo.Collection
}

// InsertUser inserts a new user into the database
func (c *MongoUserCollection) InsertUser(ctx context.Context, user models.User) error {
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	user.IsActive = true

	_, err := c.Collection.InsertOne(ctx, user)
	return wrapWriteError(err)
}

// FindUserByID finds a user by their ID
func (c *MongoUserCollection) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&user)
	if err != nil {
		return nil, wrapFindError(err)
	}

	return &user, nil
}

// FindUserByLogin finds a user by username or email.
func (c *MongoUserCollection) FindUserByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	err := c.Collection.FindOne(ctx, bson.M{"$or": bson.A{
		bson.M{"usuario": login},
		bson.M{"correo": login},
	}}).Decode(&user)
	if err != nil {
		return nil, wrapFindError(err)
	}

	return &user, nil
}

// RecordLoginSuccess resets the failure counter and stamps the last access.
func (c *MongoUserCollection) RecordLoginSuccess(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = c.Collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{
			"intentosFallidos":   0,
			"bloqueadoHasta":     nil,
			"ultimoAcceso":       now,
			"fechaActualizacion": now,
		}})
	return err
}

// RecordLoginFailure stores the new failure count and, once the limit
// is reached, the lockout expiry.
func (c *MongoUserCollection) RecordLoginFailure(ctx context.Context, id string, failedLogins int, lockedUntil *time.Time) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	set := bson.M{
		"intentosFallidos":   failedLogins,
		"fechaActualizacion": time.Now(),
	}
	if lockedUntil != nil {
		set["bloqueadoHasta"] = *lockedUntil
	}
	_, err = c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	return err
}
