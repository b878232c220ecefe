package repository

import (
	"context"
	"errors"
	"time"

	"TechMartAPI/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository is the credential store, backed by the users collection.
type UserRepository struct {
	Users *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{Users: db.Collection("users")}
}

// Create inserts a new account and returns its id. Concurrent
// registrations for the same email race at the unique index; the loser
// gets model.ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, u *model.User) (string, error) {
	u.ID = primitive.NewObjectID()
	if _, err := r.Users.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", model.ErrEmailTaken
		}
		return "", err
	}
	return u.ID.Hex(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.Users.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// SetOTP overwrites the pending code and its expiry. Any previous code
// becomes permanently invalid.
func (r *UserRepository) SetOTP(ctx context.Context, id, code string, expiry time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.ErrUserNotFound
	}
	res, err := r.Users.UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{"otpCode": code, "otpExpiry": expiry},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// MarkVerified flips isVerified and clears both OTP fields in one update.
func (r *UserRepository) MarkVerified(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.ErrUserNotFound
	}
	res, err := r.Users.UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{"isVerified": true, "otpCode": nil, "otpExpiry": nil},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.ErrUserNotFound
	}
	_, err = r.Users.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"lastLogin": at}})
	return err
}

// Delete removes an account. Used only as the compensating action when
// the verification email cannot be dispatched after registration.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.ErrUserNotFound
	}
	_, err = r.Users.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
