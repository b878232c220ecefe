package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is one account document in the users collection. OTPCode and
// OTPExpiry are either both set (verification outstanding) or both nil.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"` // never JSON-encode
	Role         string             `bson:"role" json:"role"`
	IsVerified   bool               `bson:"isVerified" json:"isVerified"`
	OTPCode      *string            `bson:"otpCode" json:"-"`
	OTPExpiry    *time.Time         `bson:"otpExpiry" json:"-"`
	LastLogin    *time.Time         `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"created_at"`
}

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)
