package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User 는 소셜 로그인 사용자다.
// Collection: users, unique (provider, provider_sub)
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserCode     string             `bson:"user_code" json:"user_code"`
	Provider     string             `bson:"provider" json:"provider"`
	ProviderSub  string             `bson:"provider_sub" json:"provider_sub"`
	Email        string             `bson:"email" json:"email"`
	Name         string             `bson:"name" json:"name"`
	ProfileImage string             `bson:"profile_image" json:"profile_image"`
	Role         string             `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
	LastLoginAt  time.Time          `bson:"last_login_at" json:"last_login_at"`
}
