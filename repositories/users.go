package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"careconnect/models"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection("users")}
}

// UpsertByProvider 는 (provider, provider_sub) 로 사용자를 찾아 프로필을 갱신하고, 없으면 만든다.
// user_code 와 role 은 최초 생성 시에만 기록된다.
func (r *UserRepository) UpsertByProvider(ctx context.Context, u *models.User) (*models.User, error) {
	now := time.Now()
	filter := bson.M{"provider": u.Provider, "provider_sub": u.ProviderSub}
	update := bson.M{
		"$setOnInsert": bson.M{
			"user_code":  u.UserCode,
			"role":       u.Role,
			"created_at": now,
		},
		"$set": bson.M{
			"email":         u.Email,
			"name":          u.Name,
			"profile_image": u.ProfileImage,
			"updated_at":    now,
			"last_login_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out models.User
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *UserRepository) FindByUserCode(ctx context.Context, code string) (*models.User, error) {
	var u models.User
	if err := r.col.FindOne(ctx, bson.M{"user_code": code}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}
