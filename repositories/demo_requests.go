package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"careconnect/models"
)

type DemoRequestRepository struct {
	col *mongo.Collection
}

func NewDemoRequestRepository(db *mongo.Database) *DemoRequestRepository {
	return &DemoRequestRepository{col: db.Collection("demo_requests")}
}

func (r *DemoRequestRepository) Insert(ctx context.Context, req *models.DemoRequest) (*mongo.InsertOneResult, error) {
	now := time.Now()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now
	if req.Delivery == "" {
		req.Delivery = models.DeliveryPending
	}
	return r.col.InsertOne(ctx, req)
}

func (r *DemoRequestRepository) FindByRequestID(ctx context.Context, requestID string) (*models.DemoRequest, error) {
	var req models.DemoRequest
	if err := r.col.FindOne(ctx, bson.M{"request_id": requestID}).Decode(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// UpdateDelivery 는 발송 상태를 갱신한다. messageID/lastError 는 비어 있으면 기존 값을 지운다.
// 이미 sent 인 요청은 다른 상태로 되돌리지 않는다.
func (r *DemoRequestRepository) UpdateDelivery(ctx context.Context, requestID string, status models.DeliveryStatus, messageID, lastError string) error {
	filter := bson.M{"request_id": requestID}
	if status != models.DeliverySent {
		filter["delivery"] = bson.M{"$ne": models.DeliverySent}
	}
	_, err := r.col.UpdateOne(ctx, filter, bson.M{
		"$set": bson.M{
			"delivery":   status,
			"message_id": messageID,
			"last_error": lastError,
			"updated_at": time.Now(),
		},
	})
	return err
}
