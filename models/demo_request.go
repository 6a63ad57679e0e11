package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "pending"
	DeliveryQueued  DeliveryStatus = "queued"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
)

// DemoRequest 는 데모 신청 폼 제출 1건이다.
// Collection: demo_requests
type DemoRequest struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID    string             `bson:"request_id" json:"request_id"`
	Name         string             `bson:"name" json:"name"`
	HospitalName string             `bson:"hospital_name" json:"hospital_name"`
	Email        string             `bson:"email" json:"email"`
	Phone        string             `bson:"phone" json:"phone"`
	Message      string             `bson:"message,omitempty" json:"message,omitempty"`
	ClientIP     string             `bson:"client_ip,omitempty" json:"-"`
	Delivery     DeliveryStatus     `bson:"delivery" json:"delivery"`
	MessageID    string             `bson:"message_id,omitempty" json:"message_id,omitempty"`
	LastError    string             `bson:"last_error,omitempty" json:"last_error,omitempty"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
