package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID  primitive.ObjectID `bson:"vehicle_id" json:"vehicleId"`
	UserID     primitive.ObjectID `bson:"user_id" json:"userId"`
	Rating     int                `bson:"rating" json:"rating" validate:"required,min=1,max=5"`
	Comment    string             `bson:"comment,omitempty" json:"comment,omitempty"`
	AdminReply string             `bson:"admin_reply,omitempty" json:"adminReply,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updatedAt"`
}
