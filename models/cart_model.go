package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type CartItem struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MenuID string             `bson:"menuId,omitempty" json:"menuId,omitempty"`
	Email  string             `bson:"email" json:"email"`
	Name   string             `bson:"name" json:"name"`
	Image  string             `bson:"image,omitempty" json:"image,omitempty"`
	Price  float64            `bson:"price" json:"price"`
}
