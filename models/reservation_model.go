package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Activity string

const (
	ActivityPending Activity = "Pending"
	ActivityDone    Activity = "Done"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

type Reservation struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserEmail     string             `bson:"userEmail" json:"userEmail"`
	Name          string             `bson:"name,omitempty" json:"name,omitempty"`
	Phone         string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Date          string             `bson:"date,omitempty" json:"date,omitempty"`
	Time          string             `bson:"time,omitempty" json:"time,omitempty"`
	Guests        int                `bson:"guests,omitempty" json:"guests,omitempty"`
	Activity      Activity           `bson:"activity" json:"activity"`
	PaymentStatus PaymentStatus      `bson:"paymentStatus,omitempty" json:"paymentStatus,omitempty"`
}
