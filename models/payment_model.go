package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type PaymentType string

const (
	PaymentTypeCart        PaymentType = "cart"
	PaymentTypeReservation PaymentType = "reservation"
)

// Payment is written exactly once per successful workflow run and never
// mutated. CartIDs and ReservationIDs keep whatever the caller submitted;
// Type decides which of the two is acted on.
type Payment struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email          string             `bson:"email" json:"email"`
	TransactionID  string             `bson:"transactionId" json:"transactionId"`
	Type           PaymentType        `bson:"type" json:"type"`
	CartIDs        []string           `bson:"cartIds" json:"cartIds"`
	ReservationIDs []string           `bson:"reservationIds" json:"reservationIds"`
	Amount         float64            `bson:"amount" json:"amount"`
	Status         string             `bson:"status" json:"status"`
	Date           string             `bson:"date" json:"date"`
}
