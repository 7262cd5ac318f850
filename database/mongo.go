package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect opens a client against the configured deployment and pings it
// so a bad URI fails at startup instead of on the first request.
func Connect(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return client, nil
}

// Collections holds the handles every handler works against.
type Collections struct {
	Menu         *mongo.Collection
	Cart         *mongo.Collection
	Users        *mongo.Collection
	Reservations *mongo.Collection
	Payments     *mongo.Collection
	Reviews      *mongo.Collection
}

func Collect(client *mongo.Client, dbName string) *Collections {
	db := client.Database(dbName)
	return &Collections{
		Menu:         db.Collection("menuItems"),
		Cart:         db.Collection("cartItems"),
		Users:        db.Collection("userItems"),
		Reservations: db.Collection("reserveItems"),
		Payments:     db.Collection("payments"),
		Reviews:      db.Collection("reviews"),
	}
}
