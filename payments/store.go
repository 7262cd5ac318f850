package payments

import (
	"context"
	"fmt"

	"tabletalk-server/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoPaymentStore struct {
	col *mongo.Collection
}

func NewMongoPaymentStore(col *mongo.Collection) *MongoPaymentStore {
	return &MongoPaymentStore{col: col}
}

func (s *MongoPaymentStore) Insert(ctx context.Context, p models.Payment) (string, error) {
	res, err := s.col.InsertOne(ctx, p)
	if err != nil {
		return "", err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return fmt.Sprint(res.InsertedID), nil
}

type MongoCartStore struct {
	col *mongo.Collection
}

func NewMongoCartStore(col *mongo.Collection) *MongoCartStore {
	return &MongoCartStore{col: col}
}

func (s *MongoCartStore) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

type MongoReservationStore struct {
	col *mongo.Collection
}

func NewMongoReservationStore(col *mongo.Collection) *MongoReservationStore {
	return &MongoReservationStore{col: col}
}

func (s *MongoReservationStore) MarkPaid(ctx context.Context, ids []primitive.ObjectID) (int64, int64, error) {
	res, err := s.col.UpdateMany(
		ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"paymentStatus": models.PaymentStatusPaid}},
	)
	if err != nil {
		return 0, 0, err
	}
	return res.MatchedCount, res.ModifiedCount, nil
}
