package handlers

import (
	"context"
	"net/http"
	"time"

	"tabletalk-server/middleware"
	"tabletalk-server/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// GetAllReservationsHandler returns every reservation for the dashboard.
func GetAllReservationsHandler(reservations *mongo.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cursor, err := reservations.Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer cursor.Close(ctx)

		var result []models.Reservation
		if err := cursor.All(ctx, &result); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if result == nil {
			result = []models.Reservation{}
		}

		c.JSON(http.StatusOK, result)
	}
}

// GetUserReservationsHandler returns the caller's own reservations.
func GetUserReservationsHandler(reservations *mongo.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := middleware.VerifiedEmail(c)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cursor, err := reservations.Find(ctx, bson.M{"userEmail": email})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer cursor.Close(ctx)

		var result []models.Reservation
		if err := cursor.All(ctx, &result); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if result == nil {
			result = []models.Reservation{}
		}

		c.JSON(http.StatusOK, result)
	}
}

// CreateReservationHandler books a table for the caller. New reservations
// start Pending and unpaid.
func CreateReservationHandler(reservations *mongo.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := middleware.Claims(c)
		if claims == nil || claims.Email == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden access"})
			return
		}

		var reservation models.Reservation
		if err := c.ShouldBindJSON(&reservation); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation data"})
			return
		}

		reservation.ID = primitive.NewObjectID()
		reservation.UserEmail = claims.Email
		reservation.Activity = models.ActivityPending
		reservation.PaymentStatus = models.PaymentStatusUnpaid

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		res, err := reservations.InsertOne(ctx, reservation)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"insertedId": res.InsertedID})
	}
}

// CompleteReservationHandler marks a reservation Done. This lifecycle flag
// is independent of paymentStatus.
func CompleteReservationHandler(reservations *mongo.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		objID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		res, err := reservations.UpdateOne(
			ctx,
			bson.M{"_id": objID},
			bson.M{"$set": bson.M{"activity": models.ActivityDone}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"matchedCount":  res.MatchedCount,
			"modifiedCount": res.ModifiedCount,
		})
	}
}

func DeleteReservationHandler(reservations *mongo.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		objID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reservation id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		res, err := reservations.DeleteOne(ctx, bson.M{"_id": objID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"deletedCount": res.DeletedCount})
	}
}
