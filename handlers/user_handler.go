package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"tabletalk-server/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CheckAdminHandler reports whether the given email holds the admin role.
func CheckAdminHandler(users *mongo.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Param("email")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var user models.User
		err := users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
		isAdmin := err == nil && user.Role == models.RoleAdmin

		c.JSON(http.StatusOK, gin.H{"isAdmin": isAdmin})
	}
}

// CreateUserHandler registers a user unless the email already exists.
func CreateUserHandler(users *mongo.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := c.ShouldBindJSON(&user); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user data"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var existing models.User
		err := users.FindOne(ctx, bson.M{"email": user.Email}).Decode(&existing)
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"message": "user already exists"})
			return
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if user.Role == "" {
			user.Role = models.RoleGuest
		}
		user.ID = primitive.NewObjectID()

		res, err := users.InsertOne(ctx, user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"insertedId": res.InsertedID})
	}
}

// GetUsersHandler lists every user. Admin only.
func GetUsersHandler(users *mongo.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cursor, err := users.Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer cursor.Close(ctx)

		var result []models.User
		if err := cursor.All(ctx, &result); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if result == nil {
			result = []models.User{}
		}

		c.JSON(http.StatusOK, result)
	}
}

// PromoteUserHandler grants the admin role. Admin only.
func PromoteUserHandler(users *mongo.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		objID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		res, err := users.UpdateOne(
			ctx,
			bson.M{"_id": objID},
			bson.M{"$set": bson.M{"role": models.RoleAdmin}},
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

// DeleteUserHandler removes a user. Admin only.
func DeleteUserHandler(users *mongo.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		objID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		res, err := users.DeleteOne(ctx, bson.M{"_id": objID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"deletedCount": res.DeletedCount})
	}
}

// AdminStatisticsHandler aggregates user count, cart orders and total
// revenue across all payments. Admin only.
func AdminStatisticsHandler(users, cart, paymentsCol *mongo.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		userCount, err := users.EstimatedDocumentCount(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		orderCount, err := cart.EstimatedDocumentCount(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		pipeline := mongo.Pipeline{
			{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: nil},
				{Key: "totalRevenue", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
			}}},
		}

		cursor, err := paymentsCol.Aggregate(ctx, pipeline)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer cursor.Close(ctx)

		var totals []struct {
			TotalRevenue float64 `bson:"totalRevenue"`
		}
		if err := cursor.All(ctx, &totals); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		revenue := 0.0
		if len(totals) > 0 {
			revenue = totals[0].TotalRevenue
		}

		c.JSON(http.StatusOK, gin.H{
			"users":   userCount,
			"orders":  orderCount,
			"revenue": revenue,
		})
	}
}
