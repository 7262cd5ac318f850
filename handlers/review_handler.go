package handlers

import (
	"context"
	"net/http"
	"time"

	"tabletalk-server/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func GetReviewsHandler(reviews *mongo.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cursor, err := reviews.Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch reviews"})
			return
		}
		defer cursor.Close(ctx)

		var result []models.Review
		if err := cursor.All(ctx, &result); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch reviews"})
			return
		}
		if result == nil {
			result = []models.Review{}
		}

		c.JSON(http.StatusOK, result)
	}
}

func CreateReviewHandler(reviews *mongo.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Name    string  `json:"name"`
			Details string  `json:"details"`
			Rating  float64 `json:"rating"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required"})
			return
		}
		if input.Name == "" || input.Details == "" || input.Rating == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "All fields are required"})
			return
		}

		review := models.Review{
			ID:        primitive.NewObjectID(),
			Name:      input.Name,
			Details:   input.Details,
			Rating:    input.Rating,
			CreatedAt: time.Now(),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		res, err := reviews.InsertOne(ctx, review)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to add review"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"insertedId": res.InsertedID})
	}
}
