package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"tabletalk-server/middleware"
	"tabletalk-server/models"
	"tabletalk-server/payments"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreatePaymentIntentHandler creates a card charge intent and returns the
// confirmation token the client completes the charge with.
func CreatePaymentIntentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input struct {
			Price float64 `json:"price"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price"})
			return
		}

		params := &stripe.PaymentIntentParams{
			Amount:             stripe.Int64(int64(input.Price * 100)),
			Currency:           stripe.String(string(stripe.CurrencyUSD)),
			PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		}

		pi, err := paymentintent.New(params)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"clientSecret": pi.ClientSecret})
	}
}

// PaymentHistoryHandler returns the caller's payment records.
func PaymentHistoryHandler(paymentsCol *mongo.Collection) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := middleware.VerifiedEmail(c)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cursor, err := paymentsCol.Find(ctx, bson.M{"email": email})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer cursor.Close(ctx)

		var history []models.Payment
		if err := cursor.All(ctx, &history); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if history == nil {
			history = []models.Payment{}
		}

		c.JSON(http.StatusOK, history)
	}
}

// CreatePaymentHandler runs the reconciliation workflow for a completed
// charge. The workflow itself owns ordering and partial-failure semantics;
// this handler only maps its outcomes onto HTTP.
func CreatePaymentHandler(wf *payments.Workflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input payments.Input
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid payment data"})
			return
		}

		// Deliberately detached from the request context: once the payment
		// insert starts, the workflow runs to completion even if the client
		// goes away.
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		result, err := wf.Run(ctx, input)
		if err != nil {
			if errors.Is(err, payments.ErrInvalidPayment) {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid payment data"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
