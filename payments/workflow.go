package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tabletalk-server/mailer"
	"tabletalk-server/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidPayment rejects a submission missing email, transactionId or
// type. Nothing has been written when it is returned.
var ErrInvalidPayment = errors.New("invalid payment data")

type PaymentStore interface {
	Insert(ctx context.Context, p models.Payment) (string, error)
}

type CartStore interface {
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

type ReservationStore interface {
	MarkPaid(ctx context.Context, ids []primitive.ObjectID) (matched, modified int64, err error)
}

// Input is the payment submission body. CartIDs and ReservationIDs are
// hex object ids supplied by the caller; the workflow never discovers ids
// on its own.
type Input struct {
	Email          string   `json:"email"`
	TransactionID  string   `json:"transactionId"`
	Type           string   `json:"type"`
	CartIDs        []string `json:"cartIds"`
	ReservationIDs []string `json:"reservationIds"`
	Amount         float64  `json:"amount"`
	Status         string   `json:"status"`
	Date           string   `json:"date"`
}

type InsertResult struct {
	InsertedID string `json:"insertedId"`
}

type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}

type UpdateResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}

// Result is the composite response. DeletedCarts and UpdatedReservations
// stay nil for whichever branch did not run. EmailSent reports that the
// confirmation was dispatched, not that it was delivered.
type Result struct {
	Payment             InsertResult  `json:"paymentResult"`
	DeletedCarts        *DeleteResult `json:"deletedCartResult"`
	UpdatedReservations *UpdateResult `json:"updatedReservationResult"`
	EmailSent           bool          `json:"emailSent"`
}

type Workflow struct {
	payments     PaymentStore
	carts        CartStore
	reservations ReservationStore
	mail         mailer.Service
	log          *slog.Logger
}

func NewWorkflow(payments PaymentStore, carts CartStore, reservations ReservationStore, mail mailer.Service, log *slog.Logger) *Workflow {
	return &Workflow{
		payments:     payments,
		carts:        carts,
		reservations: reservations,
		mail:         mail,
		log:          log,
	}
}

// Run records the payment, applies the side effect selected by Type, and
// dispatches the confirmation email without waiting on it.
//
// The insert is authoritative: once it commits, a later failure leaves a
// recorded payment with no side effect applied, and the caller sees a
// plain error. Submitting the same transactionId twice creates two
// payment documents; only the side effects are idempotent.
func (w *Workflow) Run(ctx context.Context, in Input) (*Result, error) {
	if in.Email == "" || in.TransactionID == "" || in.Type == "" {
		return nil, ErrInvalidPayment
	}

	payment := models.Payment{
		Email:          in.Email,
		TransactionID:  in.TransactionID,
		Type:           models.PaymentType(in.Type),
		CartIDs:        in.CartIDs,
		ReservationIDs: in.ReservationIDs,
		Amount:         in.Amount,
		Status:         in.Status,
		Date:           in.Date,
	}

	insertedID, err := w.payments.Insert(ctx, payment)
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	result := &Result{
		Payment: InsertResult{InsertedID: insertedID},
	}

	switch models.PaymentType(in.Type) {
	case models.PaymentTypeCart:
		if len(in.CartIDs) > 0 {
			ids, err := parseObjectIDs(in.CartIDs)
			if err != nil {
				return nil, fmt.Errorf("cart ids: %w", err)
			}
			deleted, err := w.carts.DeleteByIDs(ctx, ids)
			if err != nil {
				return nil, fmt.Errorf("delete cart items: %w", err)
			}
			result.DeletedCarts = &DeleteResult{DeletedCount: deleted}
		}
	case models.PaymentTypeReservation:
		if len(in.ReservationIDs) > 0 {
			ids, err := parseObjectIDs(in.ReservationIDs)
			if err != nil {
				return nil, fmt.Errorf("reservation ids: %w", err)
			}
			matched, modified, err := w.reservations.MarkPaid(ctx, ids)
			if err != nil {
				return nil, fmt.Errorf("update reservations: %w", err)
			}
			result.UpdatedReservations = &UpdateResult{
				MatchedCount:  matched,
				ModifiedCount: modified,
			}
		}
	}

	go w.sendConfirmation(in)
	result.EmailSent = true

	return result, nil
}

func (w *Workflow) sendConfirmation(in Input) {
	subject := "Payment Confirmation - " + strings.ToUpper(in.Type)
	if err := w.mail.Send(in.Email, subject, confirmationBody(in)); err != nil {
		w.log.Error("payment confirmation email failed",
			"transactionId", in.TransactionID,
			"email", in.Email,
			"error", err,
		)
		return
	}
	w.log.Info("payment confirmation email sent",
		"transactionId", in.TransactionID,
		"email", in.Email,
	)
}

func confirmationBody(in Input) string {
	return fmt.Sprintf(`
        <h2>Payment Successful!</h2>
        <p>Hi %s,</p>
        <p>Thank you for your payment at TableTalk Restaurant.</p>
        <ul>
            <li>Transaction ID: <strong>%s</strong></li>
            <li>Payment Type: <strong>%s</strong></li>
            <li>Amount Paid: <strong>$%.2f</strong></li>
            <li>Date: <strong>%s</strong></li>
        </ul>
        <p>We appreciate your visit!</p>
    `, in.Email, in.TransactionID, in.Type, in.Amount, formatDate(in.Date))
}

func formatDate(raw string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("1/2/2006, 3:04:05 PM")
		}
	}
	return raw
}

func parseObjectIDs(raw []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, r := range raw {
		id, err := primitive.ObjectIDFromHex(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
