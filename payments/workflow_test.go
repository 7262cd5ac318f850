package payments_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"tabletalk-server/models"
	"tabletalk-server/payments"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ---------- Mocks ----------

type mockPaymentStore struct {
	inserted  []models.Payment
	insertErr error
}

func (m *mockPaymentStore) Insert(_ context.Context, p models.Payment) (string, error) {
	if m.insertErr != nil {
		return "", m.insertErr
	}
	m.inserted = append(m.inserted, p)
	return primitive.NewObjectID().Hex(), nil
}

type mockCartStore struct {
	items map[primitive.ObjectID]bool
	calls int
	err   error
}

func newMockCartStore(ids ...primitive.ObjectID) *mockCartStore {
	items := make(map[primitive.ObjectID]bool)
	for _, id := range ids {
		items[id] = true
	}
	return &mockCartStore{items: items}
}

func (m *mockCartStore) DeleteByIDs(_ context.Context, ids []primitive.ObjectID) (int64, error) {
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	var deleted int64
	for _, id := range ids {
		if m.items[id] {
			delete(m.items, id)
			deleted++
		}
	}
	return deleted, nil
}

type mockReservationStore struct {
	status map[primitive.ObjectID]models.PaymentStatus
	calls  int
}

func newMockReservationStore(ids ...primitive.ObjectID) *mockReservationStore {
	status := make(map[primitive.ObjectID]models.PaymentStatus)
	for _, id := range ids {
		status[id] = models.PaymentStatusUnpaid
	}
	return &mockReservationStore{status: status}
}

func (m *mockReservationStore) MarkPaid(_ context.Context, ids []primitive.ObjectID) (int64, int64, error) {
	m.calls++
	var matched, modified int64
	for _, id := range ids {
		current, ok := m.status[id]
		if !ok {
			continue
		}
		matched++
		if current != models.PaymentStatusPaid {
			m.status[id] = models.PaymentStatusPaid
			modified++
		}
	}
	return matched, modified, nil
}

type sentMail struct {
	to      string
	subject string
	html    string
}

type mockMailer struct {
	sent    chan sentMail
	sendErr error
}

func newMockMailer() *mockMailer {
	return &mockMailer{sent: make(chan sentMail, 8)}
}

func (m *mockMailer) Send(to, subject, html string) error {
	m.sent <- sentMail{to: to, subject: subject, html: html}
	return m.sendErr
}

func (m *mockMailer) Verify() error { return nil }

func waitMail(t *testing.T, m *mockMailer) sentMail {
	t.Helper()
	select {
	case mail := <-m.sent:
		return mail
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation email was never dispatched")
		return sentMail{}
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func validInput() payments.Input {
	return payments.Input{
		Email:         "a@x.com",
		TransactionID: "tx1",
		Type:          "cart",
		Amount:        20,
		Status:        "succeeded",
		Date:          "2024-01-01",
	}
}

// ---------- Tests ----------

func TestRunRejectsMissingFields(t *testing.T) {
	cases := map[string]func(*payments.Input){
		"missing email":         func(in *payments.Input) { in.Email = "" },
		"missing transactionId": func(in *payments.Input) { in.TransactionID = "" },
		"missing type":          func(in *payments.Input) { in.Type = "" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			paymentStore := &mockPaymentStore{}
			carts := newMockCartStore()
			reservations := newMockReservationStore()
			wf := payments.NewWorkflow(paymentStore, carts, reservations, newMockMailer(), testLogger())

			in := validInput()
			mutate(&in)

			_, err := wf.Run(context.Background(), in)
			if !errors.Is(err, payments.ErrInvalidPayment) {
				t.Fatalf("err = %v, want ErrInvalidPayment", err)
			}
			if len(paymentStore.inserted) != 0 {
				t.Errorf("payment was persisted despite invalid input")
			}
			if carts.calls != 0 || reservations.calls != 0 {
				t.Errorf("side-effect stores were called despite invalid input")
			}
		})
	}
}

func TestRunCartBranch(t *testing.T) {
	c1 := primitive.NewObjectID()
	c2 := primitive.NewObjectID()

	paymentStore := &mockPaymentStore{}
	carts := newMockCartStore(c1, c2)
	reservations := newMockReservationStore()
	mail := newMockMailer()
	wf := payments.NewWorkflow(paymentStore, carts, reservations, mail, testLogger())

	in := validInput()
	in.CartIDs = []string{c1.Hex(), c2.Hex()}

	result, err := wf.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.Payment.InsertedID == "" {
		t.Error("payment insert result missing")
	}
	if result.DeletedCarts == nil || result.DeletedCarts.DeletedCount != 2 {
		t.Errorf("deleted carts = %+v, want deletedCount 2", result.DeletedCarts)
	}
	if result.UpdatedReservations != nil {
		t.Errorf("reservation result should be nil for a cart payment")
	}
	if !result.EmailSent {
		t.Error("emailSent should be true")
	}
	if len(carts.items) != 0 {
		t.Errorf("cart still contains %d items", len(carts.items))
	}
	if len(paymentStore.inserted) != 1 || paymentStore.inserted[0].TransactionID != "tx1" {
		t.Errorf("payment record = %+v, want one record with tx1", paymentStore.inserted)
	}

	mailMsg := waitMail(t, mail)
	if mailMsg.to != "a@x.com" {
		t.Errorf("mail to = %q, want a@x.com", mailMsg.to)
	}
	if mailMsg.subject != "Payment Confirmation - CART" {
		t.Errorf("mail subject = %q", mailMsg.subject)
	}
}

func TestRunCartBranchIdempotentResubmission(t *testing.T) {
	c1 := primitive.NewObjectID()
	c2 := primitive.NewObjectID()

	paymentStore := &mockPaymentStore{}
	carts := newMockCartStore(c1, c2)
	mail := newMockMailer()
	wf := payments.NewWorkflow(paymentStore, carts, newMockReservationStore(), mail, testLogger())

	in := validInput()
	in.CartIDs = []string{c1.Hex(), c2.Hex()}

	first, err := wf.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	second, err := wf.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}

	if first.DeletedCarts.DeletedCount != 2 {
		t.Errorf("first deletedCount = %d, want 2", first.DeletedCarts.DeletedCount)
	}
	if second.DeletedCarts.DeletedCount != 0 {
		t.Errorf("second deletedCount = %d, want 0", second.DeletedCarts.DeletedCount)
	}

	// Persistence is intentionally not deduplicated: both submissions land.
	if len(paymentStore.inserted) != 2 {
		t.Fatalf("payment records = %d, want 2", len(paymentStore.inserted))
	}
	if paymentStore.inserted[0].TransactionID != paymentStore.inserted[1].TransactionID {
		t.Error("both records should carry the same transactionId")
	}
}

func TestRunReservationBranch(t *testing.T) {
	r1 := primitive.NewObjectID()
	r2 := primitive.NewObjectID()

	paymentStore := &mockPaymentStore{}
	reservations := newMockReservationStore(r1, r2)
	wf := payments.NewWorkflow(paymentStore, newMockCartStore(), reservations, newMockMailer(), testLogger())

	in := validInput()
	in.Type = "reservation"
	in.ReservationIDs = []string{r1.Hex(), r2.Hex()}

	result, err := wf.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.UpdatedReservations == nil ||
		result.UpdatedReservations.MatchedCount != 2 ||
		result.UpdatedReservations.ModifiedCount != 2 {
		t.Errorf("reservation result = %+v, want matched 2 modified 2", result.UpdatedReservations)
	}
	if result.DeletedCarts != nil {
		t.Error("cart result should be nil for a reservation payment")
	}
	for _, id := range []primitive.ObjectID{r1, r2} {
		if reservations.status[id] != models.PaymentStatusPaid {
			t.Errorf("reservation %s not marked paid", id.Hex())
		}
	}

	// Re-applying is a no-op on already-paid rows.
	again, err := wf.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if again.UpdatedReservations.ModifiedCount != 0 {
		t.Errorf("second modifiedCount = %d, want 0", again.UpdatedReservations.ModifiedCount)
	}
}

func TestRunUnknownTypeRecordsWithoutSideEffect(t *testing.T) {
	paymentStore := &mockPaymentStore{}
	carts := newMockCartStore()
	reservations := newMockReservationStore()
	wf := payments.NewWorkflow(paymentStore, carts, reservations, newMockMailer(), testLogger())

	in := validInput()
	in.Type = "subscription"
	in.CartIDs = []string{primitive.NewObjectID().Hex()}

	result, err := wf.Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(paymentStore.inserted) != 1 {
		t.Errorf("payment records = %d, want 1", len(paymentStore.inserted))
	}
	if carts.calls != 0 || reservations.calls != 0 {
		t.Error("no bulk side effect should run for an unknown type")
	}
	if result.DeletedCarts != nil || result.UpdatedReservations != nil {
		t.Error("both side-effect results should be nil")
	}
	if !result.EmailSent {
		t.Error("emailSent should still be true")
	}
}

func TestRunMailFailureDoesNotChangeOutcome(t *testing.T) {
	paymentStore := &mockPaymentStore{}
	mail := newMockMailer()
	mail.sendErr = errors.New("smtp down")
	wf := payments.NewWorkflow(paymentStore, newMockCartStore(), newMockReservationStore(), mail, testLogger())

	result, err := wf.Run(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.EmailSent {
		t.Error("emailSent reflects the attempt, not delivery")
	}
	waitMail(t, mail)
}

func TestRunInsertFailureAbortsBeforeSideEffects(t *testing.T) {
	paymentStore := &mockPaymentStore{insertErr: errors.New("write concern error")}
	carts := newMockCartStore()
	wf := payments.NewWorkflow(paymentStore, carts, newMockReservationStore(), newMockMailer(), testLogger())

	in := validInput()
	in.CartIDs = []string{primitive.NewObjectID().Hex()}

	if _, err := wf.Run(context.Background(), in); err == nil {
		t.Fatal("expected error when payment insert fails")
	}
	if carts.calls != 0 {
		t.Error("cart store must not be touched when the insert fails")
	}
}

func TestRunBadCartIDAfterInsertLeavesPaymentRecorded(t *testing.T) {
	paymentStore := &mockPaymentStore{}
	carts := newMockCartStore()
	wf := payments.NewWorkflow(paymentStore, carts, newMockReservationStore(), newMockMailer(), testLogger())

	in := validInput()
	in.CartIDs = []string{"not-a-hex-id"}

	if _, err := wf.Run(context.Background(), in); err == nil {
		t.Fatal("expected error for malformed cart id")
	}

	// The insert already committed: this is the documented partial window.
	if len(paymentStore.inserted) != 1 {
		t.Errorf("payment records = %d, want 1", len(paymentStore.inserted))
	}
	if carts.calls != 0 {
		t.Error("bulk delete must not run with malformed ids")
	}
}
