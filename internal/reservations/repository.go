package reservations

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/UmarSidiki/taxibooking/pkg/common"
	"github.com/UmarSidiki/taxibooking/pkg/database"
	"github.com/UmarSidiki/taxibooking/pkg/models"
)

// ErrVehicleVanished is returned when a pending reservation references a
// vehicle that no longer exists at commit time. The booking cannot be
// created and the payment has already been taken, so callers must escalate.
var ErrVehicleVanished = errors.New("vehicle for pending reservation no longer exists")

// CommitParams are the inputs to CommitPending.
type CommitParams struct {
	OrderID      uuid.UUID
	TxnRef       string
	PaidAmount   float64
	MarginPct    float64
	ReviewStatus models.PartnerReviewStatus
}

// Repository handles booking and pending reservation persistence
type Repository struct {
	db *pgxpool.Pool

	// amountTolerance is the accepted drift between the quoted total and
	// the amount the provider reports as paid.
	amountTolerance float64
}

// NewRepository creates a new reservations repository
func NewRepository(db *pgxpool.Pool, amountTolerance float64) *Repository {
	return &Repository{db: db, amountTolerance: amountTolerance}
}

// CreatePending stores a provisional reservation.
func (r *Repository) CreatePending(ctx context.Context, p *models.PendingReservation) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := database.RetryableExec(ctx, r.db, `
		INSERT INTO pending_reservations (
			order_id, trip_id, trip, vehicle_id, contact,
			subtotal, tax_pct, tax_included, tax_amount, total, currency,
			payment_intent, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		p.OrderID, p.TripID, p.Trip, p.VehicleID, p.Contact,
		p.Fare.Subtotal, p.Fare.TaxPct, p.Fare.TaxIncluded, p.Fare.TaxAmount,
		p.Fare.Total, p.Fare.Currency,
		p.PaymentIntent, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// UpdatePending replaces the trip and fare of a provisional reservation.
func (r *Repository) UpdatePending(ctx context.Context, orderID uuid.UUID, trip *models.TripRequest, fare models.FareBreakdown) error {
	tag, err := database.RetryableExec(ctx, r.db, `
		UPDATE pending_reservations
		SET trip = $2, subtotal = $3, tax_pct = $4, tax_included = $5,
			tax_amount = $6, total = $7, currency = $8, updated_at = $9
		WHERE order_id = $1`,
		orderID, trip,
		fare.Subtotal, fare.TaxPct, fare.TaxIncluded, fare.TaxAmount,
		fare.Total, fare.Currency, time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	return nil
}

// GetPending retrieves a provisional reservation by order ID.
func (r *Repository) GetPending(ctx context.Context, orderID uuid.UUID) (*models.PendingReservation, error) {
	p := &models.PendingReservation{}
	err := r.db.QueryRow(ctx, `
		SELECT order_id, trip_id, trip, vehicle_id, contact,
			subtotal, tax_pct, tax_included, tax_amount, total, currency,
			payment_intent, created_at, updated_at
		FROM pending_reservations WHERE order_id = $1`, orderID,
	).Scan(
		&p.OrderID, &p.TripID, &p.Trip, &p.VehicleID, &p.Contact,
		&p.Fare.Subtotal, &p.Fare.TaxPct, &p.Fare.TaxIncluded, &p.Fare.TaxAmount,
		&p.Fare.Total, &p.Fare.Currency,
		&p.PaymentIntent, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePending removes a provisional reservation. Deleting an absent row
// is not an error: failed and succeeded payment events may race.
func (r *Repository) DeletePending(ctx context.Context, orderID uuid.UUID) error {
	_, err := database.RetryableExec(ctx, r.db,
		`DELETE FROM pending_reservations WHERE order_id = $1`, orderID)
	return err
}

// CommitPending turns a pending reservation into a durable Booking in a
// single atomic statement. The unique indexes on txn_ref and trip_id make
// the insert first-write-wins: a duplicate delivery finds zero rows
// inserted and gets ErrAlreadyCommitted.
//
// The amount-integrity rule is applied here: the paid amount is always the
// amount recorded, and a drift beyond the tolerance only flags the booking,
// it never rejects the commit.
func (r *Repository) CommitPending(ctx context.Context, p CommitParams) (*models.Booking, error) {
	pending, err := r.GetPending(ctx, p.OrderID)
	if err != nil {
		return nil, err
	}

	mismatch := math.Abs(p.PaidAmount-pending.Fare.Total) > r.amountTolerance

	tag, err := database.RetryableExec(ctx, r.db, `
		INSERT INTO bookings (
			id, trip_id, trip, contact,
			vehicle_id, vehicle_name, vehicle_category, vehicle_seats,
			subtotal, tax_pct, tax_included, tax_amount, total_amount, currency,
			amount_mismatch, payment_method, payment_status, txn_ref,
			status, partner_review_status,
			margin_pct, margin_amount, payout_amount,
			created_at, updated_at
		)
		SELECT p.order_id, p.trip_id, p.trip, p.contact,
			v.id, v.name, v.category, v.seats,
			p.subtotal, p.tax_pct, p.tax_included, p.tax_amount, $2, p.currency,
			$3, $4, $5, $6,
			$7, $8,
			$9,
			round(($2::numeric * $9 / 100), 2),
			round(($2::numeric - $2::numeric * $9 / 100), 2),
			now(), now()
		FROM pending_reservations p
		JOIN vehicles v ON v.id = p.vehicle_id
		WHERE p.order_id = $1
		ON CONFLICT DO NOTHING`,
		p.OrderID, p.PaidAmount, mismatch,
		models.PaymentMethodStripe, models.PaymentStatusCompleted, p.TxnRef,
		models.BookingStatusUpcoming, p.ReviewStatus,
		p.MarginPct,
	)
	if err != nil {
		return nil, err
	}

	if tag.RowsAffected() == 0 {
		// Either a booking already holds this payment or trip reference,
		// or the vehicle row disappeared under the pending reservation.
		if _, err := r.FindByTxnRef(ctx, p.TxnRef); err == nil {
			return nil, common.ErrAlreadyCommitted
		}
		if _, err := r.FindByTripID(ctx, pending.TripID); err == nil {
			return nil, common.ErrAlreadyCommitted
		}
		return nil, ErrVehicleVanished
	}

	return r.FindByID(ctx, p.OrderID)
}

// CreateDirect stores a booking that never had a pending phase (cash or
// bank transfer).
func (r *Repository) CreateDirect(ctx context.Context, b *models.Booking) error {
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	_, err := database.RetryableExec(ctx, r.db, `
		INSERT INTO bookings (
			id, trip_id, trip, contact,
			vehicle_id, vehicle_name, vehicle_category, vehicle_seats,
			subtotal, tax_pct, tax_included, tax_amount, total_amount, currency,
			amount_mismatch, payment_method, payment_status, txn_ref,
			status, partner_review_status,
			margin_pct, margin_amount, payout_amount,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25
		)`,
		b.ID, b.TripID, b.Trip, b.Contact,
		b.VehicleID, b.VehicleName, b.VehicleCategory, b.VehicleSeats,
		b.Subtotal, b.TaxPct, b.TaxIncluded, b.TaxAmount, b.TotalAmount, b.Currency,
		b.AmountMismatch, b.PaymentMethod, b.PaymentStatus, b.TxnRef,
		b.Status, b.PartnerReviewStatus,
		b.MarginPct, b.MarginAmount, b.PayoutAmount,
		b.CreatedAt, b.UpdatedAt,
	)
	return err
}

// Transition moves an upcoming booking to a terminal state. The status
// guard in the WHERE clause is the whole contract: an update that matches
// zero rows on an existing booking means the booking is already terminal,
// and its money fields are never touched again.
func (r *Repository) Transition(ctx context.Context, bookingID uuid.UUID, action TransitionAction, params TransitionParams) (*models.Booking, error) {
	var newStatus models.BookingStatus
	switch action {
	case ActionCancel:
		newStatus = models.BookingStatusCanceled
	case ActionComplete:
		newStatus = models.BookingStatusCompleted
	default:
		return nil, common.NewBadRequestError("unknown transition action", nil)
	}

	tag, err := database.RetryableExec(ctx, r.db, `
		UPDATE bookings
		SET status = $2,
			refund_pct = COALESCE($3, refund_pct),
			refund_amount = COALESCE($4, refund_amount),
			payment_status = COALESCE($5, payment_status),
			canceled_at = CASE WHEN $2 = 'canceled' THEN now() ELSE canceled_at END,
			updated_at = now()
		WHERE id = $1 AND status = $6`,
		bookingID, newStatus,
		params.RefundPct, params.RefundAmount, params.PaymentStatus,
		models.BookingStatusUpcoming,
	)
	if err != nil {
		return nil, err
	}

	if tag.RowsAffected() == 0 {
		existing, err := r.FindByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		return nil, common.NewTerminalStateError(string(existing.Status))
	}

	return r.FindByID(ctx, bookingID)
}

// UpdateProviderRefund records a refund reported by the payment provider
// against the booking holding the payment reference. It only touches the
// money bookkeeping, never the ride status.
func (r *Repository) UpdateProviderRefund(ctx context.Context, txnRef string, refundAmount, refundPct float64, fullyRefunded bool) (*models.Booking, error) {
	status := models.PaymentStatusCompleted
	if fullyRefunded {
		status = models.PaymentStatusRefunded
	}

	tag, err := database.RetryableExec(ctx, r.db, `
		UPDATE bookings
		SET refund_amount = $2, refund_pct = $3, payment_status = $4, updated_at = now()
		WHERE txn_ref = $1`,
		txnRef, refundAmount, refundPct, status,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, common.ErrNotFound
	}
	return r.FindByTxnRef(ctx, txnRef)
}

const bookingColumns = `
	id, trip_id, trip, contact,
	vehicle_id, vehicle_name, vehicle_category, vehicle_seats,
	subtotal, tax_pct, tax_included, tax_amount, total_amount, currency,
	refund_amount, refund_pct, amount_mismatch,
	payment_method, payment_status, txn_ref,
	status, partner_review_status, assigned_partner_id,
	margin_pct, margin_amount, payout_amount,
	created_at, updated_at, canceled_at`

func scanBooking(row pgx.Row) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(
		&b.ID, &b.TripID, &b.Trip, &b.Contact,
		&b.VehicleID, &b.VehicleName, &b.VehicleCategory, &b.VehicleSeats,
		&b.Subtotal, &b.TaxPct, &b.TaxIncluded, &b.TaxAmount, &b.TotalAmount, &b.Currency,
		&b.RefundAmount, &b.RefundPct, &b.AmountMismatch,
		&b.PaymentMethod, &b.PaymentStatus, &b.TxnRef,
		&b.Status, &b.PartnerReviewStatus, &b.AssignedPartnerID,
		&b.MarginPct, &b.MarginAmount, &b.PayoutAmount,
		&b.CreatedAt, &b.UpdatedAt, &b.CanceledAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// FindByID retrieves a booking by its ID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
}

// FindByTripID retrieves a booking by its human-readable trip reference.
func (r *Repository) FindByTripID(ctx context.Context, tripID string) (*models.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE trip_id = $1`, tripID))
}

// FindByTxnRef retrieves a booking by its payment reference.
func (r *Repository) FindByTxnRef(ctx context.Context, txnRef string) (*models.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE txn_ref = $1`, txnRef))
}

// ListBookings returns bookings, newest first, optionally filtered by
// status.
func (r *Repository) ListBookings(ctx context.Context, status *models.BookingStatus, limit, offset int) ([]models.Booking, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE $1::text IS NULL OR status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		status, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}
