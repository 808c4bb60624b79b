package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/UmarSidiki/taxibooking/pkg/common"
	"github.com/UmarSidiki/taxibooking/pkg/database"
	"github.com/UmarSidiki/taxibooking/pkg/models"
)

// Repository handles fleet partner persistence and ride assignment
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new dispatch repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const partnerColumns = `
	id, company_name, contact_name, email, phone,
	approved, current_fleet_category, created_at, updated_at`

func scanPartner(row pgx.Row) (*models.FleetPartner, error) {
	p := &models.FleetPartner{}
	err := row.Scan(
		&p.ID, &p.CompanyName, &p.ContactName, &p.Email, &p.Phone,
		&p.Approved, &p.CurrentFleetCategory, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreatePartner registers a new fleet partner.
func (r *Repository) CreatePartner(ctx context.Context, partner *models.FleetPartner) error {
	now := time.Now().UTC()
	partner.ID = uuid.New()
	partner.CreatedAt = now
	partner.UpdatedAt = now

	_, err := database.RetryableExec(ctx, r.db, `
		INSERT INTO fleet_partners (
			id, company_name, contact_name, email, phone,
			approved, current_fleet_category, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		partner.ID, partner.CompanyName, partner.ContactName, partner.Email,
		partner.Phone, partner.Approved, partner.CurrentFleetCategory,
		partner.CreatedAt, partner.UpdatedAt,
	)
	return err
}

// GetPartner retrieves a fleet partner by ID.
func (r *Repository) GetPartner(ctx context.Context, id uuid.UUID) (*models.FleetPartner, error) {
	return scanPartner(r.db.QueryRow(ctx,
		`SELECT `+partnerColumns+` FROM fleet_partners WHERE id = $1`, id))
}

// ListPartners returns all fleet partners, newest first.
func (r *Repository) ListPartners(ctx context.Context) ([]models.FleetPartner, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+partnerColumns+` FROM fleet_partners ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var partners []models.FleetPartner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		partners = append(partners, *p)
	}
	return partners, rows.Err()
}

// ApprovePartner marks a partner as approved to accept rides.
func (r *Repository) ApprovePartner(ctx context.Context, id uuid.UUID) (*models.FleetPartner, error) {
	partner, err := scanPartner(r.db.QueryRow(ctx, `
		UPDATE fleet_partners
		SET approved = true, updated_at = $2
		WHERE id = $1
		RETURNING `+partnerColumns, id, time.Now().UTC()))
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewNotFoundError("fleet partner not found", err)
	}
	return partner, err
}

// EligiblePartners returns approved partners running the given fleet
// category.
func (r *Repository) EligiblePartners(ctx context.Context, category models.VehicleCategory) ([]models.FleetPartner, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+partnerColumns+`
		FROM fleet_partners
		WHERE approved AND current_fleet_category = $1`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var partners []models.FleetPartner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		partners = append(partners, *p)
	}
	return partners, rows.Err()
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

// FindBooking retrieves a booking by ID.
func (r *Repository) FindBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return scanBooking(r.db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
}

// Accept assigns the booking to the partner. The WHERE clause is the
// whole first-come-first-served contract: exactly one concurrent caller
// sees a row, everyone else loses the race.
func (r *Repository) Accept(ctx context.Context, bookingID, partnerID uuid.UUID, marginPct, marginAmount, payoutAmount float64) (*models.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx, `
		UPDATE bookings
		SET assigned_partner_id = $2, partner_review_status = 'approved',
			margin_pct = $3, margin_amount = $4, payout_amount = $5,
			updated_at = $6
		WHERE id = $1 AND assigned_partner_id IS NULL AND status = 'upcoming'
		RETURNING `+bookingColumns,
		bookingID, partnerID, marginPct, marginAmount, payoutAmount, time.Now().UTC()))
	if err == nil {
		return booking, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	existing, findErr := r.FindBooking(ctx, bookingID)
	if findErr != nil {
		return nil, findErr
	}
	if existing.AssignedPartnerID != nil {
		return nil, common.NewAlreadyTakenError()
	}
	return nil, common.NewTerminalStateError(string(existing.Status))
}

// ApproveReview releases a booking held for operator review.
func (r *Repository) ApproveReview(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := scanBooking(r.db.QueryRow(ctx, `
		UPDATE bookings
		SET partner_review_status = 'approved', updated_at = $2
		WHERE id = $1 AND partner_review_status = 'pending' AND status = 'upcoming'
		RETURNING `+bookingColumns, bookingID, time.Now().UTC()))
	if err == nil {
		return booking, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	if _, findErr := r.FindBooking(ctx, bookingID); findErr != nil {
		if errors.Is(findErr, common.ErrNotFound) {
			return nil, common.NewNotFoundError("booking not found", findErr)
		}
		return nil, findErr
	}
	return nil, common.NewConflictError("booking is not awaiting partner review", nil)
}

// UnassignedByCategory lists dispatchable bookings for a fleet category.
func (r *Repository) UnassignedByCategory(ctx context.Context, category models.VehicleCategory) ([]models.Booking, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE status = 'upcoming'
			AND assigned_partner_id IS NULL
			AND partner_review_status IN ('not_required', 'approved')
			AND vehicle_category = $1
		ORDER BY (trip->>'pickup_time') ASC`, category)
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
