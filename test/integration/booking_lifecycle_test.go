package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UmarSidiki/taxibooking/internal/dispatch"
	"github.com/UmarSidiki/taxibooking/internal/reservations"
	"github.com/UmarSidiki/taxibooking/pkg/common"
	"github.com/UmarSidiki/taxibooking/pkg/models"
	"github.com/UmarSidiki/taxibooking/test/helpers"
)

// seededSedanID is created by the vehicle seed migration.
var seededSedanID = uuid.MustParse("5f4f3a1e-0001-4b6e-9d1a-111111111111")

func newTripID() string {
	return "TB-" + strings.ToUpper(uuid.New().String()[:8])
}

func pendingReservation(tripID string) *models.PendingReservation {
	return &models.PendingReservation{
		OrderID:   uuid.New(),
		TripID:    tripID,
		VehicleID: seededSedanID,
		Trip: models.TripRequest{
			BookingType: models.BookingTypeDestination,
			Pickup:      "Zurich Airport",
			Dropoff:     "Lucerne",
			PickupTime:  time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second),
			Passengers:  2,
		},
		Contact: models.Contact{
			Name:  "Anna Keller",
			Email: "anna@example.com",
			Phone: "+41790000000",
		},
		Fare: models.FareBreakdown{
			Subtotal: 150,
			Total:    150,
			Currency: "eur",
		},
		PaymentIntent: "pi_" + uuid.New().String()[:16],
	}
}

func TestCommitPendingIsExactlyOnce(t *testing.T) {
	pool := helpers.SetupTestDatabase(t)
	helpers.ResetTables(t, pool, "bookings", "pending_reservations", "fleet_partners")

	repo := reservations.NewRepository(pool, 0.05)
	ctx := context.Background()

	pending := pendingReservation(newTripID())
	require.NoError(t, repo.CreatePending(ctx, pending))

	params := reservations.CommitParams{
		OrderID:      pending.OrderID,
		TxnRef:       pending.PaymentIntent,
		PaidAmount:   150,
		MarginPct:    10,
		ReviewStatus: models.PartnerReviewNotRequired,
	}

	booking, err := repo.CommitPending(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusUpcoming, booking.Status)
	assert.Equal(t, models.PaymentStatusCompleted, booking.PaymentStatus)
	assert.Equal(t, 150.0, booking.TotalAmount)
	assert.False(t, booking.AmountMismatch)
	assert.Equal(t, "Business Sedan", booking.VehicleName)

	// A replayed provider event must not create a second booking.
	_, err = repo.CommitPending(ctx, params)
	assert.ErrorIs(t, err, common.ErrAlreadyCommitted)

	found, err := repo.FindByTxnRef(ctx, pending.PaymentIntent)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, found.ID)
}

func TestCommitPendingFlagsAmountDrift(t *testing.T) {
	pool := helpers.SetupTestDatabase(t)
	helpers.ResetTables(t, pool, "bookings", "pending_reservations", "fleet_partners")

	repo := reservations.NewRepository(pool, 0.05)
	ctx := context.Background()

	pending := pendingReservation(newTripID())
	require.NoError(t, repo.CreatePending(ctx, pending))

	booking, err := repo.CommitPending(ctx, reservations.CommitParams{
		OrderID:      pending.OrderID,
		TxnRef:       pending.PaymentIntent,
		PaidAmount:   149.80,
		ReviewStatus: models.PartnerReviewNotRequired,
	})
	require.NoError(t, err)

	// The paid amount is recorded as-is; the drift only flags the booking.
	assert.Equal(t, 149.80, booking.TotalAmount)
	assert.True(t, booking.AmountMismatch)
}

func TestCommitPendingToleranceBoundary(t *testing.T) {
	pool := helpers.SetupTestDatabase(t)
	helpers.ResetTables(t, pool, "bookings", "pending_reservations", "fleet_partners")
	ctx := context.Background()

	t.Run("drift equal to the tolerance passes", func(t *testing.T) {
		repo := reservations.NewRepository(pool, 0.05)

		pending := pendingReservation(newTripID())
		require.NoError(t, repo.CreatePending(ctx, pending))

		booking, err := repo.CommitPending(ctx, reservations.CommitParams{
			OrderID:      pending.OrderID,
			TxnRef:       pending.PaymentIntent,
			PaidAmount:   149.95,
			ReviewStatus: models.PartnerReviewNotRequired,
		})
		require.NoError(t, err)

		assert.Equal(t, 149.95, booking.TotalAmount)
		assert.False(t, booking.AmountMismatch)
	})

	t.Run("wider configured tolerance absorbs larger drift", func(t *testing.T) {
		repo := reservations.NewRepository(pool, 0.10)

		pending := pendingReservation(newTripID())
		require.NoError(t, repo.CreatePending(ctx, pending))

		booking, err := repo.CommitPending(ctx, reservations.CommitParams{
			OrderID:      pending.OrderID,
			TxnRef:       pending.PaymentIntent,
			PaidAmount:   149.90,
			ReviewStatus: models.PartnerReviewNotRequired,
		})
		require.NoError(t, err)

		assert.Equal(t, 149.90, booking.TotalAmount)
		assert.False(t, booking.AmountMismatch)
	})
}

func TestTransitionGuardsTerminalStates(t *testing.T) {
	pool := helpers.SetupTestDatabase(t)
	helpers.ResetTables(t, pool, "bookings", "pending_reservations", "fleet_partners")

	repo := reservations.NewRepository(pool, 0.05)
	ctx := context.Background()

	pending := pendingReservation(newTripID())
	require.NoError(t, repo.CreatePending(ctx, pending))

	booking, err := repo.CommitPending(ctx, reservations.CommitParams{
		OrderID:      pending.OrderID,
		TxnRef:       pending.PaymentIntent,
		PaidAmount:   150,
		ReviewStatus: models.PartnerReviewNotRequired,
	})
	require.NoError(t, err)

	refundPct := 50.0
	refundAmount := 75.0
	canceled, err := repo.Transition(ctx, booking.ID, reservations.ActionCancel, reservations.TransitionParams{
		RefundPct:    &refundPct,
		RefundAmount: &refundAmount,
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCanceled, canceled.Status)
	assert.Equal(t, 75.0, canceled.RefundAmount)
	assert.NotNil(t, canceled.CanceledAt)

	// A second transition must not touch the frozen money fields.
	_, err = repo.Transition(ctx, booking.ID, reservations.ActionComplete, reservations.TransitionParams{})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.Code)

	unchanged, err := repo.FindByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCanceled, unchanged.Status)
	assert.Equal(t, 75.0, unchanged.RefundAmount)
}

func TestDispatchAcceptIsFirstComeFirstServed(t *testing.T) {
	pool := helpers.SetupTestDatabase(t)
	helpers.ResetTables(t, pool, "bookings", "pending_reservations", "fleet_partners")

	reservationsRepo := reservations.NewRepository(pool, 0.05)
	dispatchRepo := dispatch.NewRepository(pool)
	ctx := context.Background()

	pending := pendingReservation(newTripID())
	require.NoError(t, reservationsRepo.CreatePending(ctx, pending))

	booking, err := reservationsRepo.CommitPending(ctx, reservations.CommitParams{
		OrderID:      pending.OrderID,
		TxnRef:       pending.PaymentIntent,
		PaidAmount:   150,
		ReviewStatus: models.PartnerReviewNotRequired,
	})
	require.NoError(t, err)

	var partners []*models.FleetPartner
	for i := 0; i < 2; i++ {
		p := &models.FleetPartner{
			CompanyName:          fmt.Sprintf("Fleet %d", i),
			ContactName:          "Dispatcher",
			Email:                fmt.Sprintf("fleet%d-%s@example.com", i, uuid.New().String()[:8]),
			Phone:                "+41790000001",
			CurrentFleetCategory: models.CategorySedan,
		}
		require.NoError(t, dispatchRepo.CreatePartner(ctx, p))
		_, err := dispatchRepo.ApprovePartner(ctx, p.ID)
		require.NoError(t, err)
		partners = append(partners, p)
	}

	won, err := dispatchRepo.Accept(ctx, booking.ID, partners[0].ID, 10, 15, 135)
	require.NoError(t, err)
	require.NotNil(t, won.AssignedPartnerID)
	assert.Equal(t, partners[0].ID, *won.AssignedPartnerID)
	assert.Equal(t, 135.0, won.PayoutAmount)

	// The second partner loses the race and gets a conflict.
	_, err = dispatchRepo.Accept(ctx, booking.ID, partners[1].ID, 10, 15, 135)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.Code)

	// The winner keeps the ride.
	unchanged, err := dispatchRepo.FindBooking(ctx, booking.ID)
	require.NoError(t, err)
	require.NotNil(t, unchanged.AssignedPartnerID)
	assert.Equal(t, partners[0].ID, *unchanged.AssignedPartnerID)
}
